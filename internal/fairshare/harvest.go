package fairshare

import "fmt"

// Harvest decides, for every leaf collected by the last Distribute, how many of its desired slots can be used this
// cycle given its running and pending jobs. It sets Sent on every leaf and returns the number of allocated slots no
// leaf can use.
//
// A leaf already running at least its allocation gets nothing. Otherwise it is sent the shortfall, limited to the
// number of jobs it has pending; any remainder is free.
func Harvest(t *ShareTree) uint32 {
	var free uint64
	for _, n := range t.leaves {
		s := t.nodes.Data(n)
		s.Sent = 0
		deficit := int64(s.DesiredServed) - int64(s.NumRunning)
		if deficit <= 0 {
			continue
		}
		surplus := deficit - int64(s.NumPending)
		if surplus <= 0 {
			s.Sent = uint32(deficit)
		} else {
			s.Sent = s.NumPending
			free += uint64(surplus)
		}
		if s.Sent > s.DesiredServed {
			panic(fmt.Sprintf("sent %d slots to %s but only %d are desired", s.Sent, s.Path, s.DesiredServed))
		}
	}
	return uint32(free)
}
