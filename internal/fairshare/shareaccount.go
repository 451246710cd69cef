package fairshare

import "fmt"

// RootName is the name of the account at the root of every share tree. It represents the whole pool.
const RootName = "/"

// ShareAccount holds the configured and derived share metrics of a single user or group.
type ShareAccount struct {
	// Name of the entity. Unique among its siblings only.
	Name string
	// Composite "parent/name" key for leaves, Name otherwise.
	Path string
	// Configured weight.
	Shares uint32
	// Shares divided by the sum of the shares of the sibling set.
	NormalizedShare float64
	// Slots this entity is entitled to in the current cycle.
	DesiredServed uint32
	// Slots this entity can actually use in the current cycle. Always <= DesiredServed.
	Sent uint32
	// Externally maintained counters, supplied once per cycle.
	NumRunning uint32
	NumPending uint32
	NumRan     uint32
	// Scratch value used when ranking siblings by historical usage.
	RankMetric int64

	// Sum of the shares of the sibling set this account belongs to.
	// Kept so that apportionment can be done in exact integer arithmetic.
	siblingShares uint64
}

func newShareAccount(name string, shares uint32) *ShareAccount {
	return &ShareAccount{
		Name:   name,
		Path:   name,
		Shares: shares,
	}
}

func (s *ShareAccount) String() string {
	return fmt.Sprintf(
		"%s: shares %d dshares %4.2f dsrv %d sent %d run %d pend %d ran %d",
		s.Path, s.Shares, s.NormalizedShare, s.DesiredServed, s.Sent, s.NumRunning, s.NumPending, s.NumRan,
	)
}

// apportion returns the slots this account is entitled to out of budget, i.e., ceil(NormalizedShare * budget),
// capped at available.
func (s *ShareAccount) apportion(budget, available uint64) uint64 {
	if s.siblingShares == 0 {
		return 0
	}
	return min64(ceilDiv(uint64(s.Shares)*budget, s.siblingShares), available)
}

// normalize sets NormalizedShare for each account in a sibling set.
// Returns false if the set is non-empty and its shares sum to zero.
func normalize(accounts []*ShareAccount) bool {
	var sum uint64
	for _, a := range accounts {
		sum += uint64(a.Shares)
	}
	if sum == 0 {
		return len(accounts) == 0
	}
	for _, a := range accounts {
		a.siblingShares = sum
		a.NormalizedShare = float64(a.Shares) / float64(sum)
	}
	return true
}

func ceilDiv(a, b uint64) uint64 {
	return (a + b - 1) / b
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
