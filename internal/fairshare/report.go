package fairshare

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Report returns a tab-aligned summary of the cycle, one line per leaf in allocation order.
func (r *CycleResult) Report() string {
	sb := &strings.Builder{}
	w := tabwriter.NewWriter(sb, 1, 1, 2, ' ', 0)
	// Writes to a strings.Builder cannot fail.
	_, _ = fmt.Fprintf(w, "Cycle:\t%s\n", r.CycleId)
	_, _ = fmt.Fprintf(w, "Total slots:\t%d\n", r.TotalSlots)
	_, _ = fmt.Fprintf(w, "Free slots:\t%d\n", r.FreeSlots)
	_ = w.Flush()

	w = tabwriter.NewWriter(sb, 1, 1, 2, ' ', 0)
	_, _ = fmt.Fprint(w, "ENTITY\tDESIRED\tSENT\n")
	for _, a := range r.Allocations {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\n", a.EntityPath, a.DesiredServed, a.Sent)
	}
	_ = w.Flush()
	return sb.String()
}
