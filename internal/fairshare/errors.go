package fairshare

import (
	"fmt"
	"strings"
)

// ErrMalformedSpec is returned when a share specification or a group record cannot be parsed.
// Message is optional and is omitted from the error message if not provided.
type ErrMalformedSpec struct {
	// The offending specification text.
	Spec string
	// Name of the group the specification belongs to; empty for the top-level user shares.
	Group   string
	Message string
}

func (err *ErrMalformedSpec) Error() (s string) {
	if err.Group != "" {
		s = fmt.Sprintf("malformed share specification %q of group %q", err.Spec, err.Group)
	} else {
		s = fmt.Sprintf("malformed share specification %q", err.Spec)
	}
	if err.Message != "" {
		s = s + fmt.Sprintf("; %s", err.Message)
	}
	return
}

// ErrCyclicGroupReference is returned when a group lists itself as a member, directly or transitively.
type ErrCyclicGroupReference struct {
	// Group names along the cycle, starting and ending with the repeated group.
	Cycle []string
}

func (err *ErrCyclicGroupReference) Error() string {
	return fmt.Sprintf("cyclic group reference %s", strings.Join(err.Cycle, " -> "))
}

// ErrZeroShareSum is returned when the shares of a non-empty sibling set sum to zero.
type ErrZeroShareSum struct {
	// Name of the node whose children have no shares.
	Parent string
}

func (err *ErrZeroShareSum) Error() string {
	return fmt.Sprintf("shares of the members of %q sum to zero", err.Parent)
}
