package typegraph

import "fmt"

// KindMismatch is raised when a name lookup finds an entity whose kind
// is incompatible with the kind being requested, e.g. a Pointer found
// under a name already registered as a Typedef.
type KindMismatch struct {
	Name     string
	Expected string
	Found    string
}

func (e *KindMismatch) Error() string {
	return fmt.Sprintf("kind mismatch for %q: expected %s, found %s", e.Name, e.Expected, e.Found)
}

// MissingReferent is returned by Instance navigation when an id stored
// in some entity does not resolve to a registered entity. UpdateTypes
// does not return it: it leaves such an id unresolved and only counts
// it in Metrics.MissingReferents.
type MissingReferent struct {
	ID SymbolID
}

func (e *MissingReferent) Error() string {
	return fmt.Sprintf("missing referent for id 0x%x", uint64(e.ID))
}

// InvariantViolation reports a programmer error in Instance navigation:
// a null address, an out-of-bounds array index, navigation applied to a
// type of the wrong kind, or a member name or offset the type does not
// have. Callers that hit one have a bug, not bad input.
type InvariantViolation struct {
	What string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.What
}
