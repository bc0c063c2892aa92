package store

import "fmt"

// Kind names the optimistic operation behind a Mutation.
type Kind string

const (
	KindToggle Kind = "toggle"
	KindDelete Kind = "delete"
)

// Phase is where an optimistic mutation stands.
// A mutation starts Pending and moves exactly once, to Confirmed or Reverted.
type Phase int

const (
	PhasePending Phase = iota
	PhaseConfirmed
	PhaseReverted
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseReverted:
		return "reverted"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Mutation records one optimistic change applied to local state ahead of
// the server's answer.
type Mutation struct {
	ID     uint64
	Kind   Kind
	TaskID string
	Phase  Phase
	Err    error // set when Phase is PhaseReverted
}

// RollbackPolicy decides how a failed delete is undone.
type RollbackPolicy int

const (
	// RollbackSnapshot restores the collection captured before the delete,
	// discarding any change made while the request was in flight.
	RollbackSnapshot RollbackPolicy = iota

	// RollbackMerge puts only the deleted task back, at its former index,
	// keeping changes made while the request was in flight.
	RollbackMerge
)

// ParseRollbackPolicy maps a config value to a policy.
func ParseRollbackPolicy(s string) (RollbackPolicy, error) {
	switch s {
	case "", "snapshot":
		return RollbackSnapshot, nil
	case "merge":
		return RollbackMerge, nil
	default:
		return 0, fmt.Errorf("unknown rollback policy: %s", s)
	}
}
