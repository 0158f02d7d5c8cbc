package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvariant matches every *InvariantError.
	ErrInvariant = errors.New("points: invariant violated")
	// ErrAdapterFailed is returned by an adapter after it hit an invariant violation.
	ErrAdapterFailed = errors.New("points: adapter failed")
)

type InvariantKind uint8

const (
	ReleaseWhenEmpty InvariantKind = iota + 1
	DoubleRelease
	SlotOutOfRange
	SlotOwnerMismatch
	IndexOutOfRange
	DuplicateIdentity
)

func (k InvariantKind) String() string {
	switch k {
	case ReleaseWhenEmpty:
		return "release with no alive particles"
	case DoubleRelease:
		return "particle released twice"
	case SlotOutOfRange:
		return "slot out of range"
	case SlotOwnerMismatch:
		return "slot owned by another particle"
	case IndexOutOfRange:
		return "index out of range"
	case DuplicateIdentity:
		return "identity already bound to another particle"
	default:
		return fmt.Sprintf("InvariantKind(%d)", uint8(k))
	}
}

// InvariantError reports an accounting bug upstream. It is never recovered from.
type InvariantError struct {
	Kind     InvariantKind
	Particle uuid.UUID
	Slot     int
	Alive    int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("points: %s (particle %s, slot %d, alive %d)", e.Kind, e.Particle, e.Slot, e.Alive)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}
