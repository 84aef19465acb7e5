package selection

import "errors"

var (
	// ErrAtCapacity signals a toggle-on against a group that already holds
	// its maximum number of selections. The group state is unchanged.
	ErrAtCapacity = errors.New("selection: group at capacity")
	// ErrUnknownOption signals a value outside the group's option set.
	ErrUnknownOption = errors.New("selection: unknown option")
)
