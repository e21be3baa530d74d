package leads

import (
	"errors"
	"fmt"
)

// Sentinels identify which operation failed. Match them with errors.Is.
var (
	ErrAuthentication = errors.New("user not authenticated or no organisation")
	ErrFetch          = errors.New("failed to fetch leads")
	ErrCreate         = errors.New("failed to create lead")
	ErrUpdate         = errors.New("failed to update lead")
	ErrDelete         = errors.New("failed to delete lead")

	errMissingID = errors.New("response carried no lead id")
)

// Op names a client operation in errors and log records.
type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

var (
	opSentinels = map[Op]error{
		OpList:   ErrFetch,
		OpCreate: ErrCreate,
		OpUpdate: ErrUpdate,
		OpDelete: ErrDelete,
	}
	opFallbacks = map[Op]string{
		OpList:   "Failed to fetch leads",
		OpCreate: "Failed to create lead",
		OpUpdate: "Failed to update lead",
		OpDelete: "Failed to delete lead",
	}
)

// OpError reports a failed operation. Message is the server's explanation
// when it gave one, else a generic text for the operation.
type OpError struct {
	Op      Op
	Kind    error
	Message string
	Err     error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("leads %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("leads %s: %s", e.Op, e.Message)
}

// Is matches the operation's sentinel.
func (e *OpError) Is(target error) bool {
	return target == e.Kind
}

// Unwrap exposes the underlying transport failure.
func (e *OpError) Unwrap() error {
	return e.Err
}
