package exemption

import (
	"errors"
	"fmt"
)

// ErrInvalidPathArgument is returned when an exempted folder path cannot be matched
// against the catalog
var ErrInvalidPathArgument = errors.New("invalid path argument")

// PathError describes why a path was rejected
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path argument %q: %s", e.Path, e.Reason)
}

func (e *PathError) Is(target error) bool {
	return target == ErrInvalidPathArgument
}
