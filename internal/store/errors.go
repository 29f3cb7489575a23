package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrTaskNotFound     = fmt.Errorf("task %w", ErrNotFound)
	ErrTagNotFound      = fmt.Errorf("tag %w", ErrNotFound)
	ErrReminderNotFound = fmt.Errorf("reminder %w", ErrNotFound)

	ErrDuplicate    = errors.New("duplicate entry")
	ErrDuplicateTag = fmt.Errorf("tag name already in use: %w", ErrDuplicate)

	// ErrInvalidEntity marks writes rejected by a schema constraint or an
	// out-of-range argument.
	ErrInvalidEntity = errors.New("invalid entity")
)
