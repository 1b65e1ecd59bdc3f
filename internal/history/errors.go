package history

import (
	"fmt"

	"github.com/google/uuid"
)

// DuplicateVersionError is returned when a user already has a version with the same file name
type DuplicateVersionError struct {
	FileName string
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("a résumé named %q already exists", e.FileName)
}

// NotFoundError is returned when a requested record does not exist for the user
type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	if e.ID == uuid.Nil {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Resource names used in NotFoundError
const (
	ResourceVersion = "resume version"
	ResourceJob     = "job"
)
