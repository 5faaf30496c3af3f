package domain

import (
	"errors"

	"github.com/aretw0/courier/pkg/result"
)

// ErrNotFound is returned by repositories when an id has no stored value.
var ErrNotFound = errors.New("not found")

// Error codes. The suffix after the dot is the failure kind transports map on.
const (
	CodeUserNotFound    = "User.NotFound"
	CodeUserInvalid     = "User.Invalid"
	CodeUserEmailTaken  = "User.Conflict"
	CodeSchoolNotFound  = "School.NotFound"
	CodeSchoolInvalid   = "School.Invalid"
	CodeSchoolForbidden = "School.Forbidden"
	CodeStorage         = "Storage.Unavailable"
)

// UserNotFound reports a missing user.
func UserNotFound(id string) result.Error {
	return result.NewError(CodeUserNotFound, "user "+id+" does not exist")
}

// SchoolNotFound reports a missing school.
func SchoolNotFound(id string) result.Error {
	return result.NewError(CodeSchoolNotFound, "school "+id+" does not exist")
}

// NotOwner reports a user acting on a school they do not own.
func NotOwner(userID, schoolID string) result.Error {
	return result.NewError(CodeSchoolForbidden, "user "+userID+" does not own school "+schoolID)
}

// StorageFailure wraps an infrastructure error as a domain failure.
func StorageFailure(err error) result.Error {
	return result.NewError(CodeStorage, err.Error())
}
