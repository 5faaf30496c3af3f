package school

import (
	"strings"

	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/mediator"
	"github.com/aretw0/courier/pkg/result"
)

// RegisterUser creates a user account.
type RegisterUser struct {
	mediator.Returns[result.Result[domain.User]]
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LockKey serializes registrations of the same email.
func (r RegisterUser) LockKey() string {
	return "user-email:" + normalizeEmail(r.Email)
}

// CreateSchool creates a school owned by the acting user.
type CreateSchool struct {
	mediator.Returns[result.Result[domain.School]]
	ActorID string `json:"-"`
	Name    string `json:"name"`
	City    string `json:"city"`
}

// RenameSchool changes a school's name. Only the owner may rename.
type RenameSchool struct {
	mediator.Returns[result.Result[domain.School]]
	ActorID  string `json:"-"`
	SchoolID string `json:"-"`
	Name     string `json:"name"`
}

// LockKey serializes mutations of one school.
func (r RenameSchool) LockKey() string { return "school:" + r.SchoolID }

// DeleteSchool removes a school. Only the owner may delete.
type DeleteSchool struct {
	mediator.Returns[result.Result[bool]]
	ActorID  string `json:"-"`
	SchoolID string `json:"-"`
}

// LockKey serializes mutations of one school.
func (r DeleteSchool) LockKey() string { return "school:" + r.SchoolID }

// GetSchool fetches one school.
type GetSchool struct {
	mediator.Returns[result.Result[domain.School]]
	ID string
}

// ListSchools lists schools ordered by id, optionally only those of one owner.
type ListSchools struct {
	mediator.Returns[result.Result[[]domain.School]]
	OwnerID string
}

// GetOverview fetches a school together with its owner.
type GetOverview struct {
	mediator.Returns[result.Result[Overview]]
	SchoolID string
}

// Overview is a school joined with its owner.
type Overview struct {
	School domain.School `json:"school"`
	Owner  domain.User   `json:"owner"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
