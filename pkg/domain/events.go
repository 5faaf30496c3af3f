package domain

import "time"

// SchoolCreated is published after a school is first persisted.
type SchoolCreated struct {
	School School    `json:"school"`
	At     time.Time `json:"at"`
}

// SchoolRenamed is published after a school's name changes.
type SchoolRenamed struct {
	SchoolID string    `json:"school_id"`
	OldName  string    `json:"old_name"`
	NewName  string    `json:"new_name"`
	At       time.Time `json:"at"`
}

// SchoolDeleted is published after a school is removed.
type SchoolDeleted struct {
	SchoolID string    `json:"school_id"`
	OwnerID  string    `json:"owner_id"`
	At       time.Time `json:"at"`
}
