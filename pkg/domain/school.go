package domain

import "time"

// User is a registered account. Users own schools.
type User struct {
	ID        string    `json:"id" mapstructure:"id"`
	Name      string    `json:"name" mapstructure:"name"`
	Email     string    `json:"email" mapstructure:"email"`
	CreatedAt time.Time `json:"created_at" mapstructure:"created_at"`
}

// School is a driving school run by its owner.
type School struct {
	ID        string    `json:"id" mapstructure:"id"`
	Name      string    `json:"name" mapstructure:"name"`
	City      string    `json:"city" mapstructure:"city"`
	OwnerID   string    `json:"owner_id" mapstructure:"owner_id"`
	CreatedAt time.Time `json:"created_at" mapstructure:"created_at"`
	UpdatedAt time.Time `json:"updated_at" mapstructure:"updated_at"`
}

// OwnedBy reports whether userID owns s.
func (s School) OwnedBy(userID string) bool {
	return s.OwnerID != "" && s.OwnerID == userID
}
