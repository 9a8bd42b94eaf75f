package model

import "time"

// User is an identity known to the server. Anonymous users have no
// external subject attached.
type User struct {
	ID         string    `db:"id"           json:"id"`
	Anonymous  bool      `db:"anonymous"    json:"anonymous"`
	CreatedAt  time.Time `db:"created_at"   json:"created_at"`
	LastSeenAt time.Time `db:"last_seen_at" json:"last_seen_at"`
}

// UserProfile is what the registration form collects. It lives on the
// user's device, never in the database.
type UserProfile struct {
	DisplayName string `json:"display_name"`
	GroupName   string `json:"group_name"`
}

// Document is a raw JSON document addressed by its slash-joined path.
type Document struct {
	Path      string    `db:"path"       json:"path"`
	Data      []byte    `db:"data"       json:"data"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
