package models

// User represents a user in the system
type User struct {
	ID           string `json:"_id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // Not serialized
}
