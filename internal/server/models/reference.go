package models

// Role is an opaque reference record; only its name is copied into tokens.
type Role struct {
	ID          string
	Name        string
	Description string
}

// Store is the tenant a user belongs to.
type Store struct {
	ID     string
	Name   string
	Active bool
}
