// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// User is the application account. Email is the natural key used by every lookup,
// while ID is assigned by the store once and never changes.
type User struct {
	ID        int64     // Store-generated identifier, positive once persisted.
	FirstName string    // Free-text given name.
	LastName  string    // Free-text family name.
	Email     string    // Unique across all users.
	Password  string    // bcrypt hash. Never the plaintext once persisted.
	Role      Role      // Symbolic role name.
	CreatedAt time.Time // Timestamp of when this user was created.
	UpdatedAt time.Time // Timestamp of the last modification.
}
