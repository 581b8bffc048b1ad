// Package repository holds the sqlx data access layer. Lookups that find
// nothing return sql.ErrNoRows unchanged so services can tell "absent" from
// "storage failed".
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when inserting a user whose email is taken.
var ErrEmailExists = errors.New("email already exists")

// isDuplicate matches MySQL error 1062 and SQLite UNIQUE violations.
func isDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique constraint")
}
