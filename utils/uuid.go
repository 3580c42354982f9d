package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new random identifier string
func GenerateID() string {
	return uuid.New().String()
}

// GenerateOrderedID returns a time-ordered identifier (UUIDv7): a millisecond
// timestamp prefix followed by random bits.
func GenerateOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return GenerateID()
	}
	return id.String()
}
