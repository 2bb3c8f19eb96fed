package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// encodedLength is the length of a base32-encoded UUID without padding.
const encodedLength = 26

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a new URL-safe identifier.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	encoded := encoding.EncodeToString(value[:])
	return strings.ToLower(encoded), nil
}

// IsValid reports whether value has the shape of a generated identifier.
func IsValid(value string) bool {
	if len(value) != encodedLength {
		return false
	}
	_, err := encoding.DecodeString(strings.ToUpper(value))
	return err == nil
}
