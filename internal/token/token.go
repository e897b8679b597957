// Package token implements the URL-safe reversible encoding used in
// activation and password reset links. Tokens carry a user id or an email
// address; nothing is stored server-side for them.
package token

import (
	"encoding/base64"
	"errors"
)

var ErrMalformed = errors.New("malformed token")

// Encode produces an unpadded URL-safe encoding of value, suitable for use
// as a path segment.
func Encode(value []byte) string {
	return base64.RawURLEncoding.EncodeToString(value)
}

// Decode is the inverse of Encode. It returns ErrMalformed on any input
// Encode could not have produced; callers must treat that as "not found",
// never as a crash.
func Decode(tok string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return nil, ErrMalformed
	}
	return b, nil
}

// EncodeString is Encode for string values.
func EncodeString(value string) string {
	return Encode([]byte(value))
}

// DecodeString is Decode for string values.
func DecodeString(tok string) (string, error) {
	b, err := Decode(tok)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
