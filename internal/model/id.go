package model

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"time"
)

// Submission identifiers are 24 lowercase hex characters: a 4-byte unix
// timestamp followed by 8 random bytes. The timestamp prefix keeps ids
// roughly sortable by creation time.
var idPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

// NewID generates a new submission identifier.
func NewID() string {
	var raw [12]byte
	binary.BigEndian.PutUint32(raw[:4], uint32(time.Now().Unix()))
	if _, err := rand.Read(raw[4:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic("model: read random bytes: " + err.Error())
	}
	return hex.EncodeToString(raw[:])
}

// IsValidID reports whether s is a well-formed submission identifier.
func IsValidID(s string) bool {
	return idPattern.MatchString(s)
}
