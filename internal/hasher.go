package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// identityPattern is the accepted shape of a conversation identity
// token. Anything else is rejected before storage or network access.
var identityPattern = regexp.MustCompile(`^[A-Za-z0-9]{32,128}$`)

// ValidIdentity reports whether id is a well-formed conversation identity
func ValidIdentity(id string) bool {
	return identityPattern.MatchString(id)
}

// HashConversation produces the content-derived conversation identity:
// a lowercase hex SHA-256 digest over salt + "|" + the canonical form of
// the input. Equal canonical forms with equal salt always yield
// bit-identical output; every persistence key downstream depends on
// that.
func HashConversation(input interface{}, salt string) string {
	h := sha256.Sum256([]byte(salt + "|" + CanonicalForm(input)))
	return hex.EncodeToString(h[:])
}
