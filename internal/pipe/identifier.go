// Package pipe speaks the Miruro secure pipe protocol: request intents are
// JSON encoded as unpadded base64url, responses come back as base64url
// wrapped gzip wrapped JSON, and episode ids inside them are base64url
// encoded composite identifiers.
package pipe

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// IdentifierDelimiter separates the components of a composite episode id
const IdentifierDelimiter = ":"

// RestorePadding appends the '=' padding that base64url encoders strip.
// Existing trailing padding is normalized first, so the result always has a
// length that is a multiple of 4 and never carries more than two '='.
func RestorePadding(s string) string {
	s = strings.TrimRight(s, "=")
	if n := (4 - len(s)%4) % 4; n > 0 {
		return s + strings.Repeat("=", n)
	}
	return s
}

// identifierResult is either a decoded composite id or the untouched input
type identifierResult struct {
	text    string
	decoded bool
}

func tryDecodeIdentifier(candidate string) identifierResult {
	raw, err := base64.URLEncoding.DecodeString(RestorePadding(candidate))
	if err != nil || !utf8.Valid(raw) {
		return identifierResult{text: candidate}
	}

	text := string(raw)
	if !strings.Contains(text, IdentifierDelimiter) {
		// any short alphanumeric string is valid base64; only trust it with a delimiter
		return identifierResult{text: candidate}
	}

	return identifierResult{text: text, decoded: true}
}

// DecodeIdentifier returns the plain text of a base64url encoded composite id,
// or candidate unchanged when it does not decode to text containing ':'.
func DecodeIdentifier(candidate string) string {
	return tryDecodeIdentifier(candidate).text
}

// EncodeIdentifier produces the opaque form of a plain episode id
func EncodeIdentifier(plain string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(plain))
}
