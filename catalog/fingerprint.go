package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// Fingerprint identifies the five fields of an entry independent of its name,
// policy and note. Entries that differ only in surrounding whitespace share one.
func Fingerprint(e Entry) (string, error) {
	e = e.normalized()
	raw, err := json.Marshal(map[string]string{
		"minute":  e.Minute,
		"hour":    e.Hour,
		"day":     e.Day,
		"month":   e.Month,
		"weekday": e.Weekday,
	})
	if err != nil {
		return "", err
	}
	canonical, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
