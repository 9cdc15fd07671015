// Package reference generates the payment references handed to the gateway
// and stored on transactions. References have the shape
// PREFIX-YYYYMMDD-XXXXXXXX where the suffix is 8 uppercase hex characters.
package reference

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// PrefixToken marks token purchase references.
	PrefixToken = "TOKEN"
	// PrefixInspection marks inspection payment references.
	PrefixInspection = "INSP"
)

var referencePattern = regexp.MustCompile(`^(TOKEN|INSP)-(\d{8})-([0-9A-F]{8})$`)

// New builds a reference for the given prefix using the supplied time for the
// date component.
func New(prefix string, now time.Time) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix != PrefixToken && prefix != PrefixInspection {
		return "", fmt.Errorf("unsupported reference prefix %q", prefix)
	}
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate reference suffix: %w", err)
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(suffix))), nil
}

// IsValid reports whether the value matches the reference shape.
func IsValid(value string) bool {
	return referencePattern.MatchString(value)
}

// Prefix extracts the prefix component, or an empty string for malformed input.
func Prefix(value string) string {
	match := referencePattern.FindStringSubmatch(value)
	if match == nil {
		return ""
	}
	return match[1]
}
