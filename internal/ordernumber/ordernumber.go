// Package ordernumber generates human readable order numbers such as
// ORD20261016093000A1B2C3.
package ordernumber

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// Prefix starts every order number.
	Prefix = "ORD"

	timestampLayout = "20060102150405"
	suffixLength    = 6
)

// Length is the total number of characters in a generated order number.
const Length = len(Prefix) + len(timestampLayout) + suffixLength

// Generator produces order numbers.
type Generator interface {
	Next() string
}

type generator struct {
	now func() time.Time
}

// New returns a generator that stamps numbers with the current UTC time.
func New() Generator {
	return &generator{now: time.Now}
}

// NewWithClock returns a generator using the given clock. Intended for tests.
func NewWithClock(now func() time.Time) Generator {
	return &generator{now: now}
}

// Next returns Prefix, a second granularity UTC timestamp and six random
// upper case hexadecimal characters.
func (g *generator) Next() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLength]

	var b strings.Builder
	b.Grow(Length)
	b.WriteString(Prefix)
	b.WriteString(g.now().UTC().Format(timestampLayout))
	b.WriteString(strings.ToUpper(suffix))
	return b.String()
}

// Valid reports whether s has the shape of a generated order number.
func Valid(s string) bool {
	if len(s) != Length || !strings.HasPrefix(s, Prefix) {
		return false
	}
	if _, err := time.Parse(timestampLayout, s[len(Prefix):len(Prefix)+len(timestampLayout)]); err != nil {
		return false
	}
	for _, c := range s[len(Prefix)+len(timestampLayout):] {
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
