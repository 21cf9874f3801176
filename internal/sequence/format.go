// Package sequence derives gap-tolerant sequential document numbers from the
// rows already committed in a partition. Numbers are stored formatted, with a
// printed prefix and a zero-padded value that grows past the pad width.
package sequence

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedNumber reports a stored number whose suffix is not numeric.
// Rows only get numbers through the allocator, so a malformed value means the
// table was edited out-of-band.
var ErrMalformedNumber = errors.New("malformed sequence number")

var numericSuffixRe = regexp.MustCompile(`^\d+$`)

// Format renders a sequence value with its prefix, padding to at least three
// digits. Values past 999 keep all their digits: INV999 is followed by
// INV1000.
func Format(prefix string, seq int64) string {
	return fmt.Sprintf("%s%03d", prefix, seq)
}

// Parse extracts the numeric value from a formatted number.
func Parse(prefix, number string) (int64, error) {
	suffix, ok := strings.CutPrefix(number, prefix)
	if !ok || !numericSuffixRe.MatchString(suffix) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, number)
	}
	seq, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, number)
	}
	return seq, nil
}
