package phone

import (
	"fmt"
	"strings"

	"github.com/rangerops/clubhouse-rbs/internal/errs"
)

// Format normalizes a raw phone number to E.164.
//
// All non-digit characters are stripped. A number that already carried a
// leading + keeps its country code. Bare 10-digit numbers are assumed
// NANP and get +1; 11-digit numbers starting with 1 likewise. Anything
// shorter is rejected rather than guessed at.
func Format(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	hasPlus := strings.HasPrefix(trimmed, "+")

	var b strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case hasPlus && len(digits) >= 10:
		return "+" + digits, nil
	case !hasPlus && len(digits) == 10:
		return "+1" + digits, nil
	case !hasPlus && len(digits) == 11 && digits[0] == '1':
		return "+" + digits, nil
	default:
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidPhoneNumber, raw)
	}
}
