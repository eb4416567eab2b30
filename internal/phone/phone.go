// Package phone canonicalises phone numbers before they are stored or compared.
package phone

import "strings"

// Normalize converts arbitrary phone input to a digits-only local number.
//
// All non-digit characters are removed. A leading "82" country code is replaced
// by the local trunk prefix "0" when at least ten digits remain, so that
// "+82 10-1234-5678" and "010-1234-5678" compare equal.
func Normalize(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "82") && len(digits) >= 10 {
		return "0" + digits[2:]
	}
	return digits
}
