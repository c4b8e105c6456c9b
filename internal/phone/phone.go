// Package phone formats North American phone numbers as the user types.
//
// The digit string is the source of truth; the displayed "(416)-555-1234" text is
// always derived from it with Format.
package phone

import "strings"

// MaxDigits is the length of a complete number: 3 area, 3 exchange, 4 line.
const MaxDigits = 10

// Deformat strips every character that is not an ASCII digit.
func Deformat(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format applies the progressive mask to a digit string:
//
//	""           -> ""
//	"416"        -> "(416"
//	"416555"     -> "(416)-555"
//	"4165551234" -> "(416)-555-1234"
//
// Non-digit characters are ignored and digits past MaxDigits are dropped.
func Format(digits string) string {
	digits = Deformat(digits)
	if len(digits) > MaxDigits {
		digits = digits[:MaxDigits]
	}

	n := len(digits)
	if n == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len("(000)-000-0000"))
	b.WriteByte('(')

	switch {
	case n <= 3:
		b.WriteString(digits)
	case n <= 6:
		b.WriteString(digits[:3])
		b.WriteString(")-")
		b.WriteString(digits[3:])
	default:
		b.WriteString(digits[:3])
		b.WriteString(")-")
		b.WriteString(digits[3:6])
		b.WriteByte('-')
		b.WriteString(digits[6:])
	}

	return b.String()
}

// IsValid reports whether text holds exactly MaxDigits digits, whatever its punctuation.
func IsValid(text string) bool {
	return len(Deformat(text)) == MaxDigits
}
