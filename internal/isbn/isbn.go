// Package isbn validates and normalizes ISBN-10 and ISBN-13 identifiers.
package isbn

import "strings"

// Normalize strips hyphens and spaces from an ISBN string.
func Normalize(raw string) string {
	normalized := strings.ReplaceAll(raw, "-", "")
	normalized = strings.ReplaceAll(normalized, " ", "")
	return normalized
}

// Validate reports whether raw is a checksum-valid ISBN-10 or ISBN-13.
// Hyphens and spaces are stripped before validation. Malformed input
// returns false, never an error.
func Validate(raw string) bool {
	if raw == "" {
		return false
	}

	clean := Normalize(raw)

	switch len(clean) {
	case 10:
		return validateISBN10(clean)
	case 13:
		return validateISBN13(clean)
	default:
		return false
	}
}

// validateISBN10 checks the weighted mod-11 checksum. The first nine
// characters must be digits; the check character may be 'X' or 'x'.
func validateISBN10(isbn string) bool {
	sum := 0
	for i := 0; i < 9; i++ {
		d := isbn[i]
		if d < '0' || d > '9' {
			return false
		}
		sum += int(d-'0') * (10 - i)
	}

	remainder := sum % 11
	var expected byte
	switch remainder {
	case 0:
		expected = '0'
	case 1:
		expected = 'X'
	default:
		expected = byte('0' + 11 - remainder)
	}

	check := isbn[9]
	if check == 'x' {
		check = 'X'
	}
	return check == expected
}

// validateISBN13 checks the alternating 1/3-weighted mod-10 checksum.
// All thirteen characters must be digits; there is no 'X' form.
func validateISBN13(isbn string) bool {
	sum := 0
	for i := 0; i < 12; i++ {
		d := isbn[i]
		if d < '0' || d > '9' {
			return false
		}
		digit := int(d - '0')
		if i%2 == 0 {
			sum += digit
		} else {
			sum += digit * 3
		}
	}

	check := isbn[12]
	if check < '0' || check > '9' {
		return false
	}
	expected := (10 - (sum % 10)) % 10
	return int(check-'0') == expected
}

// Format returns a hyphenated display form of an ISBN. Strings that are
// not 10 or 13 characters after normalization are returned unchanged.
func Format(raw string) string {
	clean := Normalize(raw)

	switch len(clean) {
	case 10:
		return clean[0:1] + "-" + clean[1:5] + "-" + clean[5:9] + "-" + clean[9:]
	case 13:
		return clean[0:3] + "-" + clean[3:4] + "-" + clean[4:8] + "-" + clean[8:12] + "-" + clean[12:]
	default:
		return raw
	}
}
