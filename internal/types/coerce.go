// Package types contains the row and document model shared by the converter and the sinks.
package types

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Coerce converts the text of one exported field into a typed value.
//
// Rules, in order: "" is nil; "true"/"false" in any letter case are booleans;
// text containing '.' is tried as a float only; any other text is tried as an
// integer. Text that fails the numeric attempt is returned unchanged.
//
// A dotted value that is not a valid float never falls back to an integer,
// so "1.2.3" stays a string rather than becoming 1.
func Coerce(text string) any {
	if text == "" {
		return nil
	}

	switch strings.ToLower(text) {
	case "true":
		return true
	case "false":
		return false
	}

	if strings.Contains(text, ".") {
		if f, ok := parseFloat(text); ok {
			return f
		}
		return text
	}

	if n, ok := parseInt(text); ok {
		return n
	}
	return text
}

// parseInt accepts an optionally signed run of decimal digits. Values outside
// the int64 range are returned as *big.Int so no digits are lost.
func parseInt(text string) (any, bool) {
	s, ok := normalizeNumber(text)
	if !ok {
		return nil, false
	}

	digits := strings.TrimLeft(s, "+-")
	if len(s)-len(digits) > 1 || digits == "" {
		return nil, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return nil, false
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, true
	}
	if errors.Is(err, strconv.ErrRange) {
		if b, ok := new(big.Int).SetString(s, 10); ok {
			return b, true
		}
	}
	return nil, false
}

// parseFloat accepts decimal notation with an optional exponent. Hexadecimal
// floats and the inf/nan spellings are rejected, as is overflow to infinity.
func parseFloat(text string) (float64, bool) {
	s, ok := normalizeNumber(text)
	if !ok {
		return 0, false
	}

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
		case c == '.', c == '+', c == '-', c == 'e', c == 'E':
		default:
			return 0, false
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// normalizeNumber trims surrounding whitespace, maps decimal digits of any
// script to ASCII and removes digit-group underscores. An underscore is only
// valid between two digits.
func normalizeNumber(text string) (string, bool) {
	s := asciiDigits(strings.TrimSpace(text))
	if s == "" {
		return "", false
	}
	if !strings.Contains(s, "_") {
		return s, true
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			b.WriteByte(s[i])
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return "", false
		}
	}
	return b.String(), true
}

// asciiDigits replaces non-ASCII decimal digits ("١٢" -> "12").
func asciiDigits(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf || !unicode.IsDigit(r) {
			return r
		}
		// Decimal digits are encoded in runs of ten starting at zero.
		zero := r
		for unicode.IsDigit(zero - 1) {
			zero--
		}
		return '0' + (r-zero)%10
	}, s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// FormatFloat renders f using the shortest representation that round-trips.
// Integral values keep a trailing ".0" and magnitudes outside [1e-4, 1e16)
// use exponent notation, e.g. 4.0, 3.14, 1e+16, 1.5e-05.
func FormatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
