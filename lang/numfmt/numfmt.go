// Package numfmt implements the number formatting and parsing rules shared
// by the const-folder and the EvalNum/Chr/Ord builtins (spec §4.2, §6):
// integers in [-999999, 999999] print decimal, integers outside that range
// but within an int64 print as a signed hex literal, everything else prints
// via the language's default double formatting, and NaN/±Inf map to the
// textual tokens null/±i64::MAX.
package numfmt

import (
	"math"
	"strconv"
)

const (
	decimalMin = -999999
	decimalMax = 999999
)

// FormatFloat renders f per the number formatting rules (spec §4.2, §6).
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "null"
	case math.IsInf(f, 1):
		return strconv.FormatInt(math.MaxInt64, 10)
	case math.IsInf(f, -1):
		return strconv.FormatInt(-math.MaxInt64, 10)
	}

	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return FormatInt(int64(f))
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatInt renders an integer per the decimal/hex threshold rule.
func FormatInt(n int64) string {
	if n >= decimalMin && n <= decimalMax {
		return strconv.FormatInt(n, 10)
	}
	if n < 0 {
		return "-0x" + strconv.FormatUint(uint64(-n), 16)
	}
	return "0x" + strconv.FormatUint(uint64(n), 16)
}

// ParseFloat parses s as either a decimal integer, a 0x/-0x hex integer, or
// a default-formatted double — the inverse of FormatFloat/FormatInt — and
// reports whether s is parseable at all.
func ParseFloat(s string) (float64, bool) {
	if n, ok := ParseInt(s); ok {
		return float64(n), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseInt parses s as either a decimal or (optionally signed) 0x-prefixed
// hex integer literal.
func ParseInt(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	rest := s
	if rest[0] == '-' {
		neg = true
		rest = rest[1:]
	}
	if len(rest) > 2 && rest[0] == '0' && (rest[1] == 'x' || rest[1] == 'X') {
		u, err := strconv.ParseUint(rest[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		n := int64(u)
		if neg {
			n = -n
		}
		return n, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
