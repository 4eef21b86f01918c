package params

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var lengthUnits = map[string]float64{
	"":   1,
	"mm": 1,
	"cm": 10,
	"m":  1000,
	"in": 25.4,
}

var angleUnits = map[string]float64{
	"":    1,
	"deg": 1,
	"rad": 180 / math.Pi,
}

// ParseLength parses a length expression into millimetres. A bare number is
// taken as millimetres; "mm", "cm", "m" and "in" suffixes are accepted with or
// without a separating space.
func ParseLength(s string) (float64, error) {
	return parseWithUnit(s, lengthUnits)
}

// ParseAngle parses an angle expression into degrees. A bare number is taken
// as degrees; "deg" and "rad" suffixes are accepted.
func ParseAngle(s string) (float64, error) {
	return parseWithUnit(s, angleUnits)
}

func parseWithUnit(s string, units map[string]float64) (float64, error) {
	expr := strings.TrimSpace(s)
	if expr == "" {
		return 0, fmt.Errorf("empty value")
	}
	split := len(expr)
	for i, r := range expr {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			// Allow exponents such as 1e-3.
			if (r == 'e' || r == 'E') && i > 0 && i+1 < len(expr) && isExponentTail(expr[i+1:]) {
				continue
			}
			split = i
			break
		}
	}
	num := strings.TrimSpace(expr[:split])
	unit := strings.ToLower(strings.TrimSpace(expr[split:]))

	factor, ok := units[unit]
	if !ok {
		return 0, fmt.Errorf("unknown unit %q in %q", unit, s)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q in %q", num, s)
	}
	return v * factor, nil
}

func isExponentTail(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
