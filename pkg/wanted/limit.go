package wanted

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Limit caps how many records may be emitted per series during one
// aggregation run. It is either a finite positive cap or unlimited.
//
// The zero value is invalid; construct limits via Finite, Unlimited or
// ParseLimit.
type Limit struct {
	n         int
	unlimited bool
}

// Unlimited returns a limit that never caps a series.
func Unlimited() Limit {
	return Limit{unlimited: true}
}

// Finite returns a limit of n records per series.
// n must be >= 1.
func Finite(n int) (Limit, error) {
	if n < 1 {
		return Limit{}, fmt.Errorf("limit must be >= 1 (got %d)", n)
	}
	return Limit{n: n}, nil
}

// MustFinite is like Finite but panics on invalid n. For tests and
// compile-time constants.
func MustFinite(n int) Limit {
	l, err := Finite(n)
	if err != nil {
		panic(err)
	}
	return l
}

// ParseLimit normalizes the boolean-or-integer limit union used by the
// configuration surface:
//
//	true  -> 1
//	false -> unlimited
//	n>=1  -> n
//
// Strings are accepted for environment overrides ("true", "false", "yes",
// "no", or a decimal integer). Any other value is a configuration error.
func ParseLimit(v any) (Limit, error) {
	switch val := v.(type) {
	case nil:
		return Limit{}, fmt.Errorf("limit is not set")
	case bool:
		if val {
			return Finite(1)
		}
		return Unlimited(), nil
	case int:
		return Finite(val)
	case int64:
		if val > math.MaxInt32 {
			return Limit{}, fmt.Errorf("limit %d out of range", val)
		}
		return Finite(int(val))
	case float64:
		// JSON numbers decode as float64; reject fractions.
		if val != math.Trunc(val) {
			return Limit{}, fmt.Errorf("limit must be an integer (got %v)", val)
		}
		return Finite(int(val))
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes":
			return Finite(1)
		case "false", "no":
			return Unlimited(), nil
		default:
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				return Limit{}, fmt.Errorf("invalid limit %q", val)
			}
			return Finite(n)
		}
	default:
		return Limit{}, fmt.Errorf("invalid limit type %T", v)
	}
}

// Allows reports whether a series with count already-emitted records may
// emit another one.
func (l Limit) Allows(count int) bool {
	return l.unlimited || count < l.n
}

// IsUnlimited reports whether the limit is the unlimited marker.
func (l Limit) IsUnlimited() bool {
	return l.unlimited
}

// IsZero reports whether the limit is the invalid zero value.
func (l Limit) IsZero() bool {
	return !l.unlimited && l.n == 0
}

// String implements fmt.Stringer.
func (l Limit) String() string {
	if l.unlimited {
		return "unlimited"
	}
	return strconv.Itoa(l.n)
}

// UnmarshalJSON decodes the raw boolean-or-integer union.
func (l *Limit) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseLimit(v)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// UnmarshalText decodes a limit from its string form, for environment
// variable overrides.
func (l *Limit) UnmarshalText(text []byte) error {
	parsed, err := ParseLimit(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
