// Package numeric normalizes decimal columns at the storage boundary.
//
// PostgreSQL NUMERIC values reach Go as strings or byte slices depending on
// the driver path. Every monetary or quantity field goes through Parse so the
// rest of the code only ever sees float64, and absent or malformed values
// collapse to 0.
package numeric

import (
	"database/sql/driver"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a float64 that scans leniently from any driver representation.
type Number float64

func (n *Number) Scan(src any) error {
	*n = Number(Parse(src))
	return nil
}

func (n Number) Value() (driver.Value, error) {
	return decimal.NewFromFloat(float64(n)).String(), nil
}

// UnmarshalJSON accepts both JSON numbers and numeric strings such as "2500".
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		*n = 0
		return nil
	}
	*n = Number(parseString(s))
	return nil
}

func (n Number) Float64() float64 {
	return float64(n)
}

func (n Number) Decimal() decimal.Decimal {
	return decimal.NewFromFloat(float64(n))
}

// Parse converts v to float64. nil, empty strings, unparsable input, NaN and
// infinities yield 0.
func Parse(v any) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0
	case Number:
		f = float64(x)
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case decimal.Decimal:
		f = x.InexactFloat64()
	case *string:
		if x == nil {
			return 0
		}
		return parseString(*x)
	case string:
		return parseString(x)
	case []byte:
		return parseString(string(x))
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		// decimal rejects some float notations strconv accepts, e.g. "1e400" overflow is handled below.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	}
	return d.InexactFloat64()
}

// Round2 rounds half away from zero to two decimals.
func Round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// Round3 rounds half away from zero to three decimals, the scale of stock
// quantities.
func Round3(f float64) float64 {
	return decimal.NewFromFloat(f).Round(3).InexactFloat64()
}
