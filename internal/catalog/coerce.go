package catalog

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Coerce converts a loosely typed literal (from YAML or a command line)
// into the Go type of the column. nil stays nil.
func (c Column) Coerce(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	var (
		out any
		err error
	)
	switch c.Type {
	case TypeInt:
		out, err = cast.ToInt64E(v)
	case TypeFloat:
		out, err = cast.ToFloat64E(v)
	case TypeString:
		out, err = cast.ToStringE(v)
	case TypeBool:
		out, err = cast.ToBoolE(v)
	case TypeDecimal:
		out, err = toDecimal(v)
	case TypeTime:
		out, err = cast.ToTimeE(v)
	case TypeUUID:
		out, err = toUUID(v)
	case TypeBytes:
		var s string
		s, err = cast.ToStringE(v)
		out = []byte(s)
	default:
		return nil, fmt.Errorf("column %s: unknown type %q", c.Name, c.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("column %s: %v as %s: %w", c.Name, v, c.Type, err)
	}
	return out, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case float32, float64:
		return decimal.NewFromFloat(cast.ToFloat64(x)), nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(s)
}

func toUUID(v any) (uuid.UUID, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case []byte:
		return uuid.FromBytes(x)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return uuid.UUID{}, err
	}
	return uuid.Parse(s)
}
