package query

import (
	"database/sql"
	"database/sql/driver"
	"reflect"
	"time"

	"github.com/spf13/cast"
)

var (
	timeType  = reflect.TypeOf(time.Time{})
	bytesType = reflect.TypeOf([]byte(nil))
)

// typeName returns a readable name of V for error messages.
func typeName[V any]() string {
	t := reflect.TypeOf((*V)(nil)).Elem()
	return t.String()
}

// convertCell converts one raw backend cell into V. NULL converts to the
// zero value; use convertNull where absence must be observable.
func convertCell[V any](raw any) (V, error) {
	var zero V
	if raw == nil {
		return zero, nil
	}
	if v, ok := raw.(V); ok {
		return v, nil
	}

	raw, err := unwrap(raw)
	if err != nil {
		return zero, ErrConversion.Wrap(err, raw, typeName[V]())
	}
	if raw == nil {
		return zero, nil
	}

	t := reflect.TypeOf((*V)(nil)).Elem()
	// fixed-size values such as [16]byte -> uuid.UUID
	if rv := reflect.ValueOf(raw); (t.Kind() == reflect.Array || t.Kind() == reflect.Struct) && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t).Interface().(V), nil
	}

	if scanner, ok := any(&zero).(sql.Scanner); ok {
		if err := scanner.Scan(raw); err != nil {
			return zero, ErrConversion.Wrap(err, raw, typeName[V]())
		}
		return zero, nil
	}

	out, err := castTo(t, raw)
	if err != nil {
		return zero, ErrConversion.Wrap(err, raw, t.String())
	}
	return reflect.ValueOf(out).Convert(t).Interface().(V), nil
}

// unwrap resolves driver-specific wrappers (pgtype.Numeric, ...) to
// plain driver values.
func unwrap(raw any) (any, error) {
	if valuer, ok := raw.(driver.Valuer); ok {
		return valuer.Value()
	}
	return raw, nil
}

// castTo coerces raw into a value whose kind matches t.
func castTo(t reflect.Type, raw any) (any, error) {
	switch {
	case t == timeType:
		return cast.ToTimeE(raw)
	case t == bytesType || (t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8):
		switch b := raw.(type) {
		case []byte:
			return b, nil
		case string:
			return []byte(b), nil
		}
		return nil, ErrConversion.New(raw, t.String())
	}

	switch t.Kind() {
	case reflect.String:
		return cast.ToStringE(raw)
	case reflect.Bool:
		return cast.ToBoolE(raw)
	case reflect.Int:
		return cast.ToIntE(raw)
	case reflect.Int8:
		return cast.ToInt8E(raw)
	case reflect.Int16:
		return cast.ToInt16E(raw)
	case reflect.Int32:
		return cast.ToInt32E(raw)
	case reflect.Int64:
		return cast.ToInt64E(raw)
	case reflect.Uint:
		return cast.ToUintE(raw)
	case reflect.Uint8:
		return cast.ToUint8E(raw)
	case reflect.Uint16:
		return cast.ToUint16E(raw)
	case reflect.Uint32:
		return cast.ToUint32E(raw)
	case reflect.Uint64:
		return cast.ToUint64E(raw)
	case reflect.Float32:
		return cast.ToFloat32E(raw)
	case reflect.Float64:
		return cast.ToFloat64E(raw)
	default:
		return nil, ErrConversion.New(raw, t.String())
	}
}

// convertNull converts a raw cell into a nullable V; NULL yields an
// invalid sql.Null.
func convertNull[V any](raw any) (sql.Null[V], error) {
	if _, ok := raw.(V); !ok {
		plain, err := unwrap(raw)
		if err != nil {
			return sql.Null[V]{}, ErrConversion.Wrap(err, raw, typeName[V]())
		}
		raw = plain
	}
	if raw == nil {
		return sql.Null[V]{}, nil
	}
	v, err := convertCell[V](raw)
	if err != nil {
		return sql.Null[V]{}, err
	}
	return sql.Null[V]{V: v, Valid: true}, nil
}

// checkWidth verifies a row slice matches a projection's width.
func checkWidth(row []any, width int) error {
	if len(row) != width {
		return ErrRowShape.New(len(row), width)
	}
	return nil
}
