package tagdb

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
)

// bindArg returns the driver argument for v
func bindArg(v Value) (interface{}, error) {
	switch v := v.(type) {
	case TextValue:
		return string(v), nil
	case NumberValue:
		return int64(v), nil
	case DecimalValue:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %v is not a finite decimal", ErrBind, f)
		}
		return f, nil
	case BlobValue:
		if v == nil {
			return []byte{}, nil
		}
		return []byte(v), nil
	case RawValue:
		parsed, err := v.Parse()
		if err != nil {
			return nil, err
		}
		return bindArg(parsed)
	case nil:
		return nil, fmt.Errorf("%w: missing value", ErrBind)
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

// bindRow returns the driver arguments for one row. Any failing column
// fails the whole row.
func bindRow(columns int, row []Value) ([]interface{}, error) {
	if len(row) != columns {
		return nil, fmt.Errorf("%w: %d values for %d columns", ErrBind, len(row), columns)
	}

	args := make([]interface{}, len(row))
	for i, v := range row {
		arg, err := bindArg(v)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		args[i] = arg
	}

	return args, nil
}

// renderColumn renders a scanned column as the requested tag. NULL is
// "" for text and blob and "0" for number and decimal.
func renderColumn(tag TypeTag, raw interface{}) string {
	switch tag {
	case Text:
		return renderText(raw)
	case Number:
		return strconv.FormatInt(asInt(raw), 10)
	case Decimal:
		return strconv.FormatFloat(asFloat(raw), 'f', -1, 64)
	case Blob:
		return decodeBlob(raw)
	}

	return ""
}

func renderText(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	}

	return fmt.Sprint(raw)
}

// asInt follows the engine's integer conversion: NULL and unparsable text
// are zero, reals are truncated.
func asInt(raw interface{}) int64 {
	switch v := raw.(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		return parseInt(v)
	case []byte:
		return parseInt(string(v))
	}

	return 0
}

func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}

	return 0
}

func asFloat(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		return f
	}

	return 0
}

// decodeBlob decodes raw bytes as UTF-8, replacing invalid sequences
// with U+FFFD.
func decodeBlob(raw interface{}) string {
	var b []byte
	switch v := raw.(type) {
	case nil:
		return ""
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return renderText(raw)
	}

	decoded, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}

	return string(decoded)
}
