package tagdb

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeTag is the logical type of a value. It selects how the value is
// bound on write and how a column is rendered on read.
type TypeTag uint

const (
	// Text is bound as a UTF-8 string
	Text TypeTag = iota
	// Number is bound as a 64-bit integer
	Number
	// Decimal is bound as a 64-bit float
	Decimal
	// Blob is bound as the UTF-8 bytes of its payload
	Blob
)

func (t TypeTag) String() string {
	switch t {
	case Text:
		return "text"
	case Number:
		return "number"
	case Decimal:
		return "decimal"
	case Blob:
		return "blob"
	default:
		return fmt.Sprintf("TypeTag(%d)", uint(t))
	}
}

func (t TypeTag) valid() bool {
	return t <= Blob
}

// ParseTag maps the names text, number, decimal and blob to their tag.
func ParseTag(name string) (TypeTag, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "text":
		return Text, nil
	case "number":
		return Number, nil
	case "decimal":
		return Decimal, nil
	case "blob":
		return Blob, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
}

// Value is a typed value passed to Insert, Update and SetValue. The only
// implementations are TextValue, NumberValue, DecimalValue, BlobValue and
// RawValue.
type Value interface {
	Tag() TypeTag
	String() string
	isValue()
}

type TextValue string

func (TextValue) Tag() TypeTag     { return Text }
func (v TextValue) String() string { return string(v) }
func (TextValue) isValue()         {}

type NumberValue int64

func (NumberValue) Tag() TypeTag     { return Number }
func (v NumberValue) String() string { return strconv.FormatInt(int64(v), 10) }
func (NumberValue) isValue()         {}

type DecimalValue float64

func (DecimalValue) Tag() TypeTag { return Decimal }
func (v DecimalValue) String() string {
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}
func (DecimalValue) isValue() {}

type BlobValue []byte

func (BlobValue) Tag() TypeTag     { return Blob }
func (v BlobValue) String() string { return string(v) }
func (BlobValue) isValue()         {}

// RawValue is an unparsed type name and payload, as read from text input.
// It is parsed when bound, so a bad payload fails only the row it is in.
type RawValue struct {
	TagName string
	Payload string
}

const invalidTag = ^TypeTag(0)

func (v RawValue) Tag() TypeTag {
	tag, err := ParseTag(v.TagName)
	if err != nil {
		return invalidTag
	}

	return tag
}

func (v RawValue) String() string { return v.Payload }
func (RawValue) isValue()         {}

// Parse returns the typed value the pair describes
func (v RawValue) Parse() (Value, error) {
	return Tagged(v.TagName, v.Payload)
}

// ParseValue converts a string payload into a Value of the given tag.
// Number and decimal payloads that do not parse fail with ErrBind.
func ParseValue(tag TypeTag, payload string) (Value, error) {
	switch tag {
	case Text:
		return TextValue(payload), nil
	case Number:
		i, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrBind, payload)
		}
		return NumberValue(i), nil
	case Decimal:
		f, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a decimal", ErrBind, payload)
		}
		return DecimalValue(f), nil
	case Blob:
		return BlobValue(payload), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, tag)
}

// Tagged parses a type name and payload pair such as ("number", "30").
func Tagged(name, payload string) (Value, error) {
	tag, err := ParseTag(name)
	if err != nil {
		return nil, err
	}

	return ParseValue(tag, payload)
}

// ColumnSpec requests a column in a read and the tag used to render it.
type ColumnSpec struct {
	Tag  TypeTag
	Name string
}

// Row maps column names to their rendered values.
type Row map[string]string
