package tagdb

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBindArg(t *testing.T) {
	tests := []struct {
		value Value
		arg   interface{}
		err   error
	}{
		{TextValue("Alice"), "Alice", nil},
		{NumberValue(30), int64(30), nil},
		{DecimalValue(3.14), 3.14, nil},
		{BlobValue("raw"), []byte("raw"), nil},
		{BlobValue(nil), []byte{}, nil},
		{RawValue{TagName: "number", Payload: "12"}, int64(12), nil},
		{RawValue{TagName: "blob", Payload: "b"}, []byte("b"), nil},
		{RawValue{TagName: "number", Payload: "twelve"}, nil, ErrBind},
		{RawValue{TagName: "date", Payload: "2020"}, nil, ErrUnsupportedType},
		{DecimalValue(math.Inf(1)), nil, ErrBind},
		{nil, nil, ErrBind},
	}

	for _, test := range tests {
		arg, err := bindArg(test.value)
		if test.err != nil {
			assert.True(t, errors.Is(err, test.err), "%#v: %v", test.value, err)
			continue
		}
		assert.Nil(t, err)
		assert.Equal(t, test.arg, arg)
	}
}

func TestBindRow(t *testing.T) {
	args, err := bindRow(2, []Value{TextValue("a"), NumberValue(1)})
	assert.Nil(t, err)
	assert.Equal(t, []interface{}{"a", int64(1)}, args)

	_, err = bindRow(3, []Value{TextValue("a"), NumberValue(1)})
	assert.True(t, errors.Is(err, ErrBind))

	_, err = bindRow(2, []Value{TextValue("a"), RawValue{TagName: "number", Payload: "x"}})
	assert.True(t, errors.Is(err, ErrBind))
	assert.Contains(t, err.Error(), "column 2")
}

func TestRenderColumn(t *testing.T) {
	when := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		tag    TypeTag
		raw    interface{}
		result string
	}{
		{Text, "Alice", "Alice"},
		{Text, nil, ""},
		{Text, int64(30), "30"},
		{Text, 2.5, "2.5"},
		{Text, []byte("bytes"), "bytes"},
		{Text, when, "2020-01-02T03:04:05Z"},
		{Number, int64(30), "30"},
		{Number, nil, "0"},
		{Number, 7.9, "7"},
		{Number, "42", "42"},
		{Number, "4.5", "4"},
		{Number, "abc", "0"},
		{Number, []byte("12"), "12"},
		{Decimal, 3.14, "3.14"},
		{Decimal, int64(3), "3"},
		{Decimal, nil, "0"},
		{Decimal, "2.25", "2.25"},
		{Blob, []byte("hello"), "hello"},
		{Blob, nil, ""},
		{Blob, "text stored", "text stored"},
		{Blob, []byte{'o', 'k', 0xff}, "ok�"},
		{Blob, int64(5), "5"},
		{TypeTag(9), "x", ""},
	}

	for _, test := range tests {
		assert.Equal(t, test.result, renderColumn(test.tag, test.raw), "%s %#v", test.tag, test.raw)
	}
}
