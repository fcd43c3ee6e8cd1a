package value_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/pkg/value"
)

// These tests exercise only the shared IsX/AsX/XVal contract, so they
// pass unmodified whether the package is built tagged (default) or
// NaN-boxed (`-tags nanboxed`).

func TestEqualNumbers(t *testing.T) {
	require.True(t, value.Equal(value.NumberVal(1), value.NumberVal(1)))
	require.False(t, value.Equal(value.NumberVal(1), value.NumberVal(2)))
}

func TestEqualNaNIsNeverEqual(t *testing.T) {
	nan := value.NumberVal(math.NaN())
	require.False(t, value.Equal(nan, nan))
}

func TestEqualNilAndBool(t *testing.T) {
	require.True(t, value.Equal(value.NilVal(), value.NilVal()))
	require.True(t, value.Equal(value.BoolVal(true), value.BoolVal(true)))
	require.False(t, value.Equal(value.BoolVal(true), value.BoolVal(false)))
	require.False(t, value.Equal(value.NilVal(), value.BoolVal(false)))
}

func TestEqualStringsByContentViaInterning(t *testing.T) {
	a := value.NewObjString([]byte("hi"), value.HashBytes([]byte("hi")))
	b := value.NewObjString([]byte("hi"), value.HashBytes([]byte("hi")))
	// Two distinct allocations with equal content are NOT equal without
	// interning: object equality is reference equality.
	require.False(t, value.Equal(value.StringVal(a), value.StringVal(b)))
	require.True(t, value.Equal(value.StringVal(a), value.StringVal(a)))
}

func TestIsFalsey(t *testing.T) {
	require.True(t, value.IsFalsey(value.NilVal()))
	require.True(t, value.IsFalsey(value.BoolVal(false)))
	require.False(t, value.IsFalsey(value.BoolVal(true)))
	require.False(t, value.IsFalsey(value.NumberVal(0)))
	require.False(t, value.IsFalsey(value.StringVal(value.NewObjString([]byte(""), 0))))
}

func TestFormat(t *testing.T) {
	require.Equal(t, "nil", value.Format(value.NilVal()))
	require.Equal(t, "true", value.Format(value.BoolVal(true)))
	require.Equal(t, "42", value.Format(value.NumberVal(42)))
	require.Equal(t, "1.5", value.Format(value.NumberVal(1.5)))
}

func TestObjRoundTrip(t *testing.T) {
	s := value.NewObjString([]byte("round"), value.HashBytes([]byte("round")))
	v := value.StringVal(s)
	require.True(t, value.IsObj(v))
	require.True(t, value.IsString(v))
	require.False(t, value.IsNumber(v))
	require.Same(t, s, value.AsString(v))
}
