package codec

import (
	"bytes"
	"crypto/ed25519"
	"math"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_U64(t *testing.T) {
	encoded, err := Encode(uint64(1_000_000), U64)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x40, 0x42, 0x0f, 0x00, 0x00, 0x00, 0x00, 0x00}, encoded)
}

func TestEncode_Option(t *testing.T) {
	optionalU64 := Option(U64)

	encoded, err := Encode(nil, optionalU64)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, encoded)

	encoded, err = Encode(uint64(5), optionalU64)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x05, 0, 0, 0, 0, 0, 0, 0}, encoded)

	var absent *uint64
	encoded, err = Encode(absent, optionalU64)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, encoded)

	present := uint64(5)
	encoded, err = Encode(&present, optionalU64)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x05, 0, 0, 0, 0, 0, 0, 0}, encoded)
}

func TestDecode_FixedArrayTruncated(t *testing.T) {
	_, _, err := Decode(make([]byte, 7), FixedArray(U8, 8))
	assert.True(t, errors.Is(err, ErrTruncatedBuffer))
}

func TestDecode_OversizedCounts(t *testing.T) {
	for _, tc := range []struct {
		data []byte
		t    *Type
	}{
		{[]byte{1, 2, 3}, FixedArray(U8, 1<<31)},
		{[]byte{1, 2, 3}, FixedArray(FixedArray(U64, 1<<40), 1<<40)},
		{[]byte{0xff, 0xff, 0xff, 0x0f}, VariableArray(U8)},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0, 0}, VariableArray(FixedArray(Hash, 1<<58))},
		{[]byte{2, 0, 0, 0, 1}, VariableArray(Option(U64))},
	} {
		v, n, err := Decode(tc.data, tc.t)
		assert.True(t, errors.Is(err, ErrTruncatedBuffer), "%s: %v", tc.t, err)
		assert.Nil(t, v)
		assert.Zero(t, n)
	}
}

func TestDecode_ZeroSizedFixedArray(t *testing.T) {
	v, n, err := Decode([]byte{0xaa}, FixedArray(Struct(), 3))
	require.NoError(t, err)
	assert.Equal(t, []any{Fields{}, Fields{}, Fields{}}, v)
	assert.Zero(t, n)
}

func TestEncode_SizeOverflow(t *testing.T) {
	e := &encoder{sizeOnly: true}
	err := e.putLength(math.MaxUint32 + 1)
	assert.True(t, errors.Is(err, ErrSizeOverflow))

	require.NoError(t, e.putLength(math.MaxUint32))
	assert.Equal(t, LengthPrefixSize, e.size)
}

func TestEncode_IntegerWidths(t *testing.T) {
	for _, tc := range []struct {
		value    any
		t        *Type
		expected []byte
	}{
		{uint8(0xab), U8, []byte{0xab}},
		{uint16(0x0102), U16, []byte{0x02, 0x01}},
		{uint32(0x01020304), U32, []byte{0x04, 0x03, 0x02, 0x01}},
		{int8(-1), I8, []byte{0xff}},
		{int16(-2), I16, []byte{0xfe, 0xff}},
		{int32(-1), I32, []byte{0xff, 0xff, 0xff, 0xff}},
		{int64(math.MinInt64), I64, []byte{0, 0, 0, 0, 0, 0, 0, 0x80}},
		{big.NewInt(1), U128, append([]byte{1}, make([]byte, 15)...)},
		{big.NewInt(-1), I128, bytes.Repeat([]byte{0xff}, 16)},
		{7, U16, []byte{0x07, 0x00}},
	} {
		encoded, err := Encode(tc.value, tc.t)
		require.NoError(t, err, tc.t.String())
		assert.Equal(t, tc.expected, encoded, tc.t.String())
	}
}

func TestEncode_NumericOverflow(t *testing.T) {
	u128Max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	i128Min := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))

	for _, tc := range []struct {
		value any
		t     *Type
	}{
		{256, U8},
		{-1, U8},
		{uint64(math.MaxUint16 + 1), U16},
		{int64(-1), U64},
		{128, I8},
		{-129, I8},
		{uint64(math.MaxInt64) + 1, I64},
		{new(big.Int).Add(u128Max, big.NewInt(1)), U128},
		{big.NewInt(-1), U128},
		{new(big.Int).Sub(i128Min, big.NewInt(1)), I128},
	} {
		_, err := Encode(tc.value, tc.t)
		assert.True(t, errors.Is(err, ErrNumericOverflow), "%v as %s: %v", tc.value, tc.t, err)
	}

	// The boundaries themselves are representable.
	for _, tc := range []struct {
		value any
		t     *Type
	}{
		{255, U8},
		{-128, I8},
		{uint64(math.MaxUint64), U64},
		{u128Max, U128},
		{i128Min, I128},
	} {
		_, err := Encode(tc.value, tc.t)
		assert.NoError(t, err, "%v as %s", tc.value, tc.t)
	}
}

func TestEncode_FixedArrayArity(t *testing.T) {
	_, err := Encode([]any{uint8(1), uint8(2)}, FixedArray(U8, 3))
	assert.True(t, errors.Is(err, ErrArityMismatch))

	encoded, err := Encode([]byte{1, 2, 3}, FixedArray(U8, 3))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, encoded)
}

func TestEncode_VariableArray(t *testing.T) {
	encoded, err := Encode([]uint16{1, 2}, VariableArray(U16))
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0, 0, 0, 1, 0, 2, 0}, encoded)

	encoded, err = Encode([]any{}, VariableArray(U16))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, encoded)
}

func TestEncode_String(t *testing.T) {
	encoded, err := Encode("code", String)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 0, 0, 0, 'c', 'o', 'd', 'e'}, encoded)

	_, err = Encode(string([]byte{0xff, 0xfe}), String)
	assert.True(t, errors.Is(err, ErrInvalidString))
}

func TestEncode_Address(t *testing.T) {
	key := make(ed25519.PublicKey, AddressSize)
	key[0] = 9

	encoded, err := Encode(key, Address)
	require.NoError(t, err)
	assert.Equal(t, []byte(key), encoded)

	_, err = Encode(key[:31], Address)
	assert.True(t, errors.Is(err, ErrArityMismatch))

	_, err = Encode("not an address", Address)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestEncode_StructOrderAndFields(t *testing.T) {
	layout := Struct(
		NewField("b", U8),
		NewField("a", U16),
	)

	encoded, err := Encode(Fields{"a": uint16(0x0201), "b": uint8(3), "ignored": "extra"}, layout)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 0x01, 0x02}, encoded)

	_, err = Encode(Fields{"b": uint8(3)}, layout)
	assert.True(t, errors.Is(err, ErrMissingField))
	assert.Contains(t, err.Error(), `"a"`)

	_, err = Encode(Fields{"a": uint16(1), "b": 300}, layout)
	assert.True(t, errors.Is(err, ErrNumericOverflow))
	assert.Contains(t, err.Error(), "b:")
}

func TestEncode_TaggedUnion(t *testing.T) {
	layout := TaggedUnion(
		Variant{Name: "None"},
		Variant{Name: "Amount", Fields: []Field{NewField("quarks", U64)}},
	)

	encoded, err := Encode(NewEnum("None"), layout)
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, encoded)

	encoded, err = Encode(Enum{Variant: "Amount", Fields: Fields{"quarks": uint64(2)}}, layout)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 0, 0, 0, 0, 0, 0, 0}, encoded)

	_, err = Encode(NewEnum("Other"), layout)
	assert.True(t, errors.Is(err, ErrUnknownVariant))

	_, err = Encode(NewEnum("Amount"), layout)
	assert.True(t, errors.Is(err, ErrMissingField))
}

func TestDecode_InvalidTags(t *testing.T) {
	_, _, err := Decode([]byte{2}, Option(U8))
	assert.True(t, errors.Is(err, ErrInvalidTag))

	_, _, err = Decode([]byte{2}, SimpleEnum("A", "B"))
	assert.True(t, errors.Is(err, ErrInvalidTag))

	_, _, err = Decode([]byte{7}, Bool)
	assert.True(t, errors.Is(err, ErrInvalidTag))
}

func TestDecode_Truncated(t *testing.T) {
	for _, tc := range []struct {
		data []byte
		t    *Type
	}{
		{nil, U8},
		{[]byte{1, 2, 3}, U32},
		{make([]byte, 31), Address},
		{[]byte{5, 0, 0, 0, 'a'}, String},
		{[]byte{1}, Option(U16)},
		{[]byte{0xff, 0xff, 0xff, 0xff}, VariableArray(U64)},
		{[]byte{1, 0}, Struct(NewField("a", U8), NewField("b", U16))},
	} {
		v, n, err := Decode(tc.data, tc.t)
		assert.True(t, errors.Is(err, ErrTruncatedBuffer), "%s: %v", tc.t, err)
		assert.Nil(t, v)
		assert.Zero(t, n)
	}
}

func TestDecode_ReportsTrailingBytes(t *testing.T) {
	v, n, err := Decode([]byte{1, 0, 0xaa, 0xbb}, U16)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), v)
	assert.Equal(t, 2, n)

	_, err = DecodeExact([]byte{1, 0, 0xaa, 0xbb}, U16)
	assert.True(t, errors.Is(err, ErrArityMismatch))
}

func TestRoundTrip(t *testing.T) {
	key := make(ed25519.PublicKey, AddressSize)
	for i := range key {
		key[i] = byte(i)
	}

	hash := make([]any, 32)
	for i := range hash {
		hash[i] = uint8(255 - i)
	}

	state := TaggedUnion(
		Variant{Name: "Unlocked"},
		Variant{Name: "Locked", Fields: []Field{
			NewField("until", I64),
			NewField("authority", Option(Address)),
		}},
	)

	layout := Struct(
		NewField("u8", U8),
		NewField("u16", U16),
		NewField("u32", U32),
		NewField("u64", U64),
		NewField("u128", U128),
		NewField("i8", I8),
		NewField("i16", I16),
		NewField("i32", I32),
		NewField("i64", I64),
		NewField("i128", I128),
		NewField("flag", Bool),
		NewField("owner", Address),
		NewField("name", String),
		NewField("hash", Hash),
		NewField("amounts", VariableArray(U64)),
		NewField("memo", Option(String)),
		NewField("unset", Option(U32)),
		NewField("state", state),
		NewField("history", VariableArray(state)),
		NewField("nested", Struct(NewField("levels", U8))),
	)

	i128, ok := new(big.Int).SetString("-170141183460469231731687303715884105728", 10)
	require.True(t, ok)
	u128, ok := new(big.Int).SetString("340282366920938463463374607431768211455", 10)
	require.True(t, ok)

	value := Fields{
		"u8":      uint8(1),
		"u16":     uint16(2),
		"u32":     uint32(3),
		"u64":     uint64(math.MaxUint64),
		"u128":    u128,
		"i8":      int8(-8),
		"i16":     int16(-16),
		"i32":     int32(-32),
		"i64":     int64(-64),
		"i128":    i128,
		"flag":    true,
		"owner":   key,
		"name":    "codedev-treasury",
		"hash":    hash,
		"amounts": []any{uint64(1), uint64(2), uint64(3)},
		"memo":    "hello",
		"unset":   nil,
		"state":   Enum{Variant: "Locked", Fields: Fields{"until": int64(1700000000), "authority": key}},
		"history": []any{NewEnum("Unlocked"), Enum{Variant: "Locked", Fields: Fields{"until": int64(-1), "authority": nil}}},
		"nested":  Fields{"levels": uint8(63)},
	}

	encoded, err := Encode(value, layout)
	require.NoError(t, err)

	size, err := Size(value, layout)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), size)

	again, err := Encode(value, layout)
	require.NoError(t, err)
	assert.Equal(t, encoded, again)

	decoded, n, err := Decode(encoded, layout)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), n)
	assert.Equal(t, value, decoded)
}

func TestType_String(t *testing.T) {
	layout := Struct(
		NewField("proof", VariableArray(Hash)),
		NewField("unlock_at", Option(I64)),
		NewField("state", SimpleEnum("Unlocked", "Locked")),
	)
	assert.Equal(t, "{proof: Vec<[u8; 32]>, unlock_at: Option<i64>, state: enum {Unlocked, Locked}}", layout.String())
}

func TestType_InvalidDeclarations(t *testing.T) {
	assert.Panics(t, func() { Struct(NewField("a", U8), NewField("a", U16)) })
	assert.Panics(t, func() { Struct(NewField("", U8)) })
	assert.Panics(t, func() { Struct(NewField("a", nil)) })
	assert.Panics(t, func() { Option(Option(U8)) })
	assert.Panics(t, func() { VariableArray(Struct()) })
	assert.Panics(t, func() { VariableArray(FixedArray(U64, 0)) })
	assert.NotPanics(t, func() { Option(VariableArray(Option(U8))) })
	assert.Panics(t, func() { SimpleEnum("A", "A") })
	assert.Panics(t, func() { TaggedUnion() })

	names := make([]string, MaxVariants+1)
	for i := range names {
		names[i] = string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	assert.Panics(t, func() { SimpleEnum(names...) })
	assert.NotPanics(t, func() { SimpleEnum(names[:MaxVariants]...) })
}

func TestPrimitive(t *testing.T) {
	u64, err := Primitive(KindU64)
	require.NoError(t, err)
	assert.Equal(t, U64, u64)

	_, err = Primitive(KindStruct)
	assert.EqualError(t, err, "struct is not a primitive kind")
}

func TestType_MinSize(t *testing.T) {
	assert.Equal(t, 8, U64.MinSize())
	assert.Equal(t, 32, Hash.MinSize())
	assert.Equal(t, 4, VariableArray(Hash).MinSize())
	assert.Equal(t, 1, Option(U128).MinSize())
	assert.Equal(t, 1, TaggedUnion(Variant{Name: "A"}, Variant{Name: "B", Fields: []Field{NewField("x", U64)}}).MinSize())
	assert.Equal(t, math.MaxInt, FixedArray(FixedArray(U64, 1<<40), 1<<40).MinSize())
	assert.Equal(t, math.MaxInt, Struct(NewField("a", FixedArray(U64, 1<<60)), NewField("b", FixedArray(U64, 1<<60))).MinSize())
}
