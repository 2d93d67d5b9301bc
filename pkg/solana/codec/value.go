package codec

import (
	"crypto/ed25519"
	"math/big"
	"reflect"

	"github.com/pkg/errors"
)

// Fields is the value of a struct Type, keyed by field name. Entries that
// the Type does not declare are ignored when encoding.
type Fields map[string]any

// Enum is the value of a tagged union Type: the active variant's name and
// its payload.
type Enum struct {
	Variant string
	Fields  Fields
}

// NewEnum returns the value of a payload-less variant.
func NewEnum(variant string) Enum {
	return Enum{Variant: variant}
}

var bigIntType = reflect.TypeOf(big.Int{})

var (
	twoTo128 = new(big.Int).Lsh(big.NewInt(1), 128)

	integerBounds = map[Kind][2]*big.Int{}
)

func init() {
	for _, kind := range []Kind{KindU8, KindU16, KindU32, KindU64, KindU128} {
		bits := uint(kind.Width() * 8)
		upper := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits), big.NewInt(1))
		integerBounds[kind] = [2]*big.Int{big.NewInt(0), upper}
	}
	for _, kind := range []Kind{KindI8, KindI16, KindI32, KindI64, KindI128} {
		bits := uint(kind.Width()*8 - 1)
		limit := new(big.Int).Lsh(big.NewInt(1), bits)
		lower := new(big.Int).Neg(limit)
		upper := new(big.Int).Sub(limit, big.NewInt(1))
		integerBounds[kind] = [2]*big.Int{lower, upper}
	}
}

// toBigInt converts any Go integer, or a *big.Int, into a *big.Int. The
// returned value must not be mutated when v was a *big.Int.
func toBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, errors.Wrap(ErrTypeMismatch, "nil *big.Int")
		}
		return n, nil
	case big.Int:
		return &n, nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case int64:
		return big.NewInt(n), nil
	case int:
		return big.NewInt(int64(n)), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return new(big.Int).SetUint64(rv.Uint()), nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "%T is not an integer", v)
}

func checkRange(n *big.Int, kind Kind) error {
	bounds := integerBounds[kind]
	if n.Cmp(bounds[0]) < 0 || n.Cmp(bounds[1]) > 0 {
		return errors.Wrapf(ErrNumericOverflow, "%s does not fit in %s", n, kind)
	}
	return nil
}

// toAddress accepts the address representations used across the Solana
// packages.
func toAddress(v any) ([]byte, error) {
	var b []byte
	switch a := v.(type) {
	case ed25519.PublicKey:
		b = a
	case []byte:
		b = a
	case [AddressSize]byte:
		b = a[:]
	case *[AddressSize]byte:
		if a == nil {
			return nil, errors.Wrap(ErrTypeMismatch, "nil address")
		}
		b = a[:]
	default:
		return nil, errors.Wrapf(ErrTypeMismatch, "%T is not an address", v)
	}

	if len(b) != AddressSize {
		return nil, errors.Wrapf(ErrArityMismatch, "address is %d bytes, want %d", len(b), AddressSize)
	}
	return b, nil
}

// sequence is a read-only view over any slice or array value.
type sequence struct {
	items []any
	rv    reflect.Value
}

func toSequence(v any) (sequence, error) {
	if items, ok := v.([]any); ok {
		return sequence{items: items}, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return sequence{rv: rv}, nil
	}
	return sequence{}, errors.Wrapf(ErrTypeMismatch, "%T is not a sequence", v)
}

func (s sequence) Len() int {
	if s.items != nil || !s.rv.IsValid() {
		return len(s.items)
	}
	return s.rv.Len()
}

func (s sequence) Index(i int) any {
	if s.items != nil || !s.rv.IsValid() {
		return s.items[i]
	}
	return s.rv.Index(i).Interface()
}

// toFields accepts Fields or a plain map keyed by field name.
func toFields(v any) (Fields, error) {
	switch f := v.(type) {
	case Fields:
		return f, nil
	case map[string]any:
		return Fields(f), nil
	case *Fields:
		if f == nil {
			return nil, errors.Wrap(ErrTypeMismatch, "nil fields")
		}
		return *f, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "%T is not a struct value", v)
}

func toEnum(v any) (Enum, error) {
	switch e := v.(type) {
	case Enum:
		return e, nil
	case *Enum:
		if e == nil {
			return Enum{}, errors.Wrap(ErrTypeMismatch, "nil enum")
		}
		return *e, nil
	case string:
		return Enum{Variant: e}, nil
	}
	return Enum{}, errors.Wrapf(ErrTypeMismatch, "%T is not an enum value", v)
}

// optionValue unwraps an optional value, treating nil and nil pointers as
// absent. *big.Int is a value in its own right and is never dereferenced.
func optionValue(v any) (any, bool) {
	if v == nil {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr {
		return v, true
	}
	if rv.IsNil() {
		return nil, false
	}
	if rv.Type().Elem() == bigIntType {
		return v, true
	}
	return rv.Elem().Interface(), true
}
