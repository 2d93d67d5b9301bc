package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Encode serializes v according to t. All integers are little endian. On
// failure no bytes are returned.
func Encode(v any, t *Type) ([]byte, error) {
	size, err := Size(v, t)
	if err != nil {
		return nil, err
	}

	e := &encoder{buf: make([]byte, 0, size)}
	if err := e.encode(v, t); err != nil {
		return nil, err
	}
	return e.buf, nil
}

// MustEncode is Encode for static values known to be valid. It panics on
// failure.
func MustEncode(v any, t *Type) []byte {
	b, err := Encode(v, t)
	if err != nil {
		panic(err)
	}
	return b
}

// Size returns the number of bytes Encode would produce for v, validating v
// along the way.
func Size(v any, t *Type) (int, error) {
	e := &encoder{sizeOnly: true}
	if err := e.encode(v, t); err != nil {
		return 0, err
	}
	return e.size, nil
}

type encoder struct {
	buf      []byte
	size     int
	sizeOnly bool
}

func (e *encoder) write(b ...byte) {
	e.size += len(b)
	if !e.sizeOnly {
		e.buf = append(e.buf, b...)
	}
}

func (e *encoder) putUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.write(b[:]...)
}

func (e *encoder) putLength(n int) error {
	if uint64(n) > math.MaxUint32 {
		return errors.Wrapf(ErrSizeOverflow, "length %d exceeds u32", n)
	}
	e.putUint32(uint32(n))
	return nil
}

func (e *encoder) encode(v any, t *Type) error {
	switch {
	case t.kind.IsInteger():
		return e.putInteger(v, t.kind)
	}

	switch t.kind {
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return errors.Wrapf(ErrTypeMismatch, "%T is not a bool", v)
		}
		if b {
			e.write(1)
		} else {
			e.write(0)
		}
		return nil

	case KindAddress:
		addr, err := toAddress(v)
		if err != nil {
			return err
		}
		e.write(addr...)
		return nil

	case KindString:
		s, ok := v.(string)
		if !ok {
			return errors.Wrapf(ErrTypeMismatch, "%T is not a string", v)
		}
		if !utf8.ValidString(s) {
			return ErrInvalidString
		}
		if err := e.putLength(len(s)); err != nil {
			return err
		}
		e.write([]byte(s)...)
		return nil

	case KindFixedArray:
		seq, err := toSequence(v)
		if err != nil {
			return err
		}
		if seq.Len() != t.length {
			return errors.Wrapf(ErrArityMismatch, "got %d elements, want %d", seq.Len(), t.length)
		}
		return e.putElements(seq, t.elem)

	case KindVariableArray:
		seq, err := toSequence(v)
		if err != nil {
			return err
		}
		if err := e.putLength(seq.Len()); err != nil {
			return err
		}
		return e.putElements(seq, t.elem)

	case KindOption:
		inner, present := optionValue(v)
		if !present {
			e.write(0)
			return nil
		}
		e.write(1)
		return e.encode(inner, t.elem)

	case KindStruct:
		fields, err := toFields(v)
		if err != nil {
			return err
		}
		return e.putFields(fields, t.fields)

	case KindTaggedUnion:
		value, err := toEnum(v)
		if err != nil {
			return err
		}
		tag, ok := t.VariantIndex(value.Variant)
		if !ok {
			return errors.Wrapf(ErrUnknownVariant, "%q", value.Variant)
		}
		e.write(byte(tag))
		return wrapPath(e.putFields(value.Fields, t.variants[tag].Fields), value.Variant)
	}

	return errors.Errorf("unsupported kind %d", t.kind)
}

func (e *encoder) putElements(seq sequence, elem *Type) error {
	for i := 0; i < seq.Len(); i++ {
		if err := e.encode(seq.Index(i), elem); err != nil {
			return wrapPath(err, fmt.Sprintf("[%d]", i))
		}
	}
	return nil
}

func (e *encoder) putFields(values Fields, fields []Field) error {
	for _, f := range fields {
		v, ok := values[f.Name]
		// Absent options must be passed explicitly as nil.
		if !ok {
			return errors.Wrapf(ErrMissingField, "%q", f.Name)
		}
		if err := e.encode(v, f.Type); err != nil {
			return wrapPath(err, f.Name)
		}
	}
	return nil
}

func (e *encoder) putInteger(v any, kind Kind) error {
	n, err := toBigInt(v)
	if err != nil {
		return err
	}
	if err := checkRange(n, kind); err != nil {
		return err
	}

	width := kind.Width()
	if width <= 8 {
		var raw uint64
		if n.Sign() < 0 {
			raw = uint64(n.Int64())
		} else {
			raw = n.Uint64()
		}

		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], raw)
		e.write(b[:width]...)
		return nil
	}

	m := n
	if n.Sign() < 0 {
		m = new(big.Int).Add(n, twoTo128)
	}
	b := m.FillBytes(make([]byte, width))
	reverse(b)
	e.write(b...)
	return nil
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
