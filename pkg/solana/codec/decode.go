package codec

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Decode reads one value of Type t from the start of data. It returns the
// value together with the number of bytes consumed; bytes after that are
// left to the caller to judge. On failure the value is nil and nothing is
// consumed.
func Decode(data []byte, t *Type) (any, int, error) {
	d := &decoder{data: data}
	v, err := d.decode(t)
	if err != nil {
		return nil, 0, err
	}
	return v, d.offset, nil
}

// DecodeExact is Decode for callers that expect data to hold exactly one
// value. Trailing bytes fail with ErrArityMismatch.
func DecodeExact(data []byte, t *Type) (any, error) {
	v, n, err := Decode(data, t)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, errors.Wrapf(ErrArityMismatch, "%d trailing bytes", len(data)-n)
	}
	return v, nil
}

type decoder struct {
	data   []byte
	offset int
}

func (d *decoder) remaining() int {
	return len(d.data) - d.offset
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || d.remaining() < n {
		return nil, errors.Wrapf(ErrTruncatedBuffer, "need %d bytes at offset %d, have %d", n, d.offset, d.remaining())
	}
	b := d.data[d.offset : d.offset+n]
	d.offset += n
	return b, nil
}

func (d *decoder) getUint8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) getLength(elem *Type) (int, error) {
	b, err := d.take(LengthPrefixSize)
	if err != nil {
		return 0, err
	}
	n := int(binary.LittleEndian.Uint32(b))
	if err := d.checkCount(n, elem); err != nil {
		return 0, err
	}
	return n, nil
}

// checkCount refuses, before anything is allocated, element counts the rest
// of the buffer cannot hold.
func (d *decoder) checkCount(n int, elem *Type) error {
	least := elem.MinSize()
	if n == 0 || least == 0 {
		return nil
	}
	if n > d.remaining()/least {
		return errors.Wrapf(ErrTruncatedBuffer, "%d elements of %s need at least %d bytes each, have %d", n, elem, least, d.remaining())
	}
	return nil
}

func (d *decoder) decode(t *Type) (any, error) {
	if t.kind.IsInteger() {
		return d.getInteger(t.kind)
	}

	switch t.kind {
	case KindBool:
		b, err := d.getUint8()
		if err != nil {
			return nil, err
		}
		switch b {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return nil, errors.Wrapf(ErrInvalidTag, "bool byte %d", b)

	case KindAddress:
		b, err := d.take(AddressSize)
		if err != nil {
			return nil, err
		}
		addr := make(ed25519.PublicKey, AddressSize)
		copy(addr, b)
		return addr, nil

	case KindString:
		n, err := d.getLength(U8)
		if err != nil {
			return nil, err
		}
		b, err := d.take(n)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, ErrInvalidString
		}
		return string(b), nil

	case KindFixedArray:
		if err := d.checkCount(t.length, t.elem); err != nil {
			return nil, err
		}
		return d.getElements(t.length, t.elem)

	case KindVariableArray:
		n, err := d.getLength(t.elem)
		if err != nil {
			return nil, err
		}
		return d.getElements(n, t.elem)

	case KindOption:
		flag, err := d.getUint8()
		if err != nil {
			return nil, err
		}
		switch flag {
		case 0:
			return nil, nil
		case 1:
			return d.decode(t.elem)
		}
		return nil, errors.Wrapf(ErrInvalidTag, "option flag %d", flag)

	case KindStruct:
		return d.getFields(t.fields)

	case KindTaggedUnion:
		tag, err := d.getUint8()
		if err != nil {
			return nil, err
		}
		if int(tag) >= len(t.variants) {
			return nil, errors.Wrapf(ErrInvalidTag, "variant %d of %d", tag, len(t.variants))
		}

		variant := t.variants[tag]
		value := Enum{Variant: variant.Name}
		if len(variant.Fields) > 0 {
			fields, err := d.getFields(variant.Fields)
			if err != nil {
				return nil, wrapPath(err, variant.Name)
			}
			value.Fields = fields
		}
		return value, nil
	}

	return nil, errors.Errorf("unsupported kind %d", t.kind)
}

func (d *decoder) getElements(n int, elem *Type) ([]any, error) {
	items := make([]any, n)
	for i := range items {
		v, err := d.decode(elem)
		if err != nil {
			return nil, wrapPath(err, fmt.Sprintf("[%d]", i))
		}
		items[i] = v
	}
	return items, nil
}

func (d *decoder) getFields(fields []Field) (Fields, error) {
	values := make(Fields, len(fields))
	for _, f := range fields {
		v, err := d.decode(f.Type)
		if err != nil {
			return nil, wrapPath(err, f.Name)
		}
		values[f.Name] = v
	}
	return values, nil
}

func (d *decoder) getInteger(kind Kind) (any, error) {
	b, err := d.take(kind.Width())
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindU8:
		return b[0], nil
	case KindU16:
		return binary.LittleEndian.Uint16(b), nil
	case KindU32:
		return binary.LittleEndian.Uint32(b), nil
	case KindU64:
		return binary.LittleEndian.Uint64(b), nil
	case KindI8:
		return int8(b[0]), nil
	case KindI16:
		return int16(binary.LittleEndian.Uint16(b)), nil
	case KindI32:
		return int32(binary.LittleEndian.Uint32(b)), nil
	case KindI64:
		return int64(binary.LittleEndian.Uint64(b)), nil
	}

	be := make([]byte, len(b))
	copy(be, b)
	reverse(be)

	n := new(big.Int).SetBytes(be)
	if kind == KindI128 && be[0]&0x80 != 0 {
		n.Sub(n, twoTo128)
	}
	return n, nil
}
