package codec

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the shape of a Type.
type Kind uint8

const (
	KindU8 Kind = iota
	KindU16
	KindU32
	KindU64
	KindU128
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindBool
	KindAddress
	KindString
	KindFixedArray
	KindVariableArray
	KindOption
	KindStruct
	KindTaggedUnion
)

const (
	// AddressSize is the size, in bytes, of an encoded address.
	AddressSize = 32

	// LengthPrefixSize is the size of the count prefix written before
	// variable arrays and strings.
	LengthPrefixSize = 4

	// MaxVariants is the number of variants a tagged union can declare with
	// a 1 byte tag.
	MaxVariants = math.MaxUint8 + 1
)

func (k Kind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindU128:
		return "u128"
	case KindI8:
		return "i8"
	case KindI16:
		return "i16"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindI128:
		return "i128"
	case KindBool:
		return "bool"
	case KindAddress:
		return "address"
	case KindString:
		return "string"
	case KindFixedArray:
		return "array"
	case KindVariableArray:
		return "vec"
	case KindOption:
		return "option"
	case KindStruct:
		return "struct"
	case KindTaggedUnion:
		return "enum"
	}
	return "unknown"
}

// IsInteger reports whether k is one of the fixed width integer kinds.
func (k Kind) IsInteger() bool {
	return k <= KindI128
}

// IsSigned reports whether k is a signed integer kind.
func (k Kind) IsSigned() bool {
	return k >= KindI8 && k <= KindI128
}

// Width returns the encoded size of an integer kind in bytes, or 0 for
// every other kind.
func (k Kind) Width() int {
	switch k {
	case KindU8, KindI8:
		return 1
	case KindU16, KindI16:
		return 2
	case KindU32, KindI32:
		return 4
	case KindU64, KindI64:
		return 8
	case KindU128, KindI128:
		return 16
	}
	return 0
}

// Type describes how a value is laid out on the wire. Types are immutable
// once constructed and are meant to be declared once, in static tables, and
// shared by every encode and decode call.
type Type struct {
	kind     Kind
	elem     *Type
	length   int
	fields   []Field
	variants []Variant
}

// Field is a named member of a struct Type. Declaration order is the
// encoding order.
type Field struct {
	Name string
	Type *Type
}

// Variant is a named member of a tagged union. Its tag is its position in
// the union's declaration.
type Variant struct {
	Name   string
	Fields []Field
}

var (
	U8   = &Type{kind: KindU8}
	U16  = &Type{kind: KindU16}
	U32  = &Type{kind: KindU32}
	U64  = &Type{kind: KindU64}
	U128 = &Type{kind: KindU128}
	I8   = &Type{kind: KindI8}
	I16  = &Type{kind: KindI16}
	I32  = &Type{kind: KindI32}
	I64  = &Type{kind: KindI64}
	I128 = &Type{kind: KindI128}

	Bool    = &Type{kind: KindBool}
	Address = &Type{kind: KindAddress}
	String  = &Type{kind: KindString}

	// Hash is the 32 byte digest used throughout the Code programs.
	Hash = FixedArray(U8, 32)
)

// Primitive returns the shared Type for a primitive kind.
func Primitive(kind Kind) (*Type, error) {
	switch kind {
	case KindU8:
		return U8, nil
	case KindU16:
		return U16, nil
	case KindU32:
		return U32, nil
	case KindU64:
		return U64, nil
	case KindU128:
		return U128, nil
	case KindI8:
		return I8, nil
	case KindI16:
		return I16, nil
	case KindI32:
		return I32, nil
	case KindI64:
		return I64, nil
	case KindI128:
		return I128, nil
	case KindBool:
		return Bool, nil
	case KindAddress:
		return Address, nil
	case KindString:
		return String, nil
	}
	return nil, errors.Errorf("%s is not a primitive kind", kind)
}

// FixedArray declares exactly length elements written inline, without a
// count prefix.
func FixedArray(elem *Type, length int) *Type {
	if elem == nil {
		panic("codec: nil array element type")
	}
	if length < 0 {
		panic("codec: negative array length")
	}
	return &Type{kind: KindFixedArray, elem: elem, length: length}
}

// VariableArray declares a 4 byte little endian element count followed by
// the elements. Elements must encode to at least one byte, otherwise a count
// read off the wire is unbounded by the buffer.
func VariableArray(elem *Type) *Type {
	if elem == nil {
		panic("codec: nil vec element type")
	}
	if elem.MinSize() == 0 {
		panic(fmt.Sprintf("codec: vec of zero sized %s", elem))
	}
	return &Type{kind: KindVariableArray, elem: elem}
}

// Option declares a 1 byte presence flag followed by inner when present.
// Options do not nest: a nil value could not tell Some(None) from None.
func Option(inner *Type) *Type {
	if inner == nil {
		panic("codec: nil option type")
	}
	if inner.kind == KindOption {
		panic(fmt.Sprintf("codec: nested option %s", inner))
	}
	return &Type{kind: KindOption, elem: inner}
}

// Struct declares an ordered set of uniquely named fields.
func Struct(fields ...Field) *Type {
	if err := checkFields(fields); err != nil {
		panic("codec: " + err.Error())
	}
	return &Type{kind: KindStruct, fields: append([]Field(nil), fields...)}
}

// TaggedUnion declares a set of variants, each tagged by its position.
func TaggedUnion(variants ...Variant) *Type {
	if len(variants) == 0 {
		panic("codec: tagged union without variants")
	}
	if len(variants) > MaxVariants {
		panic("codec: too many variants for a 1 byte tag")
	}

	seen := make(map[string]struct{}, len(variants))
	copied := make([]Variant, len(variants))
	for i, v := range variants {
		if len(v.Name) == 0 {
			panic(fmt.Sprintf("codec: variant %d has no name", i))
		}
		if _, ok := seen[v.Name]; ok {
			panic(fmt.Sprintf("codec: duplicate variant %q", v.Name))
		}
		seen[v.Name] = struct{}{}

		if err := checkFields(v.Fields); err != nil {
			panic(fmt.Sprintf("codec: variant %q: %s", v.Name, err))
		}
		copied[i] = Variant{Name: v.Name, Fields: append([]Field(nil), v.Fields...)}
	}
	return &Type{kind: KindTaggedUnion, variants: copied}
}

// SimpleEnum declares a tagged union whose variants carry no payload, the
// shape of a Rust fieldless enum.
func SimpleEnum(names ...string) *Type {
	variants := make([]Variant, len(names))
	for i, name := range names {
		variants[i] = Variant{Name: name}
	}
	return TaggedUnion(variants...)
}

// NewField is shorthand for a Field literal.
func NewField(name string, t *Type) Field {
	return Field{Name: name, Type: t}
}

func checkFields(fields []Field) error {
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		if len(f.Name) == 0 {
			return errors.Errorf("field %d has no name", i)
		}
		if f.Type == nil {
			return errors.Errorf("field %q has no type", f.Name)
		}
		if _, ok := seen[f.Name]; ok {
			return errors.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

func (t *Type) Kind() Kind {
	return t.kind
}

// Elem returns the element type of an array or the inner type of an option.
func (t *Type) Elem() *Type {
	return t.elem
}

// Len returns the declared length of a fixed array.
func (t *Type) Len() int {
	return t.length
}

// Fields returns a copy of a struct's fields.
func (t *Type) Fields() []Field {
	return append([]Field(nil), t.fields...)
}

// Variants returns a copy of a tagged union's variants.
func (t *Type) Variants() []Variant {
	return append([]Variant(nil), t.variants...)
}

// VariantIndex returns the tag of the named variant.
func (t *Type) VariantIndex(name string) (int, bool) {
	for i, v := range t.variants {
		if v.Name == name {
			return i, true
		}
	}
	return 0, false
}

// MinSize is the smallest number of bytes any value of t encodes to. It
// saturates at math.MaxInt.
func (t *Type) MinSize() int {
	switch t.kind {
	case KindBool:
		return 1
	case KindAddress:
		return AddressSize
	case KindString, KindVariableArray:
		return LengthPrefixSize
	case KindOption:
		return 1
	case KindFixedArray:
		return mulSize(t.length, t.elem.MinSize())
	case KindStruct:
		return fieldsMinSize(t.fields)
	case KindTaggedUnion:
		smallest := -1
		for _, v := range t.variants {
			if size := fieldsMinSize(v.Fields); smallest < 0 || size < smallest {
				smallest = size
			}
		}
		return addSize(1, smallest)
	}
	return t.kind.Width()
}

func fieldsMinSize(fields []Field) int {
	var size int
	for _, f := range fields {
		size = addSize(size, f.Type.MinSize())
	}
	return size
}

func addSize(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

func mulSize(a, b int) int {
	if a != 0 && b > math.MaxInt/a {
		return math.MaxInt
	}
	return a * b
}

func (t *Type) String() string {
	switch t.kind {
	case KindFixedArray:
		return fmt.Sprintf("[%s; %d]", t.elem, t.length)
	case KindVariableArray:
		return fmt.Sprintf("Vec<%s>", t.elem)
	case KindOption:
		return fmt.Sprintf("Option<%s>", t.elem)
	case KindStruct:
		return "{" + fieldsString(t.fields) + "}"
	case KindTaggedUnion:
		parts := make([]string, len(t.variants))
		for i, v := range t.variants {
			parts[i] = v.Name
			if len(v.Fields) > 0 {
				parts[i] += " {" + fieldsString(v.Fields) + "}"
			}
		}
		return "enum {" + strings.Join(parts, ", ") + "}"
	}
	return t.kind.String()
}

func fieldsString(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return strings.Join(parts, ", ")
}
