// Package idl loads Anchor IDL documents into program tables. Both the
// legacy (pre 0.30) and the current IDL formats are understood, as JSON or
// YAML.
package idl

import (
	"crypto/ed25519"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/codec"
	"github.com/code-payments/code-instruction-codec/pkg/solana/program"
)

var (
	ErrInvalidIDL      = errors.New("invalid idl")
	ErrUnsupportedType = errors.New("unsupported idl type")
)

type Document struct {
	Address  string `yaml:"address"`
	Name     string `yaml:"name"`
	Metadata struct {
		Name    string `yaml:"name"`
		Address string `yaml:"address"`
	} `yaml:"metadata"`

	Instructions []Instruction `yaml:"instructions"`
	Accounts     []Account     `yaml:"accounts"`
	Types        []TypeDef     `yaml:"types"`
}

type Instruction struct {
	Name          string        `yaml:"name"`
	Discriminator []int         `yaml:"discriminator"`
	Accounts      []AccountItem `yaml:"accounts"`
	Args          []Field       `yaml:"args"`
}

// AccountItem is one instruction account, or a named group of them.
type AccountItem struct {
	Name     string `yaml:"name"`
	Writable bool   `yaml:"writable"`
	Signer   bool   `yaml:"signer"`
	IsMut    bool   `yaml:"isMut"`
	IsSigner bool   `yaml:"isSigner"`
	Address  string `yaml:"address"`

	Optional   bool `yaml:"optional"`
	IsOptional bool `yaml:"isOptional"`

	Accounts []AccountItem `yaml:"accounts"`
}

type Account struct {
	Name          string   `yaml:"name"`
	Discriminator []int    `yaml:"discriminator"`
	Type          *TypeDef `yaml:"type"`
}

type Field struct {
	Name string  `yaml:"name"`
	Type TypeRef `yaml:"type"`
}

type TypeDef struct {
	Name string `yaml:"name"`

	// Set on named entries of the types list.
	Type *TypeDef `yaml:"type"`

	Kind     string    `yaml:"kind"`
	Fields   []Field   `yaml:"fields"`
	Variants []Variant `yaml:"variants"`
}

type Variant struct {
	Name   string       `yaml:"name"`
	Fields VariantField `yaml:"fields"`
}

// VariantField holds either named fields or a tuple of types.
type VariantField struct {
	Named []Field
	Tuple []TypeRef
}

func (v *VariantField) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return errors.Wrapf(ErrInvalidIDL, "variant fields at line %d", node.Line)
	}
	for _, item := range node.Content {
		if item.Kind == yaml.MappingNode && hasKey(item, "name") {
			var f Field
			if err := item.Decode(&f); err != nil {
				return err
			}
			v.Named = append(v.Named, f)
			continue
		}

		var ref TypeRef
		if err := item.Decode(&ref); err != nil {
			return err
		}
		v.Tuple = append(v.Tuple, ref)
	}
	return nil
}

// TypeRef is an IDL type expression: a primitive name, or one of vec,
// option, array and defined.
type TypeRef struct {
	Primitive string
	Vec       *TypeRef
	Option    *TypeRef
	Array     *TypeRef
	Length    int
	Defined   string
}

func (t *TypeRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		t.Primitive = node.Value
		return nil
	case yaml.MappingNode:
	default:
		return errors.Wrapf(ErrInvalidIDL, "type at line %d", node.Line)
	}

	if len(node.Content) != 2 {
		return errors.Wrapf(ErrInvalidIDL, "type at line %d must have a single key", node.Line)
	}
	key, value := node.Content[0].Value, node.Content[1]

	switch key {
	case "vec":
		t.Vec = &TypeRef{}
		return value.Decode(t.Vec)
	case "option", "coption":
		t.Option = &TypeRef{}
		return value.Decode(t.Option)
	case "array":
		if value.Kind != yaml.SequenceNode || len(value.Content) != 2 {
			return errors.Wrapf(ErrInvalidIDL, "array at line %d", value.Line)
		}
		t.Array = &TypeRef{}
		if err := value.Content[0].Decode(t.Array); err != nil {
			return err
		}
		return value.Content[1].Decode(&t.Length)
	case "defined":
		if value.Kind == yaml.ScalarNode {
			t.Defined = value.Value
			return nil
		}
		var named struct {
			Name string `yaml:"name"`
		}
		if err := value.Decode(&named); err != nil {
			return err
		}
		t.Defined = named.Name
		return nil
	}
	return errors.Wrapf(ErrUnsupportedType, "%q at line %d", key, node.Line)
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

// Parse decodes an IDL document. JSON documents are valid YAML.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(ErrInvalidIDL, err.Error())
	}
	return &doc, nil
}

// Load reads and compiles the IDL at path.
func Load(path string) (*program.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}

	p, err := doc.Program()
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return p, nil
}

// ProgramName returns the document's program name, from metadata when
// present.
func (d *Document) ProgramName() string {
	if len(d.Metadata.Name) > 0 {
		return d.Metadata.Name
	}
	return d.Name
}

// Program compiles the document into a program table.
func (d *Document) Program() (*program.Program, error) {
	address := d.Address
	if len(address) == 0 {
		address = d.Metadata.Address
	}
	if len(address) == 0 {
		return nil, errors.Wrap(ErrInvalidIDL, "missing program address")
	}

	programID, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidIDL, err.Error())
	}

	r := newResolver(programID, d.Types)

	instructions := make([]program.InstructionDef, 0, len(d.Instructions))
	for _, ix := range d.Instructions {
		def, err := r.instruction(ix)
		if err != nil {
			return nil, errors.WithMessagef(err, "instruction %q", ix.Name)
		}
		instructions = append(instructions, def)
	}

	accounts := make([]program.AccountDef, 0, len(d.Accounts))
	for _, account := range d.Accounts {
		def, err := r.account(account)
		if err != nil {
			return nil, errors.WithMessagef(err, "account %q", account.Name)
		}
		accounts = append(accounts, def)
	}

	return program.NewProgram(d.ProgramName(), programID, instructions, accounts)
}

type resolver struct {
	programID ed25519.PublicKey

	defs     map[string]*TypeDef
	resolved map[string]*codec.Type
	visiting map[string]bool
}

func newResolver(programID ed25519.PublicKey, types []TypeDef) *resolver {
	r := &resolver{
		programID: programID,

		defs:     make(map[string]*TypeDef, len(types)),
		resolved: make(map[string]*codec.Type, len(types)),
		visiting: make(map[string]bool),
	}
	for i := range types {
		r.defs[types[i].Name] = &types[i]
	}
	return r
}

func (r *resolver) instruction(ix Instruction) (program.InstructionDef, error) {
	opcode, err := discriminator(ix.Discriminator, program.NamespaceInstruction, toSnakeCase(ix.Name))
	if err != nil {
		return program.InstructionDef{}, err
	}

	args, err := r.fields(ix.Args)
	if err != nil {
		return program.InstructionDef{}, err
	}

	var slots []program.AccountSlot
	if err := r.flattenAccounts(ix.Accounts, "", &slots); err != nil {
		return program.InstructionDef{}, err
	}

	return program.InstructionDef{
		Name:     ix.Name,
		Opcode:   opcode,
		Args:     codec.Struct(args...),
		Accounts: slots,
	}, nil
}

// flattenAccounts appends the slots of items in order, naming nested group
// members "group.member". Optional accounts default to the program address,
// which Anchor reads as "not supplied".
func (r *resolver) flattenAccounts(items []AccountItem, prefix string, slots *[]program.AccountSlot) error {
	for _, item := range items {
		name := prefix + item.Name
		if len(item.Accounts) > 0 {
			if err := r.flattenAccounts(item.Accounts, name+".", slots); err != nil {
				return err
			}
			continue
		}

		slot := program.AccountSlot{
			Name:       name,
			IsSigner:   item.Signer || item.IsSigner,
			IsWritable: item.Writable || item.IsMut,
		}
		if len(item.Address) > 0 {
			address, err := solana.PublicKeyFromBase58(item.Address)
			if err != nil {
				return errors.Wrapf(ErrInvalidIDL, "account %q address: %s", name, err)
			}
			slot.Default = address
		} else if item.Optional || item.IsOptional {
			slot.Default = r.programID
			slot.Optional = true
		}
		*slots = append(*slots, slot)
	}
	return nil
}

func (r *resolver) account(account Account) (program.AccountDef, error) {
	d, err := discriminator(account.Discriminator, program.NamespaceAccount, account.Name)
	if err != nil {
		return program.AccountDef{}, err
	}

	var layout *codec.Type
	if account.Type != nil {
		layout, err = r.typeDef(account.Name, account.Type)
	} else {
		layout, err = r.defined(account.Name)
	}
	if err != nil {
		return program.AccountDef{}, err
	}

	return program.AccountDef{Name: account.Name, Discriminator: d, Layout: layout}, nil
}

func discriminator(explicit []int, namespace, name string) (program.Discriminator, error) {
	var d program.Discriminator
	if len(explicit) == 0 {
		return program.AnchorDiscriminator(namespace, name), nil
	}
	if len(explicit) != len(d) {
		return d, errors.Wrapf(ErrInvalidIDL, "discriminator is %d bytes", len(explicit))
	}

	for i, b := range explicit {
		if b < 0 || b > 255 {
			return d, errors.Wrapf(ErrInvalidIDL, "discriminator byte %d is %d", i, b)
		}
		d[i] = byte(b)
	}
	return d, nil
}

func (r *resolver) fields(fields []Field) ([]codec.Field, error) {
	if err := checkNames(len(fields), func(i int) string { return fields[i].Name }); err != nil {
		return nil, err
	}

	out := make([]codec.Field, 0, len(fields))
	for _, f := range fields {
		t, err := r.ref(f.Type)
		if err != nil {
			return nil, errors.WithMessagef(err, "field %q", f.Name)
		}
		out = append(out, codec.NewField(f.Name, t))
	}
	return out, nil
}

func (r *resolver) ref(ref TypeRef) (*codec.Type, error) {
	switch {
	case ref.Vec != nil:
		elem, err := r.ref(*ref.Vec)
		if err != nil {
			return nil, err
		}
		if elem.MinSize() == 0 {
			return nil, errors.Wrapf(ErrUnsupportedType, "vec of zero sized %s", elem)
		}
		return codec.VariableArray(elem), nil
	case ref.Option != nil:
		inner, err := r.ref(*ref.Option)
		if err != nil {
			return nil, err
		}
		if inner.Kind() == codec.KindOption {
			return nil, errors.Wrapf(ErrUnsupportedType, "nested option %s", inner)
		}
		return codec.Option(inner), nil
	case ref.Array != nil:
		elem, err := r.ref(*ref.Array)
		if err != nil {
			return nil, err
		}
		if ref.Length < 0 {
			return nil, errors.Wrapf(ErrInvalidIDL, "array length %d", ref.Length)
		}
		return codec.FixedArray(elem, ref.Length), nil
	case len(ref.Defined) > 0:
		return r.defined(ref.Defined)
	}
	return primitive(ref.Primitive)
}

func primitive(name string) (*codec.Type, error) {
	switch name {
	case "u8":
		return codec.U8, nil
	case "u16":
		return codec.U16, nil
	case "u32":
		return codec.U32, nil
	case "u64":
		return codec.U64, nil
	case "u128":
		return codec.U128, nil
	case "i8":
		return codec.I8, nil
	case "i16":
		return codec.I16, nil
	case "i32":
		return codec.I32, nil
	case "i64":
		return codec.I64, nil
	case "i128":
		return codec.I128, nil
	case "bool":
		return codec.Bool, nil
	case "string":
		return codec.String, nil
	case "pubkey", "publicKey":
		return codec.Address, nil
	case "bytes":
		return codec.VariableArray(codec.U8), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedType, "%q", name)
}

func (r *resolver) defined(name string) (*codec.Type, error) {
	if t, ok := r.resolved[name]; ok {
		return t, nil
	}
	if r.visiting[name] {
		return nil, errors.Wrapf(ErrUnsupportedType, "recursive type %q", name)
	}

	def, ok := r.defs[name]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidIDL, "undefined type %q", name)
	}

	r.visiting[name] = true
	defer delete(r.visiting, name)

	body := def
	if def.Type != nil {
		body = def.Type
	}

	t, err := r.typeDef(name, body)
	if err != nil {
		return nil, err
	}
	r.resolved[name] = t
	return t, nil
}

func (r *resolver) typeDef(name string, def *TypeDef) (*codec.Type, error) {
	switch def.Kind {
	case "struct":
		fields, err := r.fields(def.Fields)
		if err != nil {
			return nil, errors.WithMessagef(err, "type %q", name)
		}
		return codec.Struct(fields...), nil

	case "enum":
		if len(def.Variants) == 0 || len(def.Variants) > codec.MaxVariants {
			return nil, errors.Wrapf(ErrInvalidIDL, "enum %q has %d variants", name, len(def.Variants))
		}
		if err := checkNames(len(def.Variants), func(i int) string { return def.Variants[i].Name }); err != nil {
			return nil, errors.WithMessagef(err, "enum %q", name)
		}

		variants := make([]codec.Variant, 0, len(def.Variants))
		for _, v := range def.Variants {
			fields, err := r.fields(v.Fields.Named)
			if err != nil {
				return nil, errors.WithMessagef(err, "variant %s.%s", name, v.Name)
			}
			for i, ref := range v.Fields.Tuple {
				t, err := r.ref(ref)
				if err != nil {
					return nil, errors.WithMessagef(err, "variant %s.%s", name, v.Name)
				}
				fields = append(fields, codec.NewField(strconv.Itoa(i), t))
			}
			variants = append(variants, codec.Variant{Name: v.Name, Fields: fields})
		}
		return codec.TaggedUnion(variants...), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedType, "type %q has kind %q", name, def.Kind)
}

func checkNames(n int, name func(int) string) error {
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		if len(name(i)) == 0 {
			return errors.Wrapf(ErrInvalidIDL, "entry %d has no name", i)
		}
		if _, ok := seen[name(i)]; ok {
			return errors.Wrapf(ErrInvalidIDL, "duplicate name %q", name(i))
		}
		seen[name(i)] = struct{}{}
	}
	return nil
}

// toSnakeCase converts legacy camelCase instruction names to the snake case
// Anchor hashes into the opcode. A run of capitals is one word, whose last
// letter starts the next word when a lowercase letter follows it:
// initializeAMMPool becomes initialize_amm_pool.
func toSnakeCase(name string) string {
	runes := []rune(name)

	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && startsWord(runes, i) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func startsWord(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
