// Package registry is the Definitions Registry: three
// parallel UUID-keyed maps (structs, enums, functions) plus a module
// map. It is populated during type-checking and consumed by code
// generation and the VM.
package registry

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/foxlang/fox/internal/lexer"
	"github.com/foxlang/fox/internal/value"
)

// fox's process-scoped UUID namespace. Using uuid.NewSHA1 over a
// monotonic counter (rather than uuid.New()'s random generator) keeps
// UUID allocation deterministic across runs of the same program, which
// is what the "non-zero UUID unique within the process" invariant
// and our golden tests rely on for reproducibility.
var foxNamespace = uuid.MustParse("b9d1f3a0-5f0e-4f0a-9c1a-6f9e9b9a0001")

// IDGen issues monotonically increasing, deterministic UUIDs.
type IDGen struct {
	counter uint64
}

// Next returns the next UUID in the sequence. The zero UUID is never
// issued (counter starts at 1), matching "every struct/enum in the
// registry has a non-zero UUID".
func (g *IDGen) Next() uuid.UUID {
	g.counter++
	seed := fmt.Sprintf("fox-def-%d", g.counter)
	return uuid.NewSHA1(foxNamespace, []byte(seed))
}

// StructField is one field record of a Struct: id, offset, type.
type StructField struct {
	Name   string
	Offset int64
	Type   *value.Type
}

// Method records a UUID-keyed function plus whether it is static.
type Method struct {
	FuncID   uuid.UUID
	IsStatic bool
}

// Struct is the Struct definition record.
type Struct struct {
	ID      uuid.UUID
	Module  uuid.UUID
	Name    string
	Fields  []StructField
	Methods map[string]Method
}

// DefName implements value.Definition.
func (s *Struct) DefName() string { return s.Name }

// DefSize implements value.Definition: word-aligned sum of field sizes
// following their own declaration order/offsets.
func (s *Struct) DefSize() int64 {
	if len(s.Fields) == 0 {
		return 0
	}
	last := s.Fields[len(s.Fields)-1]
	total := last.Offset + last.Type.Size()
	if rem := total % 8; rem != 0 {
		total += 8 - rem
	}
	return total
}

// FindField returns the field record for name, or nil if absent.
func (s *Struct) FindField(name string) *StructField {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// EnumPayloadField is one field of a variant's payload: offset, type.
// Offset is relative to the start of the payload, i.e. it does not
// include the 8-byte tag that precedes the payload in an enum value.
type EnumPayloadField struct {
	Offset int64
	Type   *value.Type
}

// EnumVariant is one tagged variant of an Enum: tag, id, payload.
type EnumVariant struct {
	Tag     int64
	Name    string
	Payload []EnumPayloadField
}

// Enum is the Enum definition record.
type Enum struct {
	ID        uuid.UUID
	Module    uuid.UUID
	Name      string
	IsSumtype bool
	Variants  []EnumVariant
	Methods   map[string]Method
}

// DefName implements value.Definition.
func (e *Enum) DefName() string { return e.Name }

// DefSize implements value.Definition: the tag (8 bytes) plus the
// largest variant payload, word-aligned.
func (e *Enum) DefSize() int64 {
	const tagSize = 8
	var maxPayload int64
	for _, v := range e.Variants {
		var sz int64
		for _, f := range v.Payload {
			end := f.Offset + f.Type.Size()
			if end > sz {
				sz = end
			}
		}
		if sz > maxPayload {
			maxPayload = sz
		}
	}
	total := tagSize + maxPayload
	if rem := total % 8; rem != 0 {
		total += 8 - rem
	}
	return total
}

// FindVariantByTag looks up a variant by its tag. It is total over
// legal tags and partial otherwise: a lookup failure for a tag that
// should be legal is an internal error, which callers signal by
// panicking with InternalError.
func (e *Enum) FindVariantByTag(tag int64) (*EnumVariant, bool) {
	for i := range e.Variants {
		if e.Variants[i].Tag == tag {
			return &e.Variants[i], true
		}
	}
	return nil, false
}

// FindVariantByName looks up a variant by name.
func (e *Enum) FindVariantByName(name string) (*EnumVariant, bool) {
	for i := range e.Variants {
		if e.Variants[i].Name == name {
			return &e.Variants[i], true
		}
	}
	return nil, false
}

// Function is the Function definition record: UUID, module,
// name, value type, parameter names, and a final byte vector of
// bytecode (populated by the code generator).
type Function struct {
	ID         uuid.UUID
	Module     uuid.UUID
	Name       string
	Type       *value.Type // KindFunction
	ParamNames []string
	Varargs    bool
	Bytecode   []byte // append-only during generation; never mutated after

	// PanicSites records, for every Call_Builtin("panic") site's Chunk
	// offset, the source span of the panic(...) call that emitted it, so
	// the VM can prefix a runtime panic with its originating location
	// when one is statically known.
	PanicSites map[int]lexer.Span
}

// Module is the Module record: UUID, source path, sets of
// owned struct/enum/function UUIDs.
type Module struct {
	ID      uuid.UUID
	Path    string
	Structs map[uuid.UUID]bool
	Enums   map[uuid.UUID]bool
	Funcs   map[uuid.UUID]bool
}

// InternalError reports a violated compiler invariant; it is always fatal.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string { return "internal error: " + e.Message }

// Registry owns the three parallel UUID-keyed maps plus the module
// map.
type Registry struct {
	ids     IDGen
	structs map[uuid.UUID]*Struct
	enums   map[uuid.UUID]*Enum
	funcs   map[uuid.UUID]*Function
	modules map[uuid.UUID]*Module
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		structs: make(map[uuid.UUID]*Struct),
		enums:   make(map[uuid.UUID]*Enum),
		funcs:   make(map[uuid.UUID]*Function),
		modules: make(map[uuid.UUID]*Module),
	}
}

// NextID issues the next deterministic, non-zero UUID for a new
// definition.
func (r *Registry) NextID() uuid.UUID { return r.ids.Next() }

// AddStruct inserts s, panicking with InternalError on a duplicate
// UUID.
func (r *Registry) AddStruct(s *Struct) {
	if _, exists := r.structs[s.ID]; exists {
		panic(&InternalError{Message: "duplicate struct UUID " + s.ID.String()})
	}
	r.structs[s.ID] = s
}

// AddEnum inserts e, panicking on a duplicate UUID.
func (r *Registry) AddEnum(e *Enum) {
	if _, exists := r.enums[e.ID]; exists {
		panic(&InternalError{Message: "duplicate enum UUID " + e.ID.String()})
	}
	r.enums[e.ID] = e
}

// AddFunction inserts f, panicking on a duplicate UUID.
func (r *Registry) AddFunction(f *Function) {
	if _, exists := r.funcs[f.ID]; exists {
		panic(&InternalError{Message: "duplicate function UUID " + f.ID.String()})
	}
	r.funcs[f.ID] = f
}

// AddModule inserts m, panicking on a duplicate UUID.
func (r *Registry) AddModule(m *Module) {
	if _, exists := r.modules[m.ID]; exists {
		panic(&InternalError{Message: "duplicate module UUID " + m.ID.String()})
	}
	r.modules[m.ID] = m
}

// GetStructByUUID returns the struct record, or (nil, false) when
// absent; callers decide whether absence is a user error or an
// internal error.
func (r *Registry) GetStructByUUID(id uuid.UUID) (*Struct, bool) {
	s, ok := r.structs[id]
	return s, ok
}

// GetEnumByUUID returns the enum record, or (nil, false) when absent.
func (r *Registry) GetEnumByUUID(id uuid.UUID) (*Enum, bool) {
	e, ok := r.enums[id]
	return e, ok
}

// GetFunctionByUUID returns the function record, or (nil, false) when
// absent.
func (r *Registry) GetFunctionByUUID(id uuid.UUID) (*Function, bool) {
	f, ok := r.funcs[id]
	return f, ok
}

// GetModuleByUUID returns the module record, or (nil, false) when
// absent.
func (r *Registry) GetModuleByUUID(id uuid.UUID) (*Module, bool) {
	m, ok := r.modules[id]
	return m, ok
}
