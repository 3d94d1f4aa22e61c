package typedast

import "github.com/foxlang/fox/internal/value"

// PatternKind identifies which shape a ProcessedPattern carries.
type PatternKind int

const (
	PatternIdent PatternKind = iota
	PatternWildcard
	PatternTuple
	PatternStruct
	PatternEnum
	PatternValue
)

// Binding is one flattened name introduced by a pattern: a frame slot,
// its resolved type, and whether it was declared mutable.
type Binding struct {
	Name  string
	Slot  int
	Type  *value.Type
	IsMut bool
}

// ProcessedPattern is the checked, fully-resolved form of an ast.Pattern.
// Struct/tuple/enum patterns keep their nested shape (Elems) so codegen
// can compute each sub-pattern's source offset, while Bindings holds
// every name introduced anywhere in the pattern, flattened, for frame
// slot allocation.
type ProcessedPattern struct {
	Kind PatternKind
	Type *value.Type

	// PatternIdent
	Binding Binding

	// PatternTuple / PatternStruct: Elems is positional for tuples,
	// field-name-ordered (declaration order) for structs. Offsets holds
	// each element's byte offset within the parent value.
	Elems   []ProcessedPattern
	Offsets []int64

	// PatternEnum
	VariantName string
	VariantTag  int64
	Payload     []ProcessedPattern

	// PatternValue
	Value Expr

	// Bindings is every name bound anywhere within this pattern,
	// flattened in left-to-right order.
	Bindings []Binding
}
