package typecheck

import "github.com/foxlang/fox/internal/value"

// Symbol is a named entity visible in a scope: its type, mutability,
// and (for locals) the frame slot the code generator/VM will use to
// address it.
type Symbol struct {
	Name    string
	Type    *value.Type
	IsMut   bool
	Slot    int
	IsConst bool
}

// Scope is one lexical scope, mapping identifier to (type, is_mut).
// Scopes chain to their parent; the root of the chain is the global
// scope holding top-level declarations.
type Scope struct {
	Parent  *Scope
	Symbols map[string]*Symbol
}

// NewScope creates a new scope chained to parent (nil for the global scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{Parent: parent, Symbols: make(map[string]*Symbol)}
}

// Insert adds sym to the current scope, shadowing any outer binding of
// the same name.
func (s *Scope) Insert(sym *Symbol) { s.Symbols[sym.Name] = sym }

// Lookup finds a symbol in this scope or any ancestor.
func (s *Scope) Lookup(name string) *Symbol {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.Symbols[name]; ok {
			return sym
		}
	}
	return nil
}
