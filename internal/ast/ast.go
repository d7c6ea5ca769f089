// Package ast defines the Leviscript abstract syntax tree.
//
// Every node carries a stable integer id assigned by the parser from a
// single sequence (see internal/span); the core never mints ids itself,
// it only reads them back out to key the type index and the debug
// information that final bytecode carries.
package ast

// ID identifies an AST node. Ids are dense and parser-assigned; they
// double as indices into a span.Table.
type ID = uint32

// Node is implemented by every AST node.
type Node interface {
	// NodeID returns this node's id.
	NodeID() ID
	// Children returns the node's immediate child nodes, in source order.
	Children() []Node
}

// Expr is any node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Block represents phrases executed one after another; the value of a
// block is the value of its last phrase, or Unit if it has none.
type Block struct {
	ID      ID
	Phrases []*Phrase
}

func (b *Block) NodeID() ID { return b.ID }

func (b *Block) Children() []Node {
	children := make([]Node, len(b.Phrases))
	for i, p := range b.Phrases {
		children[i] = p
	}
	return children
}

// Phrase wraps a single expression statement inside a Block.
type Phrase struct {
	ID   ID
	Expr Expr
}

func (p *Phrase) NodeID() ID         { return p.ID }
func (p *Phrase) Children() []Node   { return []Node{p.Expr} }

// StrLitPartKind distinguishes the three ways a string literal part can
// be produced.
type StrLitPartKind int

const (
	// PurePart is a literal run of text with no interpolation.
	PurePart StrLitPartKind = iota
	// SymbolPart interpolates the value of a bound symbol.
	SymbolPart
	// SubExprPart interpolates an arbitrary sub-expression.
	SubExprPart
)

// StrLitPart is one piece of a StrLit's interpolation.
type StrLitPart struct {
	Kind    StrLitPartKind
	Literal string  // valid when Kind == PurePart
	Symbol  *Symbol // valid when Kind == SymbolPart
	SubExpr Expr    // valid when Kind == SubExprPart
}

// StrLit is a (possibly interpolated) string literal.
type StrLit struct {
	ID    ID
	Parts []StrLitPart
}

func (s *StrLit) NodeID() ID { return s.ID }
func (*StrLit) exprNode()    {}

func (s *StrLit) Children() []Node {
	var children []Node
	for _, part := range s.Parts {
		switch part.Kind {
		case SymbolPart:
			children = append(children, part.Symbol)
		case SubExprPart:
			children = append(children, part.SubExpr)
		}
	}
	return children
}

// Symbol is a reference to a bound name.
type Symbol struct {
	ID   ID
	Name string
}

func (s *Symbol) NodeID() ID       { return s.ID }
func (*Symbol) exprNode()          {}
func (s *Symbol) Children() []Node { return nil }

// IntLit is an integer literal.
type IntLit struct {
	ID    ID
	Value int64
}

func (l *IntLit) NodeID() ID       { return l.ID }
func (*IntLit) exprNode()          {}
func (l *IntLit) Children() []Node { return nil }

// FloatLit is a floating-point literal.
//
// Supplements the distilled spec (see SPEC_FULL.md §6): float literals are
// referenced by types.StackType but the base grammar never produced a
// literal node for them. Included here with the obvious semantics.
type FloatLit struct {
	ID    ID
	Value float64
}

func (l *FloatLit) NodeID() ID       { return l.ID }
func (*FloatLit) exprNode()          {}
func (l *FloatLit) Children() []Node { return nil }

// BoolLit is a boolean literal. Supplemented alongside FloatLit.
type BoolLit struct {
	ID    ID
	Value bool
}

func (l *BoolLit) NodeID() ID       { return l.ID }
func (*BoolLit) exprNode()          {}
func (l *BoolLit) Children() []Node { return nil }

// Let binds the value of Rhs to Name in the enclosing scope.
type Let struct {
	ID   ID
	Name string
	Rhs  Expr
}

func (l *Let) NodeID() ID       { return l.ID }
func (*Let) exprNode()          {}
func (l *Let) Children() []Node { return []Node{l.Rhs} }

// Call invokes Callee with Args.
type Call struct {
	ID     ID
	Callee Expr
	Args   []Expr
}

func (c *Call) NodeID() ID { return c.ID }
func (*Call) exprNode()    {}

func (c *Call) Children() []Node {
	children := make([]Node, 0, len(c.Args)+1)
	children = append(children, c.Callee)
	for _, a := range c.Args {
		children = append(children, a)
	}
	return children
}

// ArgDef names a FnFragment parameter; its type is deduced, not declared.
type ArgDef struct {
	ID   ID
	Name string
}

// FnFragment is a callable body parameterized by positional arguments
// whose types are inferred from how they're used at call sites inside
// Body (see internal/typeinfer).
type FnFragment struct {
	ID   ID
	Args []ArgDef
	Body Expr
}

func (f *FnFragment) NodeID() ID       { return f.ID }
func (*FnFragment) exprNode()          {}
func (f *FnFragment) Children() []Node { return []Node{f.Body} }

// BlockExpr is the Expr variant wrapping a nested Block; its id is
// distinct from the wrapped Block's id (the block opens its own scope).
type BlockExpr struct {
	ID    ID
	Block *Block
}

func (b *BlockExpr) NodeID() ID       { return b.ID }
func (*BlockExpr) exprNode()          {}
func (b *BlockExpr) Children() []Node { return []Node{b.Block} }
