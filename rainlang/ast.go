package rainlang

// Offsets is an inclusive [start, end] span of character offsets.
type Offsets [2]int

func (self Offsets) Start() int {
	return self[0]
}

func (self Offsets) End() int {
	return self[1]
}

// Contains is inclusive on both ends.
func (self Offsets) Contains(offset int) bool {
	return self[0] <= offset && offset <= self[1]
}

// StrictlyContains excludes both ends, which are the delimiters of a
// bracketed span.
func (self Offsets) StrictlyContains(offset int) bool {
	return self[0] < offset && offset < self[1]
}

// Shift moves the span by bias.
func (self Offsets) Shift(bias int) Offsets {
	return Offsets{self[0] + bias, self[1] + bias}
}

// Display returns the half-open span [start, end+1) shown to clients.
func (self Offsets) Display() (int, int) {
	return self[0], self[1] + 1
}

//
// Import
//

type Import struct {
	// Name is the optional namespace given before the hash.
	Name         string
	Hash         string
	Position     Offsets
	HashPosition Offsets
	// Sequence is nil when the hash did not resolve.
	Sequence *ImportSequence
}

// ImportSequence flags which kinds of metadata an import resolved to.
type ImportSequence struct {
	DISPair      bool
	ContractMeta bool
	Dotrain      bool
}

func (self *ImportSequence) Empty() bool {
	return self == nil || !(self.DISPair || self.ContractMeta || self.Dotrain)
}

//
// Binding
//

type BindingKind int

const (
	BindingExpression BindingKind = iota
	BindingConstant
	BindingElided
)

func (self BindingKind) String() string {
	switch self {
	case BindingConstant:
		return "constant"
	case BindingElided:
		return "elided"
	default:
		return "expression"
	}
}

// Binding is a named unit of a document. Position, NamePosition and
// ContentPosition are document absolute; offsets inside Expression are
// relative to ContentPosition.Start().
type Binding struct {
	// Position runs from the "#" to the end of the content.
	Position        Offsets
	Name            string
	NamePosition    Offsets
	Content         string
	ContentPosition Offsets
	Kind            BindingKind

	Expression *Expression // BindingExpression
	Constant   string      // BindingConstant
	Elided     string      // BindingElided, the elision message
}

// IsEntrypoint is true for the bindings that can be run.
func (self *Binding) IsEntrypoint() bool {
	return self.Kind == BindingExpression
}

//
// Expression
//

type Expression struct {
	Lines []Line
}

// Line is one "aliases: nodes" statement. Source counts the ";" before it.
type Line struct {
	Source   int
	Position Offsets
	Nodes    []Node
	Aliases  []*AliasNode
}

// Items returns the line's nodes followed by its aliases.
func (self *Line) Items() []Node {
	items := make([]Node, 0, len(self.Nodes)+len(self.Aliases))
	items = append(items, self.Nodes...)
	for _, alias := range self.Aliases {
		items = append(items, alias)
	}
	return items
}

// Node is implemented by *OpcodeNode, *ValueNode and *AliasNode only.
type Node interface {
	Span() Offsets
	node()
}

type Opcode struct {
	Name        string
	Description string
	// Position is the span of the opcode's name.
	Position Offsets
}

type OpcodeNode struct {
	Opcode      Opcode
	Position    Offsets
	Parens      Offsets
	OperandArgs *OperandArgs
	Parameters  []Node
}

type OperandArgs struct {
	// Position spans the angle brackets.
	Position Offsets
	Args     []OperandArg
}

type OperandArg struct {
	Name        string
	Description string
	Value       string
	Position    Offsets
}

type ValueNode struct {
	Value string
	// ID is set when the value comes from a named constant.
	ID       string
	Position Offsets
}

// AliasNode is a stack alias, either declared on the left hand side of a line
// or referenced as a node. The name "_" is a placeholder.
type AliasNode struct {
	Name     string
	Position Offsets
}

func (self *OpcodeNode) Span() Offsets { return self.Position }
func (self *ValueNode) Span() Offsets  { return self.Position }
func (self *AliasNode) Span() Offsets  { return self.Position }

func (*OpcodeNode) node() {}
func (*ValueNode) node()  {}
func (*AliasNode) node()  {}

// IsPlaceholder is true for the discarded alias "_".
func (self *AliasNode) IsPlaceholder() bool {
	return self.Name == "_"
}
