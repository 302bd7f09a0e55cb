package rainlang

import (
	"strings"

	"github.com/rainlang/rainlsp/meta"
)

// MaxOpcodeDepth is the deepest an opcode may be nested in another's
// parameters.
const MaxOpcodeDepth = 32

const defaultOperandArgName = "operand argument"

// expressionParser parses the content of one binding. Every offset it
// produces is relative to the start of that content.
type expressionParser struct {
	text      string
	opcodes   []meta.OpMeta
	constants map[string]string

	pos      int
	source   int
	aliases  map[string]bool
	problems problems
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '-' || c == '_' || c == '.'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (self *expressionParser) parse() *Expression {
	expression := &Expression{}
	self.aliases = make(map[string]bool)

	for {
		self.skipSpaces()
		if self.pos >= len(self.text) {
			break
		}

		if line, ok := self.parseLine(); ok {
			expression.Lines = append(expression.Lines, line)
		}

		if self.pos < len(self.text) {
			if self.text[self.pos] == ';' {
				// a new source starts with an empty stack
				self.aliases = make(map[string]bool)
				self.source++
			}
			self.pos++
		}
	}

	return expression
}

func (self *expressionParser) skipSpaces() {
	for self.pos < len(self.text) && isSpace(self.text[self.pos]) {
		self.pos++
	}
}

func (self *expressionParser) atLineEnd() bool {
	return self.pos >= len(self.text) || self.text[self.pos] == ',' || self.text[self.pos] == ';'
}

func (self *expressionParser) word() (string, Offsets) {
	start := self.pos
	for self.pos < len(self.text) && isWordChar(self.text[self.pos]) {
		self.pos++
	}
	return self.text[start:self.pos], Offsets{start, self.pos - 1}
}

func (self *expressionParser) parseLine() (Line, bool) {
	start := self.pos
	line := Line{Source: self.source}

	colon := -1
	for i := start; i < len(self.text); i++ {
		if c := self.text[i]; c == ':' {
			colon = i
			break
		} else if c == ',' || c == ';' {
			break
		}
	}

	if colon < 0 {
		end := start
		for end < len(self.text) && self.text[end] != ',' && self.text[end] != ';' {
			end++
		}
		self.problems.add(InvalidExpression, Offsets{start, end - 1}, "expected \":\"")
	} else {
		line.Aliases = self.parseAliases(colon)
		self.pos = colon + 1
	}

	for {
		self.skipSpaces()
		if self.atLineEnd() {
			break
		}
		if node := self.parseNode(0); node != nil {
			line.Nodes = append(line.Nodes, node)
		}
	}

	end := self.pos - 1
	for end >= start && isSpace(self.text[end]) {
		end--
	}
	if end < start {
		return line, false
	}
	line.Position = Offsets{start, end}

	if colon >= 0 {
		self.checkOutputs(&line)
	}
	for _, alias := range line.Aliases {
		if !alias.IsPlaceholder() {
			self.aliases[alias.Name] = true
		}
	}
	return line, true
}

func (self *expressionParser) parseAliases(colon int) []*AliasNode {
	var aliases []*AliasNode
	seen := make(map[string]bool)

	for self.pos < colon {
		self.skipSpaces()
		if self.pos >= colon {
			break
		}
		if !isWordChar(self.text[self.pos]) {
			self.problems.add(IllegalChar, Offsets{self.pos, self.pos}, "illegal character: %q", self.text[self.pos])
			self.pos++
			continue
		}

		name, position := self.word()
		if name != "_" && !namePattern.MatchString(name) {
			self.problems.add(ExpectedName, position, "invalid alias name: %s", name)
		} else if name != "_" && (seen[name] || self.aliases[name]) {
			self.problems.add(DuplicateAlias, position, "duplicate alias: %s", name)
		}
		seen[name] = true
		aliases = append(aliases, &AliasNode{Name: name, Position: position})
	}
	return aliases
}

func (self *expressionParser) checkOutputs(line *Line) {
	if len(line.Nodes) == 0 {
		// an input line
		return
	}

	outputs := 0
	for _, node := range line.Nodes {
		outputs += self.outputCount(node)
	}

	switch {
	case len(line.Aliases) > outputs:
		self.problems.add(MismatchRHS, line.Position, "line has %d aliases but only %d outputs", len(line.Aliases), outputs)
	case len(line.Aliases) < outputs:
		self.problems.add(MismatchLHS, line.Position, "line has %d outputs but only %d aliases", outputs, len(line.Aliases))
	}
}

func (self *expressionParser) outputCount(node Node) int {
	if opcode, ok := node.(*OpcodeNode); ok {
		if op := self.lookup(opcode.Opcode.Name); op != nil {
			return op.OutputCount()
		}
	}
	return 1
}

func (self *expressionParser) lookup(name string) *meta.OpMeta {
	for i := range self.opcodes {
		if self.opcodes[i].Matches(name) {
			return &self.opcodes[i]
		}
	}
	return nil
}

func (self *expressionParser) parseNode(depth int) Node {
	c := self.text[self.pos]
	switch {
	case c == ')':
		self.problems.add(UnexpectedClosingParen, Offsets{self.pos, self.pos}, "unexpected \")\"")
		self.pos++
		return nil

	case c == '>':
		self.problems.add(UnexpectedClosingAngleParen, Offsets{self.pos, self.pos}, "unexpected \">\"")
		self.pos++
		return nil

	case isDigit(c):
		value, position := self.word()
		if !isLiteral(value) {
			self.problems.add(UnexpectedToken, position, "invalid literal: %s", value)
		}
		return &ValueNode{Value: value, Position: position}

	case isWordChar(c):
		name, position := self.word()
		if self.pos < len(self.text) && (self.text[self.pos] == '<' || self.text[self.pos] == '(') {
			return self.parseOpcode(name, position, depth)
		}
		return self.reference(name, position)

	default:
		self.problems.add(IllegalChar, Offsets{self.pos, self.pos}, "illegal character: %q", c)
		self.pos++
		return nil
	}
}

func (self *expressionParser) reference(name string, position Offsets) Node {
	if self.aliases[name] {
		return &AliasNode{Name: name, Position: position}
	}
	if value, ok := self.constants[name]; ok {
		return &ValueNode{Value: value, ID: name, Position: position}
	}
	self.problems.add(UndefinedIdentifier, position, "undefined identifier: %s", name)
	return &AliasNode{Name: name, Position: position}
}

func (self *expressionParser) parseOpcode(name string, position Offsets, depth int) Node {
	node := &OpcodeNode{
		Opcode:   Opcode{Name: name, Position: position},
		Position: position,
	}

	op := self.lookup(name)
	if op != nil {
		node.Opcode.Description = op.Description
	} else {
		self.problems.add(UndefinedOpcode, position, "unknown opcode: %s", name)
	}
	if depth >= MaxOpcodeDepth {
		self.problems.add(MaxOpcodeDepthExceeded, position, "opcodes nested deeper than %d", MaxOpcodeDepth)
	}

	if self.text[self.pos] == '<' {
		node.OperandArgs = self.parseOperandArgs(op)
		node.Position[1] = node.OperandArgs.Position.End()
	}

	if self.pos >= len(self.text) || self.text[self.pos] != '(' {
		self.problems.add(ExpectedOpeningParen, node.Position, "expected \"(\"")
		node.Parens = Offsets{node.Position.End() + 1, node.Position.End()}
		return node
	}

	open := self.pos
	self.pos++
	for {
		self.skipSpaces()
		if self.atLineEnd() {
			self.problems.add(ExpectedClosingParen, Offsets{position.Start(), self.pos - 1}, "expected \")\"")
			node.Parens = Offsets{open, self.pos - 1}
			break
		}
		if self.text[self.pos] == ')' {
			node.Parens = Offsets{open, self.pos}
			self.pos++
			break
		}
		if child := self.parseNode(depth + 1); child != nil {
			node.Parameters = append(node.Parameters, child)
		}
	}

	node.Position[1] = node.Parens.End()
	return node
}

func (self *expressionParser) parseOperandArgs(op *meta.OpMeta) *OperandArgs {
	args := &OperandArgs{Position: Offsets{self.pos, self.pos}}
	self.pos++

	for {
		for self.pos < len(self.text) && isSpace(self.text[self.pos]) {
			self.pos++
		}
		if self.pos >= len(self.text) || strings.IndexByte("(),;", self.text[self.pos]) >= 0 {
			args.Position[1] = self.pos - 1
			self.problems.add(ExpectedClosingAngleBracket, args.Position, "expected \">\"")
			return args
		}
		if self.text[self.pos] == '>' {
			args.Position[1] = self.pos
			self.pos++
			return args
		}
		if !isWordChar(self.text[self.pos]) {
			self.problems.add(IllegalChar, Offsets{self.pos, self.pos}, "illegal character: %q", self.text[self.pos])
			self.pos++
			continue
		}

		value, position := self.word()
		if !isLiteral(value) {
			self.problems.add(UnexpectedToken, position, "invalid operand argument: %s", value)
		}

		arg := OperandArg{Name: defaultOperandArgName, Value: value, Position: position}
		index := len(args.Args)
		if op != nil && index < len(op.Operand) {
			arg.Name = op.Operand[index].Name
			arg.Description = op.Operand[index].Description
		} else if op != nil && len(op.Operand) > 0 {
			self.problems.add(OutOfRangeOperandArgs, position, "%s takes %d operand arguments", op.Name, len(op.Operand))
		}
		args.Args = append(args.Args, arg)
	}
}
