package rainlang

import (
	"fmt"
	"sort"
)

// ErrorCode identifies the kind of a Problem. Codes are grouped by their high
// byte.
type ErrorCode int

const (
	IllegalChar            ErrorCode = 0x001
	RuntimeError           ErrorCode = 0x002
	CircularDependency     ErrorCode = 0x003
	MaxOpcodeDepthExceeded ErrorCode = 0x004

	UndefinedMeta       ErrorCode = 0x101
	UndefinedOpcode     ErrorCode = 0x102
	UndefinedIdentifier ErrorCode = 0x103
	UndefinedDISPair    ErrorCode = 0x104

	InvalidHash         ErrorCode = 0x201
	InvalidExpression   ErrorCode = 0x202
	InvalidEmptyBinding ErrorCode = 0x203
	InvalidImport       ErrorCode = 0x204

	UnexpectedToken             ErrorCode = 0x301
	UnexpectedClosingParen      ErrorCode = 0x302
	UnexpectedEndOfComment      ErrorCode = 0x303
	UnexpectedClosingAngleParen ErrorCode = 0x304

	ExpectedOpeningParen        ErrorCode = 0x401
	ExpectedClosingParen        ErrorCode = 0x402
	ExpectedClosingAngleBracket ErrorCode = 0x403
	ExpectedName                ErrorCode = 0x404
	ExpectedSemi                ErrorCode = 0x405

	MismatchRHS         ErrorCode = 0x501
	MismatchLHS         ErrorCode = 0x502
	MismatchOperandArgs ErrorCode = 0x503

	OutOfRangeOperandArgs ErrorCode = 0x601
	OutOfRangeValue       ErrorCode = 0x602

	DuplicateAlias      ErrorCode = 0x701
	DuplicateIdentifier ErrorCode = 0x702
	DuplicateImport     ErrorCode = 0x703
)

var errorCodeNames = map[ErrorCode]string{
	IllegalChar:                 "IllegalChar",
	RuntimeError:                "RuntimeError",
	CircularDependency:          "CircularDependency",
	MaxOpcodeDepthExceeded:      "MaxOpcodeDepthExceeded",
	UndefinedMeta:               "UndefinedMeta",
	UndefinedOpcode:             "UndefinedOpcode",
	UndefinedIdentifier:         "UndefinedIdentifier",
	UndefinedDISPair:            "UndefinedDISPair",
	InvalidHash:                 "InvalidHash",
	InvalidExpression:           "InvalidExpression",
	InvalidEmptyBinding:         "InvalidEmptyBinding",
	InvalidImport:               "InvalidImport",
	UnexpectedToken:             "UnexpectedToken",
	UnexpectedClosingParen:      "UnexpectedClosingParen",
	UnexpectedEndOfComment:      "UnexpectedEndOfComment",
	UnexpectedClosingAngleParen: "UnexpectedClosingAngleParen",
	ExpectedOpeningParen:        "ExpectedOpeningParen",
	ExpectedClosingParen:        "ExpectedClosingParen",
	ExpectedClosingAngleBracket: "ExpectedClosingAngleBracket",
	ExpectedName:                "ExpectedName",
	ExpectedSemi:                "ExpectedSemi",
	MismatchRHS:                 "MismatchRHS",
	MismatchLHS:                 "MismatchLHS",
	MismatchOperandArgs:         "MismatchOperandArgs",
	OutOfRangeOperandArgs:       "OutOfRangeOperandArgs",
	OutOfRangeValue:             "OutOfRangeValue",
	DuplicateAlias:              "DuplicateAlias",
	DuplicateIdentifier:         "DuplicateIdentifier",
	DuplicateImport:             "DuplicateImport",
}

// String returns the code's identifier.
func (self ErrorCode) String() string {
	if name, ok := errorCodeNames[self]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%#x)", int(self))
}

// Problem is an issue found while parsing. Position is document absolute once
// reported by Document.AllProblems.
type Problem struct {
	Code     ErrorCode
	Message  string
	Position Offsets
}

func (self Problem) String() string {
	return fmt.Sprintf("%s at [%d, %d]: %s", self.Code, self.Position[0], self.Position[1], self.Message)
}

type problems []Problem

func (self *problems) add(code ErrorCode, position Offsets, format string, args ...interface{}) {
	*self = append(*self, Problem{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Position: position,
	})
}

func (self problems) sorted() []Problem {
	sorted := make([]Problem, len(self))
	copy(sorted, self)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position[0] < sorted[j].Position[0]
	})
	return sorted
}
