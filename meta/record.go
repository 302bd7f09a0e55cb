// Package meta holds the metadata records that dotrain imports resolve to.
//
// A record is addressed by its content hash and carries any of three kinds of
// metadata: a DISPair (the opcodes of a deployer), contract metadata, and a
// nested rain document.
package meta

import (
	"regexp"
	"strings"
)

var hashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// IsHash reports whether s is a well-formed meta hash.
func IsHash(s string) bool {
	return hashPattern.MatchString(s)
}

// NormalizeHash lower-cases a hash so lookups are case insensitive.
func NormalizeHash(hash string) string {
	return strings.ToLower(hash)
}

type Record struct {
	DISPair      *DISPair      `json:"dispair,omitempty"`
	ContractMeta *ContractMeta `json:"contractMeta,omitempty"`
	Dotrain      string        `json:"dotrain,omitempty"`
}

// Empty is true when the record carries no metadata at all.
func (self *Record) Empty() bool {
	return self == nil || (self.DISPair == nil && self.ContractMeta == nil && self.Dotrain == "")
}

// DISPair describes the opcodes made available by a deployer.
type DISPair struct {
	Opcodes []OpMeta `json:"opcodes"`
}

type OpMeta struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Aliases     []string      `json:"aliases,omitempty"`
	Operand     []OperandMeta `json:"operand,omitempty"`
	// Outputs is the number of stack items the opcode pushes, 1 when unset.
	Outputs *int `json:"outputs,omitempty"`
}

// Matches reports whether name refers to this opcode by name or alias.
func (self *OpMeta) Matches(name string) bool {
	if self.Name == name {
		return true
	}
	for _, alias := range self.Aliases {
		if alias == name {
			return true
		}
	}
	return false
}

func (self *OpMeta) OutputCount() int {
	if self.Outputs == nil {
		return 1
	}
	return *self.Outputs
}

type OperandMeta struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type ContractMeta struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
