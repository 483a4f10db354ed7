// Package diag defines the structured failure value the parser returns.
//
// Per spec.md §7, every parser violation raises a single terminal failure
// kind. The parser does not recover: on failure it stops and returns this
// value to the caller.
package diag

import (
	"fmt"

	"github.com/weftlang/weft/pkg/token"
)

// ParseFailure names the unexpected token and what the parser expected
// at that position.
type ParseFailure struct {
	Line       int
	Column     int
	Found      token.Kind
	Expectation string
}

func (f *ParseFailure) Error() string {
	return fmt.Sprintf("%d:%d: expected %s, found %v", f.Line, f.Column, f.Expectation, f.Found)
}

// New builds a ParseFailure positioned at tok, expecting expectation.
func New(tok token.Token, expectation string) *ParseFailure {
	return &ParseFailure{
		Line:        tok.Line,
		Column:      tok.Column,
		Found:       tok.Kind,
		Expectation: expectation,
	}
}
