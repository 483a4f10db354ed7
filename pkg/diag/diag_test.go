package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weftlang/weft/pkg/token"
)

func TestNewCarriesPosition(t *testing.T) {
	tok := token.Token{Kind: token.RBrace, Line: 4, Column: 7}
	failure := New(tok, "an expression")

	assert.Equal(t, 4, failure.Line)
	assert.Equal(t, 7, failure.Column)
	assert.Equal(t, token.RBrace, failure.Found)
	assert.Contains(t, failure.Error(), "an expression")
}
