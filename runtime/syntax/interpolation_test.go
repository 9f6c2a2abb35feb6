package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/pysyntax/core/text"
	"github.com/opal-lang/pysyntax/runtime/lexer"
	"github.com/opal-lang/pysyntax/runtime/parser"
)

func firstFString(t *testing.T, root *Node) *Token {
	t.Helper()
	for tok := root.FirstToken(); tok != nil; tok = tok.NextToken() {
		if tok.Kind() == lexer.FString {
			return tok
		}
	}
	t.Fatal("no f-string token in tree")
	return nil
}

func TestInterpolations(t *testing.T) {
	src := "x = f\"Hello {name!r:>10}!\"\n"
	tok := firstFString(t, Parse([]byte(src)).Root())

	fields, diags := Interpolations(tok)
	assert.Empty(t, diags)
	require.Len(t, fields, 1)

	field := fields[0]
	assert.Equal(t, text.Range{Start: 12, Len: 12}, field.Range)
	assert.Equal(t, "r", field.Conversion)
	assert.Equal(t, ">10", field.FormatSpec)

	require.NotNil(t, field.Expr)
	assert.Equal(t, parser.Interpolation, field.Expr.Kind())
	assert.Equal(t, text.Range{Start: 13, Len: 4}, field.Expr.Range())
	name := field.Expr.FirstChild()
	require.NotNil(t, name)
	assert.Equal(t, parser.NameExpr, name.Kind())
	assert.Equal(t, "name", name.Text())
	assert.Equal(t, 13, name.FirstToken().Range().Start)
}

func TestInterpolationsMultipleFields(t *testing.T) {
	tok := firstFString(t, Parse([]byte("f\"{a + b} and {c.d()=} {e!s}\"")).Root())

	fields, diags := Interpolations(tok)
	assert.Empty(t, diags)
	require.Len(t, fields, 3)

	assert.Equal(t, parser.BinaryExpr, fields[0].Expr.FirstChild().Kind())
	assert.Equal(t, parser.CallExpr, fields[1].Expr.FirstChild().Kind())
	assert.Equal(t, "s", fields[2].Conversion)
	assert.Empty(t, fields[0].FormatSpec)
}

func TestInterpolationsEmptyField(t *testing.T) {
	tok := firstFString(t, Parse([]byte("f\"{}\"")).Root())

	fields, diags := Interpolations(tok)
	require.Len(t, fields, 1)
	assert.Nil(t, fields[0].Expr)
	require.Len(t, diags, 1)
	assert.Equal(t, "f-string: empty expression not allowed", diags[0].Message)
}

func TestInterpolationsNotAnFString(t *testing.T) {
	root := Parse([]byte("x = 'plain'\n")).Root()

	fields, diags := Interpolations(nil)
	assert.Nil(t, fields)
	assert.Nil(t, diags)

	fields, diags = Interpolations(root.FirstToken())
	assert.Nil(t, fields)
	assert.Nil(t, diags)
}
