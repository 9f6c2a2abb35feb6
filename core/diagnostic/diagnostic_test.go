package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opal-lang/pysyntax/core/text"
)

func TestHasErrorsIgnoresWarnings(t *testing.T) {
	ds := []Diagnostic{
		{Kind: VersionWarning, Message: "match statements require Python 3.10 or newer"},
		Warnf(text.Empty(0), "invalid escape sequence '\\d'"),
	}
	assert.False(t, HasErrors(ds))

	ds = append(ds, Errorf(text.NewRange(3, 4), "expected ':'"))
	assert.True(t, HasErrors(ds))
	assert.Len(t, Filter(ds, SyntaxError), 1)
	assert.Len(t, Filter(ds, Warning, VersionWarning), 2)
}

func TestSortIsStable(t *testing.T) {
	ds := []Diagnostic{
		Errorf(text.Empty(9), "b"),
		Errorf(text.Empty(2), "a"),
		Errorf(text.Empty(9), "c"),
	}
	Sort(ds)

	var got []string
	for _, d := range ds {
		got = append(got, d.Message)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestErrorString(t *testing.T) {
	d := Errorf(text.Empty(0), "expected %s", "':'")
	assert.Equal(t, "syntax error: expected ':'", d.Error())
	assert.Equal(t, text.Empty(5), d.Shift(5).Range)
}
