package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{in: "3", want: Version{Major: 3}},
		{in: "3.12", want: Version{Major: 3, Minor: 12}},
		{in: "v3.8.10", want: Version{Major: 3, Minor: 8, Patch: 10}},
		{in: " 3.11 ", want: Version{Major: 3, Minor: 11}},
		{in: "3.x", wantErr: true},
		{in: "3.12-rc1", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, MustParse("3.9").Compare(MustParse("3.10")))
	assert.Equal(t, 0, MustParse("3.12").Compare(MustParse("3.12.0")))
	assert.True(t, MustParse("3.12.1").AtLeast(MustParse("3.12")))
	assert.Equal(t, "3.12.1", MustParse("3.12.1").String())
}

func TestFeatureGates(t *testing.T) {
	v311 := MustParse("3.11")
	assert.False(t, v311.Supports(TypeParameters))
	assert.True(t, MustParse("3.12").Supports(TypeParameters))
	assert.True(t, v311.Supports(MatchStatement))
	assert.True(t, Version{}.Supports(TypeAliasStatement))

	assert.Equal(t,
		"type parameter lists require Python 3.12 or newer (target is 3.11)",
		TypeParameters.Requirement(v311))
}

func TestUnmarshalText(t *testing.T) {
	var v Version
	require.NoError(t, v.UnmarshalText([]byte("3.10")))
	assert.Equal(t, Version{Major: 3, Minor: 10}, v)
	assert.Error(t, v.UnmarshalText([]byte("three")))
}
