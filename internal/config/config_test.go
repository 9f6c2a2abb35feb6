package config

import (
	"encoding/json"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/pysyntax/core/version"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
target-version: "3.10"
show-warnings: false
format: json
exclude:
  - "build/*"
  - "*_pb2.py"
`))
	require.NoError(t, err)
	assert.Equal(t, version.MustParse("3.10"), cfg.TargetVersion)
	assert.False(t, cfg.ShowWarnings)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, []string{"build/*", "*_pb2.py"}, cfg.Exclude)
}

func TestParseDefaults(t *testing.T) {
	for _, input := range []string{"", "# only a comment\n"} {
		cfg, err := Parse([]byte(input))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	}

	cfg, err := Parse([]byte("format: text\n"))
	require.NoError(t, err)
	assert.Equal(t, version.Latest, cfg.TargetVersion)
	assert.True(t, cfg.ShowWarnings)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown key", "colour: red\n", "invalid config"},
		{"unquoted version", "target-version: 3.10\n", "/target-version"},
		{"bad version", "target-version: \"three\"\n", "/target-version"},
		{"bad format", "format: xml\n", "/format"},
		{"exclude not a list", "exclude: build\n", "/exclude"},
		{"empty pattern", "exclude: [\"\"]\n", "/exclude/0"},
		{"not a mapping", "- a\n- b\n", "invalid config"},
		{"broken yaml", "format: [\n", "invalid YAML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSchemaValidatesDecodedDocument(t *testing.T) {
	sch, err := compiledSchema()
	require.NoError(t, err)

	doc, err := toJSONValue(map[string]interface{}{
		"show-warnings": 1,
		"exclude":       []interface{}{"build/*", 2},
	})
	require.NoError(t, err)
	m, ok := doc.(map[string]interface{})
	require.True(t, ok, "decoded document is %T", doc)
	assert.IsType(t, json.Number(""), m["show-warnings"])

	err = sch.Validate(doc)
	var ve *jsonschema.ValidationError
	require.ErrorAs(t, err, &ve)
	msg := describe(ve)
	assert.Contains(t, msg, "/show-warnings")
	assert.Contains(t, msg, "/exclude/1")

	doc, err = toJSONValue(map[string]interface{}{"target-version": "3.12", "format": "json"})
	require.NoError(t, err)
	assert.NoError(t, sch.Validate(doc))
}

func TestLoadAndFind(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/repo/"+FileName, []byte("target-version: \"3.8\"\n"), 0o644))
	require.NoError(t, fsys.MkdirAll("/repo/pkg/sub", 0o755))

	cfg, err := Find(fsys, "/repo/pkg/sub")
	require.NoError(t, err)
	assert.Equal(t, "/repo/"+FileName, cfg.Path)
	assert.Equal(t, version.MustParse("3.8"), cfg.TargetVersion)

	cfg, err = Find(fsys, "/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(fsys, "/missing.yaml")
	assert.ErrorContains(t, err, "reading config")

	require.NoError(t, afero.WriteFile(fsys, "/bad.yaml", []byte("format: xml\n"), 0o644))
	_, err = Load(fsys, "/bad.yaml")
	assert.ErrorContains(t, err, "/bad.yaml")
}

func TestExcluded(t *testing.T) {
	cfg := Config{Exclude: []string{"build/*.py", "*_pb2.py", "vendor"}}

	tests := []struct {
		path string
		want bool
	}{
		{"build/gen.py", true},
		{"src/build/gen.py", true},
		{"api/service_pb2.py", true},
		{"vendor", true},
		{"src/main.py", false},
		{"build/sub/gen.py", false},
		{"./src/../build/x.py", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.Excluded(tt.path), tt.path)
	}
}
