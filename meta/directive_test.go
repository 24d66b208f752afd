package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldtlabs/dynbind/errors"
)

func TestParseDirective_Module(t *testing.T) {
	d, err := parseDirective(nil, "module demo")
	require.NoError(t, err)

	assert.Equal(t, "module", d.verb)
	assert.Equal(t, "demo", d.arg)
	assert.Empty(t, d.keys)
}

func TestParseDirective_FunctionKeys(t *testing.T) {
	d, err := parseDirective(nil, `function module=demo name=add_one attrs="x, *, limit"`)
	require.NoError(t, err)

	assert.Equal(t, "function", d.verb)

	module, ok := d.take("module")
	assert.True(t, ok)
	assert.Equal(t, "demo", module)

	attrs, ok := d.take("attrs")
	assert.True(t, ok)
	assert.Equal(t, "x, *, limit", attrs)
}

func TestParseDirective_DuplicateKey(t *testing.T) {
	_, err := parseDirective(nil, "function module=a module=b")
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseExtract, Kind: errors.KindConflict})
}

func TestParseDirective_UnknownVerb(t *testing.T) {
	_, err := parseDirective(nil, "export module=a")
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseExtract, Kind: errors.KindUnsupported})
}

func TestParseDirective_UnterminatedQuote(t *testing.T) {
	_, err := parseDirective(nil, `function attrs="x`)
	require.Error(t, err)
}

func TestFindDirective_AtMostOne(t *testing.T) {
	lines := []string{
		"// AddOne adds one.",
		"//dynbind:function module=demo",
		"//dynbind:function module=other",
	}
	_, err := findDirective([]string{"AddOne"}, lines)
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseExtract, Kind: errors.KindConflict})
}

func TestParseAttrs_KeywordOnly(t *testing.T) {
	params := []ParameterSpec{{Name: "q"}, {Name: "limit"}, {Name: "strict"}}

	kwOnly, err := parseAttrs(nil, "q, *, limit, strict", params)
	require.NoError(t, err)

	assert.False(t, kwOnly["q"])
	assert.True(t, kwOnly["limit"])
	assert.True(t, kwOnly["strict"])
}

func TestParseAttrs_MismatchRejected(t *testing.T) {
	params := []ParameterSpec{{Name: "q"}}

	_, err := parseAttrs(nil, "wrong", params)
	require.Error(t, err)

	_, err = parseAttrs(nil, "", params)
	require.NoError(t, err, "empty attrs means no markers")

	_, err = parseAttrs(nil, "*", params)
	require.Error(t, err, "attrs must still cover all parameters")
}

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"AddOne":    "add_one",
		"ParseURL":  "parse_url",
		"HTTPGet":   "http_get",
		"X":         "x",
		"add_one":   "add_one",
		"Increment": "increment",
	}
	for in, want := range cases {
		assert.Equal(t, want, snakeCase(in), "snakeCase(%q)", in)
	}
}
