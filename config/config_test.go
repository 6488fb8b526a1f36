package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdfbind/bind"
	"github.com/geoknoesis/rdfbind/graph/memgraph"
	"github.com/geoknoesis/rdfbind/resource"
	"github.com/geoknoesis/rdfbind/shape"
)

func TestDefaultMatchesEngineDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, bind.DefaultMaxDepth, c.Binding.MaxDepth)
	assert.True(t, c.Binding.QueryResultAsContainer)
	assert.False(t, c.Binding.AllowRelativeURIs)
	assert.Equal(t, "urn:skolem:", c.Skolem.Prefix)

	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, level)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rdfbind.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[binding]
allow-relative-uris = true
max-depth = 16

[namespaces]
foaf = "http://xmlns.com/foaf/0.1/"

[log]
level = "debug"
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.True(t, c.Binding.AllowRelativeURIs)
	assert.True(t, c.Binding.QueryResultAsContainer, "unset keys keep their defaults")
	assert.Equal(t, 16, c.Binding.MaxDepth)
	assert.Equal(t, "http://xmlns.com/foaf/0.1/", c.Namespaces["foaf"])

	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, level)
}

func TestLoadEmptyPath(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"unknown key":       "[binding]\nstrict = true\n",
		"negative depth":    "[binding]\nmax-depth = -1\n",
		"relative ns":       "[namespaces]\nex = \"relative/ns#\"\n",
		"bad prefix":        "[namespaces]\n\"a:b\" = \"http://example.org/\"\n",
		"bad level":         "[log]\nlevel = \"loud\"\n",
		"bad skolem prefix": "[skolem]\nprefix = \"skolem\"\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(text)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Parse("[binding\n")
	require.Error(t, err)
}

func TestOptionsDriveTheEngine(t *testing.T) {
	c, err := Parse(`
[binding]
allow-relative-uris = true

[namespaces]
ov = "http://other.example/vocab#"
`)
	require.NoError(t, err)

	a := resource.NewAny("people/1")
	a.Set(resource.QName{Namespace: "http://other.example/vocab#", Local: "nick"}, "pp")

	m := bind.NewMarshaller(memgraph.New(), shape.NewRegistry(), c.Options(log.New(io.Discard))...)
	g, err := m.Marshal([]any{a}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, "http://other.example/vocab#", g.Prefixes()["ov"])

	strict := bind.NewMarshaller(memgraph.New(), shape.NewRegistry(), Default().Options(nil)...)
	_, err = strict.Marshal([]any{a}, nil)
	require.ErrorIs(t, err, bind.ErrRelativeURI)
}
