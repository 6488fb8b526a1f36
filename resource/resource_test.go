package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtendedAddMergesIntoCollection(t *testing.T) {
	var e Extended
	q := QName{Namespace: "http://example.org/", Local: "tag", Prefix: "ex"}
	e.Add(q, "a")
	v, ok := e.Get(q)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	e.Add(q, "b")
	e.Add(QName{Namespace: "http://example.org/", Local: "tag"}, "c")
	v, _ = e.Get(q)
	assert.Equal(t, []any{"a", "b", "c"}, v)
	assert.Equal(t, 1, e.Len())
}

func TestExtendedKeepsOrder(t *testing.T) {
	var e Extended
	names := []string{"z", "a", "m"}
	for _, n := range names {
		e.Set(QName{Namespace: "http://x/", Local: n}, n)
	}
	var got []string
	e.Range(func(q QName, v any) bool {
		got = append(got, q.Local)
		return true
	})
	assert.Equal(t, names, got)

	e.Delete(QName{Namespace: "http://x/", Local: "a"})
	assert.Equal(t, 2, e.Len())
	_, ok := e.Get(QName{Namespace: "http://x/", Local: "a"})
	assert.False(t, ok)
}

func TestExtendedTypes(t *testing.T) {
	var e Extended
	assert.True(t, e.IsEmpty())
	e.AddType("http://x/A")
	e.AddType("http://x/A")
	e.AddType("http://x/B")
	assert.Equal(t, []URI{"http://x/A", "http://x/B"}, e.Types())
	assert.True(t, e.HasType("http://x/B"))
	e.SetTypes(nil)
	assert.Empty(t, e.Types())
}

func TestQName(t *testing.T) {
	q := NewQName("http://example.org/ns#name")
	assert.Equal(t, "http://example.org/ns#", q.Namespace)
	assert.Equal(t, "name", q.Local)
	assert.Equal(t, "<http://example.org/ns#name>", q.String())
	q.Prefix = "ex"
	assert.Equal(t, "ex:name", q.String())
}

func TestBaseCapabilities(t *testing.T) {
	a := NewAny("http://example.org/a", "http://example.org/T")
	var id Identifiable = a
	assert.Equal(t, URI("http://example.org/a"), id.ResourceURI())
	id.SetResourceURI("http://example.org/b")
	assert.Equal(t, URI("http://example.org/b"), a.About)
	var ext Extensible = a
	assert.True(t, ext.Extensions().HasType("http://example.org/T"))
	assert.True(t, URI("urn:x:y").IsAbsolute())
	assert.False(t, URI("rel/path").IsAbsolute())
}
