package bind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionChild(t *testing.T) {
	var none *Selection
	next, onlyNested, ok := none.child(ex + "name")
	assert.Nil(t, next)
	assert.False(t, onlyNested)
	assert.True(t, ok)

	name := ex + "name"
	sel := Select(name).With(ex+"friend", nil)
	next, _, ok = sel.child(ex + "friend")
	assert.True(t, ok)
	assert.True(t, next.IsSingleton())
	_, _, ok = sel.child(ex + "age")
	assert.False(t, ok)

	nested := &Selection{Nested: Select(name)}
	next, onlyNested, ok = nested.child(ex + "age")
	assert.True(t, ok)
	assert.True(t, onlyNested)
	assert.Same(t, nested.Nested, next)

	nested.All = true
	_, onlyNested, _ = nested.child(ex + "age")
	assert.False(t, onlyNested)

	assert.True(t, none.allowsType(ex+"T"))
	assert.False(t, sel.allowsType(ex+"T"))
	assert.True(t, Select(ex+"T").allowsType(ex+"T"))
}
