package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindingExtendIsCopyOnWrite(t *testing.T) {
	b := NewBinding(map[Variable]Term{"x": IRI("http://ex/a")})
	b2 := b.Extend("y", NewInteger(1))

	_, ok := b.Get("y")
	assert.False(t, ok, "original binding must not change")

	y, ok := b2.Get("y")
	require.True(t, ok)
	assert.Equal(t, Term(NewInteger(1)), y)
	assert.Equal(t, 2, b2.Len())
}

func TestBindingDropsNonGroundValues(t *testing.T) {
	b := NewBinding(map[Variable]Term{"x": Variable("y"), "z": nil, "w": NewLiteral("ok")})
	assert.Equal(t, []Variable{"w"}, b.Vars())

	assert.True(t, b.Extend("v", Variable("q")).Equal(b))
}

func TestBindingCompatibleAndMerge(t *testing.T) {
	a := NewBinding(map[Variable]Term{"x": IRI("http://ex/a"), "y": NewInteger(1)})
	b := NewBinding(map[Variable]Term{"x": IRI("http://ex/a"), "z": NewInteger(2)})
	c := NewBinding(map[Variable]Term{"x": IRI("http://ex/b")})

	assert.True(t, a.Compatible(b))
	assert.False(t, a.Compatible(c))
	assert.True(t, a.Compatible(EmptyBinding))

	m := a.Merge(b)
	assert.Equal(t, []Variable{"x", "y", "z"}, m.Vars())
	assert.Equal(t, `{?x=<http://ex/a> ?y="1"^^<http://www.w3.org/2001/XMLSchema#integer> ?z="2"^^<http://www.w3.org/2001/XMLSchema#integer>}`, m.String())
}

func TestBindingSubstitute(t *testing.T) {
	b := NewBinding(map[Variable]Term{"x": IRI("http://ex/a")})

	got, ok := b.Substitute(Variable("x"))
	require.True(t, ok)
	assert.Equal(t, Term(IRI("http://ex/a")), got)

	_, ok = b.Substitute(Variable("missing"))
	assert.False(t, ok)

	got, ok = b.Substitute(NewLiteral("const"))
	require.True(t, ok)
	assert.Equal(t, Term(NewLiteral("const")), got)
}

func TestBindingProject(t *testing.T) {
	b := NewBinding(map[Variable]Term{"x": IRI("http://ex/a"), "y": NewInteger(1)})
	assert.Equal(t, []Variable{"y"}, b.Project([]Variable{"y", "nope"}).Vars())
}
