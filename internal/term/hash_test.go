package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{
		"b":    1,
		"a":    []any{"x<y", true},
		"term": IRI("http://ex/a"),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":["x<y",true],"b":1,"term":"<http://ex/a>"}`, string(out))

	_, err = MarshalCanonical(map[string]any{"f": 1.5})
	assert.Error(t, err, "floats are rejected")

	_, err = MarshalCanonical(nil)
	assert.Error(t, err)
}

func TestMarshalCanonicalEscapesControlsOnly(t *testing.T) {
	out, err := MarshalCanonical("tab\there \"q\"  ")
	require.NoError(t, err)
	assert.Equal(t, "\"tab\\there \\\"q\\\"  \"", string(out))
}

func TestBindingHashIsOrderIndependent(t *testing.T) {
	a := NewBinding(map[Variable]Term{"x": IRI("http://ex/a"), "y": NewInteger(1)})
	b := EmptyBinding.Extend("y", NewInteger(1)).Extend("x", IRI("http://ex/a"))

	assert.Equal(t, MustBindingHash(a), MustBindingHash(b))
	assert.Len(t, MustBindingHash(a), 64, "SHA-256 hex is 64 characters")
	assert.NotEqual(t, MustBindingHash(a), MustBindingHash(EmptyBinding))
}

func TestDeltaHashIgnoresOrderAndDuplicates(t *testing.T) {
	q1 := NewQuad(IRI("http://ex/s"), IRI("http://ex/p"), NewInteger(1), DefaultContext)
	q2 := NewQuad(IRI("http://ex/s"), IRI("http://ex/p"), NewInteger(2), DefaultContext)

	h1 := MustDeltaHash([]Quad{q1, q2}, nil)
	h2 := MustDeltaHash([]Quad{q2, q1, q1}, nil)
	h3 := MustDeltaHash(nil, []Quad{q1, q2})

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3, "delete and insert sides are distinct")
}
