package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_CleanDocument(t *testing.T) {
	doc := compileString(t, counterRequest)
	assert.Empty(t, Validate(doc))
}

func TestValidate_UnboundTemplateVariable(t *testing.T) {
	doc := compileString(t, `
prefixes: ex: "http://example.org/"
operations: [{modify: {
	delete: [["?s", "ex:p", "?o"]]
	insert: [["?s", "ex:q", "?typo", "?g"]]
	where: {bgp: [["?s", "ex:p", "?o"]]}
}}]
`)
	errs := Validate(doc)
	require.Len(t, errs, 2)
	assert.Equal(t, ValidationError{
		Field:   "operations[0].modify.insert[0]",
		Message: "?typo is never bound by where; every instantiation is skipped",
		Code:    ErrUnboundTemplateVar,
	}, errs[0])
	assert.Equal(t, "operations[0].modify.insert[0]", errs[1].Field)
	assert.Contains(t, errs[1].Message, "?g")
}

func TestValidate_Findings(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		codes []string
	}{
		{
			name:  "relative load without base",
			src:   `operations: [{load: "data.nt"}]`,
			codes: []string{ErrRelativeLoad},
		},
		{
			name:  "relative load with base",
			src:   `base: "file:///data/", operations: [{load: "data.nt"}]`,
			codes: []string{},
		},
		{
			name:  "absolute load without base",
			src:   `operations: [{load: "https://example.org/data.ttl"}]`,
			codes: []string{},
		},
		{
			name: "select variable out of scope",
			src: `query: {
	select: ["?s", "?missing"]
	where: {bgp: [["?s", "urn:p", "?o"]]}
}`,
			codes: []string{ErrUnknownSelectVar},
		},
		{
			name: "using named only",
			src: `operations: [{modify: {
	insert: [["?s", "urn:seen", true]]
	usingNamed: ["urn:g"]
	where: {graph: {name: "urn:g", where: {bgp: [["?s", "?p", "?o"]]}}}
}}]`,
			codes: []string{ErrUsingNamedOnly},
		},
		{
			name: "duplicate create",
			src: `operations: [
	{create: {graph: "urn:g"}},
	{create: {graph: "urn:g"}},
	{create: {graph: "urn:g", silent: true}},
]`,
			codes: []string{ErrDuplicateCreate},
		},
		{
			name: "every finding is reported",
			src: `operations: [
	{load: "a.nt"},
	{load: "b.nt"},
	{deleteWhere: [["?s", "urn:p", "?o"]]},
]`,
			codes: []string{ErrRelativeLoad, ErrRelativeLoad},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := compileString(t, tt.src)
			assert.Equal(t, tt.codes, codes(Validate(doc)))
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Field: "operations[1].load.source", Message: "bad", Code: ErrRelativeLoad}
	assert.Equal(t, "[E202] operations[1].load.source: bad", e.Error())
}
