package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, request, scenario string) *Scenario {
	t.Helper()
	s, err := LoadScenario(writeScenario(t, request, scenario))
	require.NoError(t, err)
	return s
}

func TestRun_Passes(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/counter_bind_once.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "req-0001", result.RequestID)
	assert.Equal(t, "completed", result.State)
	assert.Len(t, result.Ops, 2)
	assert.Len(t, result.Dataset, 4)
}

func TestRun_DefaultRequestID(t *testing.T) {
	s := loadTestScenario(t, minimalRequest, `
name: n
description: d
request: request.cue
expect: [{kind: insertData, inserted: 1}]
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "test-request", result.RequestID)
	assert.Nil(t, result.Solutions)
}

func TestRun_ExpectMismatch(t *testing.T) {
	s := loadTestScenario(t, minimalRequest, `
name: n
description: d
request: request.cue
expect:
  - kind: insertData
    inserted: 2
    deleted: 0
  - kind: modify
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"expect[0]: inserted 2, got 1",
		"expect[1]: only 1 operations committed",
	}, result.Errors)
}

func TestRun_KindMismatch(t *testing.T) {
	s := loadTestScenario(t, minimalRequest, `
name: n
description: d
request: request.cue
expect: [{kind: deleteData}]
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"expect[0]: kind deleteData, got insertData"}, result.Errors)
}

func TestRun_UnexpectedFailure(t *testing.T) {
	s := loadTestScenario(t, `operations: [{create: {graph: "urn:g"}}, {create: {graph: "urn:g"}}]`, `
name: n
description: d
request: request.cue
expect: [{kind: create}]
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, "failed", result.State)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "request failed: operation 1: GraphExists <urn:g>")
	assert.Equal(t, "operation 1: GraphExists <urn:g>: graph already exists", result.Failure)
}

func TestRun_FailureExpectations(t *testing.T) {
	request := `operations: [{create: {graph: "urn:g"}}, {create: {graph: "urn:g"}}]`
	tests := []struct {
		name    string
		failure string
		errors  []string
	}{
		{
			name:    "matches",
			failure: "{kind: GraphExists, operation: 1}",
		},
		{
			name:    "wrong kind",
			failure: "{kind: GraphNotFound, operation: 1}",
			errors:  []string{"expected failure GraphNotFound at operation 1, got GraphExists at operation 1"},
		},
		{
			name:    "wrong index",
			failure: "{kind: GraphExists, operation: 0}",
			errors:  []string{"expected failure GraphExists at operation 0, got GraphExists at operation 1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loadTestScenario(t, request, "name: n\ndescription: d\nrequest: request.cue\nfailure: "+tt.failure+"\n")
			result, err := Run(s)
			require.NoError(t, err)
			if tt.errors == nil {
				assert.True(t, result.Pass, "errors: %v", result.Errors)
				return
			}
			assert.Equal(t, tt.errors, result.Errors)
		})
	}
}

func TestRun_ExpectedFailureMissing(t *testing.T) {
	s := loadTestScenario(t, minimalRequest, `
name: n
description: d
request: request.cue
failure: {kind: GraphExists, operation: 0}
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"expected failure GraphExists at operation 0, request completed"}, result.Errors)
}

func TestRun_BestEffortLoad(t *testing.T) {
	request := `operations: [{load: "urn:missing"}, {insertData: [["urn:a", "urn:p", "urn:o"]]}]`

	strict := loadTestScenario(t, request, `
name: strict
description: d
request: request.cue
failure: {kind: SourceUnavailable, operation: 0}
`)
	result, err := Run(strict)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Dataset)

	lenient := loadTestScenario(t, request, `
name: lenient
description: d
request: request.cue
best_effort_load: true
expect:
  - {kind: load, downgraded: true}
  - {kind: insertData, inserted: 1}
`)
	result, err = Run(lenient)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_InlineData(t *testing.T) {
	s := loadTestScenario(t, `operations: [{load: {source: "urn:doc", into: "urn:g"}}]`, `
name: n
description: d
request: request.cue
data:
  - iri: urn:doc
    media_type: application/n-triples
    body: |
      <urn:x> <urn:y> "z" .
assertions:
  - type: quad_present
    quad: ["urn:x", "urn:y", '"z"', "urn:g"]
  - type: graph_size
    graph: urn:g
    count: 1
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{`<urn:x> <urn:y> "z" <urn:g> .`}, result.Dataset)
}

func TestRun_CompileError(t *testing.T) {
	s := loadTestScenario(t, `operations: [{upsert: {}}]`, "name: n\ndescription: d\nrequest: request.cue\nfailure: {kind: X}\n")
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile request")
}

func TestRun_MissingDataFile(t *testing.T) {
	s := loadTestScenario(t, minimalRequest, `
name: n
description: d
request: request.cue
data: [{iri: "urn:d", file: absent.nq}]
failure: {kind: X}
`)
	_, err := RunWithOptions(context.Background(), s, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read data file for urn:d")
}
