package harness

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		s, err := LoadScenario(file)
		require.NoError(t, err)

		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRunWithGolden_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/fresh_blank_nodes.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, first.Snapshot(s.Name), second.Snapshot(s.Name))
}

func TestSnapshot(t *testing.T) {
	r := NewResult()
	r.RequestID = "req"
	r.State = "failed"
	r.Failure = "operation 1: GraphExists <urn:g>: graph already exists"
	r.Ops = []OpSummary{
		{Index: 0, Kind: "load", Downgraded: true},
		{Index: 1, Kind: "insertData", Inserted: 2},
	}
	r.Dataset = []string{"<urn:a> <urn:b> <urn:c> ."}
	r.AddError("ignored in snapshots")

	assert.Equal(t, `scenario: s
request: req
state: failed
failure: operation 1: GraphExists <urn:g>: graph already exists
ops:
  0 load solutions=0 deleted=0 inserted=0 skipped=0 downgraded
  1 insertData solutions=0 deleted=0 inserted=2 skipped=0
dataset:
  <urn:a> <urn:b> <urn:c> .
`, string(r.Snapshot("s")))

	r.Solutions = []string{}
	assert.Contains(t, string(r.Snapshot("s")), "query:\n")
}

func TestGoldenFiles(t *testing.T) {
	dir := t.TempDir()
	path := GoldenPath(filepath.Join(dir, "scenarios", "a.yaml"), "alpha")
	assert.Equal(t, filepath.Join(dir, "scenarios", "golden", "alpha.golden"), path)

	_, err := CompareGolden(path, []byte("x"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, WriteGolden(path, []byte("snapshot\n")))

	match, err := CompareGolden(path, []byte("snapshot\n"))
	require.NoError(t, err)
	assert.True(t, match)

	match, err = CompareGolden(path, []byte("other\n"))
	require.NoError(t, err)
	assert.False(t, match)
}
