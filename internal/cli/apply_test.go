package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice31 = `<http://example.org/alice> <http://example.org/age> "31"^^<http://www.w3.org/2001/XMLSchema#integer> .`
	bob42   = `<http://example.org/bob> <http://example.org/age> "42"^^<http://www.w3.org/2001/XMLSchema#integer> .`
	alice30 = `<http://example.org/alice> <http://example.org/age> "30"^^<http://www.w3.org/2001/XMLSchema#integer> .`
)

func TestApply_PrintsDataset(t *testing.T) {
	dir := t.TempDir()
	req := writeFile(t, dir, "req.cue", birthdayRequest)
	data := writeFile(t, dir, "people.nq", peopleNQ)

	out, stderr, err := execute(t, "apply", req, "--data", data)
	require.NoError(t, err)

	assert.Contains(t, out, alice31)
	assert.Contains(t, out, bob42)
	assert.NotContains(t, out, alice30)
	assert.Contains(t, stderr, "completed: 1 operation(s), deleted=2 inserted=2 skipped=0")
}

func TestApply_OutFile(t *testing.T) {
	dir := t.TempDir()
	req := writeFile(t, dir, "req.cue", birthdayRequest)
	data := writeFile(t, dir, "people.nq", peopleNQ)
	outPath := filepath.Join(dir, "result.nq")

	out, _, err := execute(t, "apply", req, "--data", data, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 quad(s)")

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), alice31)
	assert.Contains(t, string(written), bob42)
}

func TestApply_JSON(t *testing.T) {
	dir := t.TempDir()
	req := writeFile(t, dir, "req.cue", birthdayRequest)
	data := writeFile(t, dir, "people.nq", peopleNQ)

	out, _, err := execute(t, "--format", "json", "apply", req, "--data", data)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   ApplyResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "completed", resp.Data.State)
	assert.NotEmpty(t, resp.Data.RequestID)
	assert.Equal(t, 2, resp.Data.Deleted)
	assert.Equal(t, 2, resp.Data.Inserted)
	assert.Equal(t, 2, resp.Data.Quads)
	require.Len(t, resp.Data.Operations, 1)
	assert.Equal(t, OperationSummary{Index: 0, Kind: "modify", Solutions: 2, Deleted: 2, Inserted: 2}, resp.Data.Operations[0])
	assert.Contains(t, resp.Data.NQuads, alice31)
}

func TestApply_OperationFailure(t *testing.T) {
	dir := t.TempDir()
	req := writeFile(t, dir, "req.cue", `base: "http://example.org/"
prefixes: ex: "http://example.org/"
operations: [
	{insertData: [["ex:a", "ex:p", "ex:b"]]},
	{drop: {graph: "ex:missing"}},
]
`)

	out, _, err := execute(t, "apply", req)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]: operation 1: GraphNotFound <http://example.org/missing>")
}

func TestApply_OperationFailureJSON(t *testing.T) {
	dir := t.TempDir()
	req := writeFile(t, dir, "req.cue", `operations: [
	{create: {graph: "http://example.org/g"}},
	{create: {graph: "http://example.org/g"}},
]
`)

	out, _, err := execute(t, "--format", "json", "apply", req)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUpdate, resp.Error.Code)
	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "GraphExists", details["kind"])
	assert.Equal(t, float64(1), details["operation"])
	assert.Equal(t, float64(1), details["committed"])
}

func TestApply_MissingRequest(t *testing.T) {
	_, _, err := execute(t, "apply", "/nonexistent/req.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}

func TestApply_CompileError(t *testing.T) {
	dir := t.TempDir()
	req := writeFile(t, dir, "req.cue", `operations: [{frobnicate: {}}]`)

	out, _, err := execute(t, "apply", req)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E001]")
}

func TestApply_BadDataFile(t *testing.T) {
	dir := t.TempDir()
	req := writeFile(t, dir, "req.cue", birthdayRequest)

	out, _, err := execute(t, "apply", req, "--data", filepath.Join(dir, "absent.nq"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestApply_LoadFromRequest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "people.nq", peopleNQ)
	base := "file://" + filepath.ToSlash(dir) + "/"
	req := writeFile(t, dir, "req.cue", `base: "`+base+`"
operations: [
	{load: {source: "people.nq", into: "http://example.org/people"}},
]
`)

	out, _, err := execute(t, "apply", req)
	require.NoError(t, err)
	assert.Contains(t, out, `<http://example.org/alice> <http://example.org/age> "30"^^<http://www.w3.org/2001/XMLSchema#integer> <http://example.org/people> .`)
}

func TestApply_BestEffortLoad(t *testing.T) {
	dir := t.TempDir()
	req := writeFile(t, dir, "req.cue", `operations: [
	{load: {source: "file:///nonexistent/data.nq"}},
	{insertData: [["http://example.org/a", "http://example.org/p", "http://example.org/b"]]},
]
`)

	_, _, err := execute(t, "apply", req)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, _, err := execute(t, "apply", req, "--best-effort")
	require.NoError(t, err)
	assert.Contains(t, out, "<http://example.org/a> <http://example.org/p> <http://example.org/b> .")
}
