package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const peopleNQ = `<http://example.org/alice> <http://example.org/age> "30"^^<http://www.w3.org/2001/XMLSchema#integer> .
<http://example.org/bob> <http://example.org/age> "41"^^<http://www.w3.org/2001/XMLSchema#integer> .
`

// birthdayRequest adds one year to every age in the default graph.
const birthdayRequest = `base: "http://example.org/"
prefixes: ex: "http://example.org/"

operations: [
	{modify: {
		delete: [["?s", "ex:age", "?a"]]
		insert: [["?s", "ex:age", "?b"]]
		where: {group: [
			{bgp: [["?s", "ex:age", "?a"]]},
			{bind: {expr: {call: "+", args: ["?a", 1]}, as: "?b"}},
		]}
	}},
]

query: {
	select: ["?s", "?b"]
	where: {bgp: [["?s", "ex:age", "?b"]]}
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command from an empty working directory so no
// stray rdfup.yaml is picked up.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Chdir(t.TempDir())

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}
