package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one end-to-end update run.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Request is the path of the CUE request document. Relative paths are
	// resolved against the scenario's base path.
	Request string `yaml:"request"`

	// Data lists the documents LOAD may fetch. Anything not listed is
	// unavailable.
	Data []DataDoc `yaml:"data,omitempty"`

	// RequestID pins the request ID. Empty means "test-request".
	RequestID string `yaml:"request_id,omitempty"`

	// BestEffortLoad turns LOAD fetch and decode failures into no-ops.
	BestEffortLoad bool `yaml:"best_effort_load,omitempty"`

	// Expect checks committed operations in order. Entries may be fewer
	// than the operations; the rest are unchecked.
	Expect []OpExpect `yaml:"expect,omitempty"`

	// Failure, when set, requires the request to stop with this error.
	// When nil, the request must complete.
	Failure *FailureExpect `yaml:"failure,omitempty"`

	// Assertions validate the final dataset and query rows.
	Assertions []Assertion `yaml:"assertions"`
}

// DataDoc is a document served to LOAD at IRI. Exactly one of Body and
// File is set; File is resolved like Request.
type DataDoc struct {
	IRI       string `yaml:"iri"`
	MediaType string `yaml:"media_type,omitempty"`
	Body      string `yaml:"body,omitempty"`
	File      string `yaml:"file,omitempty"`
}

// OpExpect checks one committed operation. Nil counters are not checked.
type OpExpect struct {
	Kind       string `yaml:"kind"`
	Solutions  *int   `yaml:"solutions,omitempty"`
	Deleted    *int   `yaml:"deleted,omitempty"`
	Inserted   *int   `yaml:"inserted,omitempty"`
	Skipped    *int   `yaml:"skipped,omitempty"`
	Downgraded bool   `yaml:"downgraded,omitempty"`
}

// FailureExpect names the error kind and failing operation index.
type FailureExpect struct {
	Kind      string `yaml:"kind"`
	Operation int    `yaml:"operation"`
}

// Assertion validates the final dataset.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Quad is [s, p, o] or [s, p, o, g] (quad_present, quad_absent).
	Quad []any `yaml:"quad,omitempty"`

	// Graph is "default" or a graph name (graph_size, graph_exists).
	Graph string `yaml:"graph,omitempty"`

	// Count is the expected number of quads (graph_size).
	Count int `yaml:"count,omitempty"`

	// Rows are the expected query rows in Binding form (query_rows).
	Rows []string `yaml:"rows,omitempty"`
}

// Assertion type constants.
const (
	AssertQuadPresent = "quad_present"
	AssertQuadAbsent  = "quad_absent"
	AssertGraphSize   = "graph_size"
	AssertGraphExists = "graph_exists"
	AssertQueryRows   = "query_rows"
)

// LoadScenario reads a scenario file and resolves its paths against the
// file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads a scenario file, resolving relative
// request and data paths against basePath. Unknown fields are rejected.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	scenario.Request = resolvePath(basePath, scenario.Request)
	for i := range scenario.Data {
		scenario.Data[i].File = resolvePath(basePath, scenario.Data[i].File)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Request == "" {
		return fmt.Errorf("request is required")
	}
	if _, err := os.Stat(s.Request); os.IsNotExist(err) {
		return fmt.Errorf("request file not found: %s", s.Request)
	}
	if len(s.Assertions) == 0 && len(s.Expect) == 0 && s.Failure == nil {
		return fmt.Errorf("scenario checks nothing: add assertions, expect or failure")
	}

	seen := make(map[string]bool, len(s.Data))
	for i, d := range s.Data {
		if d.IRI == "" {
			return fmt.Errorf("data[%d]: iri is required", i)
		}
		if seen[d.IRI] {
			return fmt.Errorf("data[%d]: duplicate iri %s", i, d.IRI)
		}
		seen[d.IRI] = true
		if (d.Body == "") == (d.File == "") {
			return fmt.Errorf("data[%d]: exactly one of body and file is required", i)
		}
	}

	for i, e := range s.Expect {
		if e.Kind == "" {
			return fmt.Errorf("expect[%d]: kind is required", i)
		}
	}
	if s.Failure != nil && s.Failure.Kind == "" {
		return fmt.Errorf("failure: kind is required")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertQuadPresent, AssertQuadAbsent:
		if len(a.Quad) < 3 || len(a.Quad) > 4 {
			return fmt.Errorf("assertions[%d]: %s needs a quad of 3 or 4 terms, got %d", index, a.Type, len(a.Quad))
		}
	case AssertGraphSize:
		if a.Graph == "" {
			return fmt.Errorf("assertions[%d]: graph_size requires graph", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must not be negative", index)
		}
	case AssertGraphExists:
		if a.Graph == "" || a.Graph == "default" {
			return fmt.Errorf("assertions[%d]: graph_exists requires a named graph", index)
		}
	case AssertQueryRows:
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}
