package journal

import (
	"path/filepath"
	"testing"
)

// createTestJournal opens a journal in a fresh temporary directory.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func createTestRequest(id string, seq int64) Request {
	return Request{
		ID:      id,
		Seq:     seq,
		Base:    "http://example.org/",
		State:   "completed",
		OpCount: 1,
	}
}

func createTestOperation(requestID string, index int, seq int64) Operation {
	return Operation{
		RequestID: requestID,
		Index:     index,
		Seq:       seq,
		Kind:      "insertData",
		Detail:    "INSERT DATA (1 quads)",
		Inserted:  1,
		DeltaHash: "delta-test",
	}
}
