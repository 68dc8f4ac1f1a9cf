package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator hands out the same request ID every time.
//
// Scenarios set it in YAML so golden journal dumps stay byte-identical:
//
//	request_id: "req-0001"
//
// An empty ID becomes "test-request".
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator returns a generator for id.
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-request"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed ID.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}

// SequentialLabels returns a generator yielding prefix1, prefix2, ... It
// replaces random blank-node prefixes in loader tests.
func SequentialLabels(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

// KeyedLabels is SequentialLabels memoized by key: the first distinct key
// gets prefix1, the next prefix2, and a repeated key gets its earlier label.
// It stands in for the loader's name-based blank-node prefixes.
func KeyedLabels(prefix string) func(key string) string {
	var (
		mu     sync.Mutex
		labels = map[string]string{}
	)
	return func(key string) string {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := labels[key]; ok {
			return l
		}
		l := fmt.Sprintf("%s%d", prefix, len(labels)+1)
		labels[key] = l
		return l
	}
}
