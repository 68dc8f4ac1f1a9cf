package testutil_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rdfup/internal/journal"
	"github.com/roach88/rdfup/internal/store"
	"github.com/roach88/rdfup/internal/term"
	"github.com/roach88/rdfup/internal/testutil"
	"github.com/roach88/rdfup/internal/update"
)

var _ update.Sequencer = (*testutil.DeterministicClock)(nil)

// seqJournal keeps the sequence numbers the executor journals.
type seqJournal struct {
	mu       sync.Mutex
	requests []int64
	ops      []int64
}

func (j *seqJournal) WriteRequest(_ context.Context, r journal.Request) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.requests = append(j.requests, r.Seq)
	return nil
}

func (j *seqJournal) WriteOperation(_ context.Context, op journal.Operation) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ops = append(j.ops, op.Seq)
	return nil
}

func twoOps() update.Request {
	const ex = "http://example.org/"
	return update.Request{Operations: []update.Operation{
		update.InsertData{Quads: []term.Quad{
			term.NewQuad(term.IRI(ex+"a"), term.IRI(ex+"p"), term.IRI(ex+"b"), term.DefaultContext),
		}},
		update.Create{Graph: term.IRI(ex + "g")},
	}}
}

// journalSeqs applies twoOps on a fresh store and returns the journaled
// operation and request sequence numbers.
func journalSeqs(t *testing.T, clock *testutil.DeterministicClock) ([]int64, []int64) {
	t.Helper()
	j := &seqJournal{}
	e := update.New(store.New(), nil,
		update.WithLogger(testutil.DiscardLogger()),
		update.WithClock(clock),
		update.WithJournal(j),
	)
	_, err := e.Apply(context.Background(), twoOps())
	require.NoError(t, err)
	return j.ops, j.requests
}

func TestDeterministicClock_JournalSequences(t *testing.T) {
	clock := testutil.NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Current())

	ops, reqs := journalSeqs(t, clock)
	require.Len(t, ops, 2)
	require.Len(t, reqs, 1)
	assert.Equal(t, []int64{1, 2}, ops)
	assert.Greater(t, reqs[0], ops[1], "request row is sequenced after its operations")
	assert.Equal(t, reqs[0], clock.Current())
}

func TestDeterministicClock_ResetReplaysSequences(t *testing.T) {
	clock := testutil.NewDeterministicClock()
	firstOps, firstReqs := journalSeqs(t, clock)

	clock.Reset()
	assert.Equal(t, int64(0), clock.Current())
	againOps, againReqs := journalSeqs(t, clock)

	assert.Equal(t, firstOps, againOps)
	assert.Equal(t, firstReqs, againReqs)

	// Without a reset the sequence keeps climbing.
	moreOps, _ := journalSeqs(t, clock)
	assert.Greater(t, moreOps[0], againReqs[0])
}

func TestDeterministicClock_ConcurrentNextIsGapless(t *testing.T) {
	clock := testutil.NewDeterministicClock()
	const workers, perWorker = 8, 250

	seen := make(chan int64, workers*perWorker)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				seen <- clock.Next()
			}
		}()
	}
	wg.Wait()
	close(seen)

	got := make(map[int64]bool, workers*perWorker)
	for s := range seen {
		require.False(t, got[s], "duplicate sequence %d", s)
		got[s] = true
	}
	for s := int64(1); s <= workers*perWorker; s++ {
		assert.True(t, got[s], "missing sequence %d", s)
	}
	assert.Equal(t, int64(workers*perWorker), clock.Current())
}
