package storage

import (
	"sync"
	"testing"
)

// TestScopeExclusivityPerGoroutine covers invariant I1: each goroutine sees
// only its own memory scope, never another goroutine's.
func TestScopeExclusivityPerGoroutine(t *testing.T) {
	r := newScopeRegistry()
	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			r.begin(scopeMemory)
			id := testID(byte(i), RAW)
			mem := r.get(scopeMemory)
			if mem == nil {
				t.Errorf("goroutine %d: expected its own memory scope", i)
				return
			}
			mem.set(id, State{byte(i)})

			// Re-fetch and confirm only our own write is visible.
			mem2 := r.get(scopeMemory)
			st, found := mem2.get(id)
			if !found || !st.Equal(State{byte(i)}) {
				t.Errorf("goroutine %d: expected to see its own staged write", i)
			}
			r.release(scopeMemory)
		}()
	}
	wg.Wait()
}

// TestMemoryBeginDropsPriorMinerScope covers the spec §9 decision to keep
// MemoryBegin(MINER) as a silent discard rather than a nested-scope error.
func TestMemoryBeginDropsPriorMinerScope(t *testing.T) {
	r := newScopeRegistry()
	r.begin(scopeMiner)
	first := r.get(scopeMiner)
	first.set(testID(0x01, RAW), State("first"))

	r.begin(scopeMiner)
	second := r.get(scopeMiner)
	if second == first {
		t.Fatalf("expected a fresh overlay after a second begin")
	}
	if second.has(testID(0x01, RAW)) {
		t.Fatalf("expected the prior miner overlay's writes to be discarded")
	}
}

// TestCrossGoroutineInvisibilityUntilCommit covers invariant P2: writes
// staged in one goroutine's memory scope are invisible to the shared
// commit overlay until MemoryCommit runs.
func TestCrossGoroutineInvisibilityUntilCommit(t *testing.T) {
	s, _ := buildStore(t)
	id := testID(0x09, NAMESPACE)

	started := make(chan struct{})
	proceed := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		s.MemoryBegin(MEMPOOL)
		if err := s.WriteState(id, State("staged"), MEMPOOL); err != nil {
			t.Errorf("WriteState: %v", err)
		}
		close(started)
		<-proceed
		s.MemoryCommit()
	}()

	<-started
	if s.commit.has(id) {
		t.Fatalf("commit overlay must not see an uncommitted memory scope's write")
	}
	close(proceed)
	<-done

	st, found := s.commit.get(id)
	if !found || !st.Equal(State("staged")) {
		t.Fatalf("expected commit to hold the staged write after MemoryCommit")
	}
}
