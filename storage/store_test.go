package storage

import (
	"sync"
	"testing"
)

func buildStore(t *testing.T) (*RegisterStore, *FileBackend) {
	t.Helper()
	backend := NewFileBackend(t.TempDir())
	cfg := Config{Flags: byte(MEMPOOL), Buckets: 16}
	return NewRegisterStore(backend, cfg, nil), backend
}

func testID(b byte, addr AddressType) RegisterID {
	var id RegisterID
	id[0] = b
	id[31] = byte(addr)
	return id
}

// TestSimplePersist covers spec §8 scenario 1: a BLOCK write lands in the
// backend and is no longer staged in commit.
func TestSimplePersist(t *testing.T) {
	s, _ := buildStore(t)
	id := testID(0xAA, OBJECT)

	if err := s.WriteState(id, State("S1"), BLOCK); err != nil {
		t.Fatalf("WriteState: %v", err)
	}
	if s.commit.has(id) {
		t.Fatalf("commit overlay should not retain id after BLOCK write")
	}
	got, err := s.ReadState(id, BLOCK)
	if err != nil {
		t.Fatalf("ReadState: %v", err)
	}
	if !got.Equal(State("S1")) {
		t.Fatalf("expected S1, got %q", got)
	}
}

// TestMempoolLayering covers spec §8 scenario 2: MEMPOOL writes with no
// open memory scope land directly in commit, and the latest write wins.
func TestMempoolLayering(t *testing.T) {
	s, backend := buildStore(t)
	id := testID(0x02, RAW)

	if err := s.WriteState(id, State("A"), MEMPOOL); err != nil {
		t.Fatalf("WriteState A: %v", err)
	}
	if err := s.WriteState(id, State("B"), MEMPOOL); err != nil {
		t.Fatalf("WriteState B: %v", err)
	}

	got, err := s.ReadState(id, MEMPOOL)
	if err != nil {
		t.Fatalf("ReadState: %v", err)
	}
	if !got.Equal(State("B")) {
		t.Fatalf("expected B, got %q", got)
	}
	if backend.Exists(stateKey(id)) {
		t.Fatalf("backend should have no entry for a MEMPOOL-only write")
	}
}

// TestBlockFlushesCommit covers spec §8 scenario 3.
func TestBlockFlushesCommit(t *testing.T) {
	s, backend := buildStore(t)
	id := testID(0x03, TOKEN)

	if err := s.WriteState(id, State("C"), MEMPOOL); err != nil {
		t.Fatalf("WriteState: %v", err)
	}
	if !s.commit.has(id) {
		t.Fatalf("expected commit to hold id before BLOCK write")
	}
	if err := s.WriteState(id, State("C"), BLOCK); err != nil {
		t.Fatalf("WriteState BLOCK: %v", err)
	}
	if s.commit.has(id) {
		t.Fatalf("commit should no longer hold id after matching BLOCK write")
	}
	if !backend.Exists(stateKey(id)) {
		t.Fatalf("expected backend to hold id after BLOCK write")
	}
}

// TestConflictOnCommit covers spec §8 scenario 4 / invariant P6: a memory
// scope's erasure witness disagreeing with a concurrently updated commit
// value is skipped, not applied, and reported via onConflict.
func TestConflictOnCommit(t *testing.T) {
	s, _ := buildStore(t)
	id := testID(0x04, ACCOUNT)

	var conflicts []RegisterID
	var mu sync.Mutex
	s.onConflict = func(gotID RegisterID, commitState, witness State) {
		mu.Lock()
		conflicts = append(conflicts, gotID)
		mu.Unlock()
	}

	// commit already holds W before A's scope opens; A's erase records W as
	// its witness.
	if err := s.WriteState(id, State("W"), MEMPOOL); err != nil {
		t.Fatalf("WriteState W: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.MemoryBegin(MEMPOOL)
		defer s.MemoryRelease(MEMPOOL)

		if err := s.WriteState(id, State("X"), MEMPOOL); err != nil {
			t.Errorf("WriteState X: %v", err)
		}
		if err := s.EraseState(id, MEMPOOL); err != nil {
			t.Errorf("EraseState: %v", err)
		}
		// thread B writes directly into commit, racing with A's scope.
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			if err := s.WriteState(id, State("Y"), MEMPOOL); err != nil {
				t.Errorf("WriteState Y: %v", err)
			}
		}()
		<-writerDone

		s.MemoryCommit()
	}()
	<-done

	st, found := s.commit.get(id)
	if !found || !st.Equal(State("Y")) {
		t.Fatalf("expected commit[id] == Y after conflict, got %q found=%v", st, found)
	}
	mu.Lock()
	n := len(conflicts)
	mu.Unlock()
	if n != 1 {
		t.Fatalf("expected exactly one conflict logged, got %d", n)
	}
}

// TestMinerIsolation covers spec §8 scenario 5 / invariant P7.
func TestMinerIsolation(t *testing.T) {
	s, _ := buildStore(t)
	id := testID(0x05, NAME)

	s.MemoryBegin(MINER)
	if err := s.WriteState(id, State("M"), MINER); err != nil {
		t.Fatalf("WriteState: %v", err)
	}

	got, err := s.ReadState(id, MINER)
	if err != nil || !got.Equal(State("M")) {
		t.Fatalf("expected M via MINER read, got %q err=%v", got, err)
	}

	mempoolGot, err := s.ReadState(id, MEMPOOL)
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for MEMPOOL read with empty commit and backend, got %v", err)
	}
	if mempoolGot.Equal(State("M")) {
		t.Fatalf("MEMPOOL read must not observe the miner overlay")
	}

	s.MemoryRelease(MINER)
	if _, err := s.ReadState(id, MINER); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after release, got %v", err)
	}
}

// TestTrustDerivation covers spec §8 scenario 6.
func TestTrustDerivation(t *testing.T) {
	s, backend := buildStore(t)
	var genesis RegisterID
	genesis[0] = 0x42

	if err := s.WriteTrust(genesis, State("account-1")); err != nil {
		t.Fatalf("WriteTrust: %v", err)
	}

	register := DeriveTrustRegister(genesis)
	if !backend.Exists(stateKey(register)) {
		t.Fatalf("expected backend to hold the derived trust register")
	}
	if s.commit.has(register) {
		t.Fatalf("WriteTrust should drop any speculative commit entry for the derived register")
	}

	got, err := s.ReadTrust(genesis)
	if err != nil {
		t.Fatalf("ReadTrust: %v", err)
	}
	if !got.Equal(State("account-1")) {
		t.Fatalf("expected account-1, got %q", got)
	}
}

// TestMemoryReleaseDiscardsStagedWrites covers invariant P3.
func TestMemoryReleaseDiscardsStagedWrites(t *testing.T) {
	s, backend := buildStore(t)
	id := testID(0x06, APPEND)

	s.MemoryBegin(MEMPOOL)
	if err := s.WriteState(id, State("staged"), MEMPOOL); err != nil {
		t.Fatalf("WriteState: %v", err)
	}
	s.MemoryRelease(MEMPOOL)

	if s.commit.has(id) {
		t.Fatalf("commit must be unchanged after MemoryRelease")
	}
	if backend.Exists(stateKey(id)) {
		t.Fatalf("backend must be unchanged after MemoryRelease")
	}
}

// TestEraseIdempotent covers invariant P8.
func TestEraseIdempotent(t *testing.T) {
	s, _ := buildStore(t)
	id := testID(0x07, CRYPTO)

	if err := s.WriteState(id, State("v"), MEMPOOL); err != nil {
		t.Fatalf("WriteState: %v", err)
	}
	if err := s.EraseState(id, ERASE); err != nil {
		t.Fatalf("EraseState 1: %v", err)
	}
	if err := s.EraseState(id, ERASE); err != nil {
		t.Fatalf("EraseState 2: %v", err)
	}
	if s.commit.has(id) {
		t.Fatalf("expected commit to have no entry after two erases")
	}
}

// TestMinerWriteWithNoScopeIsNoop covers the NoScope behavior from spec §7/§9:
// a MINER write with no miner scope open silently succeeds and changes nothing.
func TestMinerWriteWithNoScopeIsNoop(t *testing.T) {
	s, backend := buildStore(t)
	id := testID(0x08, READONLY)

	if err := s.WriteState(id, State("ghost"), MINER); err != nil {
		t.Fatalf("expected MINER write with no scope to succeed silently, got %v", err)
	}
	if backend.Exists(stateKey(id)) {
		t.Fatalf("a scopeless MINER write must not reach the backend")
	}
}
