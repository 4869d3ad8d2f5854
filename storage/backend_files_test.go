package storage

import (
	"errors"
	"testing"
)

func TestFileBackendRoundTrip(t *testing.T) {
	b := NewFileBackend(t.TempDir())
	key := Key{Tag: TagState, ID: testID(0x01, OBJECT)}

	if b.Exists(key) {
		t.Fatalf("fresh backend should not report existence for an unwritten key")
	}
	if err := b.Write(key, []byte("payload"), key.ID.Type().Namespace()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !b.Exists(key) {
		t.Fatalf("expected Exists to report true after Write")
	}

	got, err := b.Read(key)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("expected payload, got %q", got)
	}

	if err := b.Erase(key); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if b.Exists(key) {
		t.Fatalf("expected Exists to report false after Erase")
	}
	if _, err := b.Read(key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after Erase, got %v", err)
	}
}

func TestFileBackendIterate(t *testing.T) {
	b := NewFileBackend(t.TempDir())
	namespace := OBJECT.Namespace()

	ids := []RegisterID{testID(0x10, OBJECT), testID(0x11, OBJECT), testID(0x12, OBJECT)}
	for i, id := range ids {
		key := Key{Tag: TagState, ID: id}
		if err := b.Write(key, []byte{byte(i)}, namespace); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	seen := make(map[RegisterID]bool)
	err := b.Iterate(namespace, func(id RegisterID, data []byte) bool {
		seen[id] = true
		return true
	})
	if err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	for _, id := range ids {
		if !seen[id] {
			t.Fatalf("expected Iterate to visit %s", id)
		}
	}
}

func TestFileBackendIterateStopsEarly(t *testing.T) {
	b := NewFileBackend(t.TempDir())
	namespace := TOKEN.Namespace()

	for i := 0; i < 5; i++ {
		key := Key{Tag: TagState, ID: testID(byte(0x20+i), TOKEN)}
		if err := b.Write(key, []byte{byte(i)}, namespace); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	count := 0
	err := b.Iterate(namespace, func(id RegisterID, data []byte) bool {
		count++
		return false
	})
	if err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected Iterate to stop after the first false return, visited %d", count)
	}
}

func TestAddressTypeNamespaceDefaultsToNone(t *testing.T) {
	unknown := AddressType(200)
	if unknown.Namespace() != "NONE" {
		t.Fatalf("expected unknown address type to map to NONE, got %q", unknown.Namespace())
	}
}
