// internal/storage/memory/memory_test.go
package memory

import (
	"fmt"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	b := New()

	if b == nil {
		t.Fatal("New returned nil")
	}
	if b.blobs == nil {
		t.Error("blobs map not initialized")
	}
}

func TestInitAndClose(t *testing.T) {
	b := New()

	if err := b.Init(); err != nil {
		t.Errorf("Init failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestReadMissingKey(t *testing.T) {
	b := New()

	blob, err := b.Read("star_charts_discovery_A0")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if blob != nil {
		t.Errorf("expected nil blob for missing key, got %q", blob)
	}
}

func TestWriteAndRead(t *testing.T) {
	b := New()

	in := []byte(`{"version":1,"ids":["A0_SOL"]}`)
	if err := b.Write("star_charts_discovery_A0", in); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	out, err := b.Read("star_charts_discovery_A0")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(out) != string(in) {
		t.Errorf("expected %q, got %q", in, out)
	}
}

func TestWriteReplaces(t *testing.T) {
	b := New()

	b.Write("k", []byte("first"))
	b.Write("k", []byte("second"))

	out, _ := b.Read("k")
	if string(out) != "second" {
		t.Errorf("expected second write to win, got %q", out)
	}
}

func TestReadReturnsCopy(t *testing.T) {
	b := New()

	b.Write("k", []byte("stable"))

	out, _ := b.Read("k")
	out[0] = 'X'

	again, _ := b.Read("k")
	if string(again) != "stable" {
		t.Errorf("mutating a read result changed the stored blob: %q", again)
	}
}

func TestWriteStoresCopy(t *testing.T) {
	b := New()

	in := []byte("stable")
	b.Write("k", in)
	in[0] = 'X'

	out, _ := b.Read("k")
	if string(out) != "stable" {
		t.Errorf("mutating the input changed the stored blob: %q", out)
	}
}

func TestKeys(t *testing.T) {
	b := New()

	b.Write("star_charts_discovery_B1", []byte("b"))
	b.Write("star_charts_discovery_A0", []byte("a"))

	keys := b.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	if keys[0] != "star_charts_discovery_A0" || keys[1] != "star_charts_discovery_B1" {
		t.Errorf("expected sorted keys, got %v", keys)
	}
}

func TestConcurrentReadWrite(t *testing.T) {
	b := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key_%d", n)
			for j := 0; j < 100; j++ {
				b.Write(key, []byte{byte(j)})
			}
		}(i)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key_%d", n)
			for j := 0; j < 100; j++ {
				b.Read(key)
			}
		}(i)
	}
	wg.Wait()

	if len(b.Keys()) != 8 {
		t.Errorf("expected 8 keys after concurrent writes, got %d", len(b.Keys()))
	}
}
