package relay

import (
	"errors"
	"testing"
)

func TestFakeDriverRecordsWrites(t *testing.T) {
	f := NewFakeDriver()

	if err := f.Set(true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := f.Set(false); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if len(f.Writes) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(f.Writes))
	}
	if !f.Writes[0] || f.Writes[1] {
		t.Errorf("writes: got %v, want [true false]", f.Writes)
	}
	if f.State {
		t.Error("State should track the last write")
	}
}

func TestFakeDriverSetError(t *testing.T) {
	f := NewFakeDriver()
	f.SetError = errors.New("stuck contact")

	if err := f.Set(true); err == nil {
		t.Fatal("expected error")
	}
	if len(f.Writes) != 0 {
		t.Errorf("failed write must not be recorded, got %v", f.Writes)
	}
}

func TestFakeDriverCloseReleases(t *testing.T) {
	f := NewFakeDriver()
	f.Set(true)
	f.Close()

	if !f.Closed {
		t.Error("Closed not set")
	}
	if f.State {
		t.Error("Close must release the relay")
	}
}
