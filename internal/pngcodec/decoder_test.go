package pngcodec

import "testing"

func TestNewStateDefaultsToDefaultGamma(t *testing.T) {
	s := NewState(nil)
	if s.Stage() != StageNotStarted {
		t.Fatalf("got stage %v, want not-started", s.Stage())
	}
	if s.Gamma() != defaultGamma {
		t.Fatalf("got gamma %v, want default %v", s.Gamma(), defaultGamma)
	}
}

func TestGetFrameInfoGarbageInputFails(t *testing.T) {
	s := NewState([]byte("not a png"))
	_, _, err := s.GetFrameInfo()
	if err == nil {
		t.Fatal("expected error decoding non-PNG bytes")
	}
	if s.Stage() != StageFailed {
		t.Fatalf("got stage %v, want failed", s.Stage())
	}
}

func TestReadFrameBeforeBeginReadFails(t *testing.T) {
	s := NewState([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	buf := make([]byte, 64)
	if err := s.ReadFrame(buf, 8); err == nil {
		t.Fatal("expected read-frame before begin-read to fail")
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	s := NewState([]byte{0x89, 'P', 'N', 'G'})
	s.Dispose()
	s.Dispose()
	if s.Stage() != StageFailed {
		t.Fatalf("got stage %v after dispose, want failed", s.Stage())
	}
}
