package jpegcodec

import (
	"testing"
)

func TestNewStateIsNotStarted(t *testing.T) {
	s := NewState(nil)
	if s.Stage() != StageNotStarted {
		t.Fatalf("new state: got stage %v, want not-started", s.Stage())
	}
}

func TestGetFrameInfoEmptyInputFails(t *testing.T) {
	s := NewState([]byte{})
	_, _, _, err := s.GetFrameInfo()
	if err == nil {
		t.Fatal("expected error decoding empty input")
	}
	if s.Stage() != StageFailed {
		t.Fatalf("got stage %v, want failed", s.Stage())
	}
}

func TestGetFrameInfoGarbageInputFails(t *testing.T) {
	s := NewState([]byte{0x00, 0x01, 0x02, 0x03})
	_, _, _, err := s.GetFrameInfo()
	if err == nil {
		t.Fatal("expected error decoding non-JPEG bytes")
	}
	if s.Stage() != StageFailed {
		t.Fatalf("got stage %v, want failed", s.Stage())
	}
}

func TestReadFrameBeforeBeginReadFails(t *testing.T) {
	s := NewState([]byte{0xFF, 0xD8, 0xFF, 0xD9})
	buf := make([]byte, 64)
	if err := s.ReadFrame(buf, 8); err == nil {
		t.Fatal("expected read-frame before begin-read to fail")
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	s := NewState([]byte{0xFF, 0xD8, 0xFF, 0xD9})
	s.Dispose()
	s.Dispose()
	if s.Stage() != StageFailed {
		t.Fatalf("got stage %v after dispose, want failed", s.Stage())
	}
}
