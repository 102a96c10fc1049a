package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestMemoryStoreRoundtrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	payload := "some mp3 bytes"
	if err := s.Put(ctx, "audio/x.mp3", strings.NewReader(payload), int64(len(payload)), "audio/mpeg"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	ok, err := s.Exists(ctx, "audio/x.mp3")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v, want true", ok, err)
	}

	rc, err := s.Get(ctx, "audio/x.mp3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != payload {
		t.Errorf("Get returned %q, want %q", got, payload)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Get(missing) = %v, want ErrObjectNotFound", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, "k", strings.NewReader("v"), 1, "audio/mpeg")
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if ok, _ := s.Exists(ctx, "k"); ok {
		t.Errorf("object still exists after Delete")
	}
	if err := s.Delete(ctx, "k"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("second Delete = %v, want ErrObjectNotFound", err)
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, "k", strings.NewReader("old"), 3, "audio/mpeg")
	s.Put(ctx, "k", strings.NewReader("new"), 3, "audio/mpeg")

	rc, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "new" {
		t.Errorf("Get after overwrite = %q, want %q", got, "new")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}
