package utils

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a, b ,,c", []string{"a", "b", "c"}},
		{" , ", nil},
	}
	for _, tt := range tests {
		if got := SplitCSV(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("SplitCSV(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestWithStateLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.sqlite")
	ran := false
	err := WithStateLock(context.Background(), path, func() error {
		ran = true
		return nil
	})
	if err != nil || !ran {
		t.Fatalf("WithStateLock: ran=%v err=%v", ran, err)
	}

	want := errors.New("write failed")
	if err := WithStateLock(context.Background(), path, func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("WithStateLock error = %v, want %v", err, want)
	}
}

func TestWithStateLockWaitsForHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.sqlite")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := WithStateLock(context.Background(), path, func() error {
		// a second holder cannot get in until the first returns
		return WithStateLock(ctx, path, func() error { return nil })
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("nested lock error = %v, want deadline exceeded", err)
	}
}

func TestStatePathDefault(t *testing.T) {
	p, err := StatePath("")
	if err != nil {
		t.Fatalf("StatePath: %v", err)
	}
	if filepath.Base(p) != "acvora.sqlite" || !filepath.IsAbs(p) {
		t.Fatalf("default state path = %q", p)
	}
}
