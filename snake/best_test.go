package snake

import (
	"errors"
	"testing"

	"github.com/hoshinonyaruko/cobrinha/structs"
)

type failingStore struct{}

func (failingStore) Get(string) (string, bool, error) { return "", false, errors.New("boom") }
func (failingStore) Set(string, string) error { return errors.New("boom") }

func TestParseBest(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"12", 12},
		{"0", 0},
		{"", 0},
		{"abc", 0},
		{"-4", 0},
		{"3.5", 0},
	}

	for _, tt := range tests {
		if got := ParseBest(tt.in); got != tt.want {
			t.Errorf("ParseBest(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSaveBestOnlyWhenImproved(t *testing.T) {
	store := NewMemoryStore()
	s := NewSession(structs.Grid{Cols: 10, Rows: 10}, WithStore(store))
	s.Reset()

	s.score = 3
	best, improved, err := s.SaveBest()
	if err != nil || !improved || best != 3 {
		t.Fatalf("SaveBest() = %d, %v, %v; want 3, true, nil", best, improved, err)
	}

	s.score = 2
	best, improved, err = s.SaveBest()
	if err != nil || improved || best != 3 {
		t.Fatalf("SaveBest() = %d, %v, %v; want 3, false, nil", best, improved, err)
	}

	v, _, _ := store.Get(BestKey)
	if v != "3" {
		t.Errorf("stored best = %q, want \"3\"", v)
	}
}

func TestBestMalformedValueIsZero(t *testing.T) {
	store := NewMemoryStore()
	store.Set(BestKey, "not-a-number")
	s := NewSession(structs.Grid{Cols: 10, Rows: 10}, WithStore(store))

	best, err := s.Best()
	if err != nil || best != 0 {
		t.Errorf("Best() = %d, %v; want 0, nil", best, err)
	}

	s.score = 1
	if _, improved, _ := s.SaveBest(); !improved {
		t.Error("SaveBest() should overwrite a malformed value")
	}
}

func TestBestStoreError(t *testing.T) {
	s := NewSession(structs.Grid{Cols: 10, Rows: 10}, WithStore(failingStore{}))
	s.score = 5

	if _, err := s.Best(); err == nil {
		t.Error("Best() expected error")
	}
	if _, improved, err := s.SaveBest(); err == nil || improved {
		t.Errorf("SaveBest() = improved %v, err %v; want false, error", improved, err)
	}
}
