package docstore

// Notes:
// - Ids must parse as UUIDs.
// - TestConcurrentAccess exists for the race detector.

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCreateGet(t *testing.T) {
	t.Parallel()

	s := New()
	d := s.Create("# Hi")
	if _, err := uuid.Parse(d.ID); err != nil {
		t.Errorf("Create() id %q is not a UUID: %v", d.ID, err)
	}

	got, err := s.Get(d.ID)
	if err != nil || got.Markdown != "# Hi" {
		t.Errorf("Get(%q) = (%+v, %v)", d.ID, got, err)
	}
}

func TestGetErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id      string
		wantErr error
	}{
		{id: "", wantErr: ErrEmptyID},
		{id: "  ", wantErr: ErrEmptyID},
		{id: "missing", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()

			if _, err := New().Get(tt.id); !errors.Is(err, tt.wantErr) {
				t.Errorf("Get(%q) error = %v, want %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestPut(t *testing.T) {
	t.Parallel()

	s := New()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	first, err := s.Put("doc", "a")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	clock = clock.Add(time.Minute)
	second, _ := s.Put("doc", "b")

	if second.Markdown != "b" || !second.Created.Equal(first.Created) || !second.Updated.After(first.Updated) {
		t.Errorf("Put() = %+v after %+v", second, first)
	}
	if _, err := s.Put("", "x"); !errors.Is(err, ErrEmptyID) {
		t.Errorf("Put(\"\") error = %v, want %v", err, ErrEmptyID)
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	s := New()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { clock = clock.Add(time.Second); return clock }

	for _, id := range []string{"c", "a", "b"} {
		_, _ = s.Put(id, id)
	}
	var got []string
	for _, d := range s.List() {
		got = append(got, d.ID)
	}
	if fmt.Sprint(got) != "[c a b]" {
		t.Errorf("List() ids = %v, want creation order", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := New()
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("d%d", i%3)
			_, _ = s.Put(id, id)
			_, _ = s.Get(id)
			s.Create("x")
			_ = s.List()
		}()
	}
	wg.Wait()

	if n := len(s.List()); n != 13 {
		t.Errorf("len(List()) = %d, want 13", n)
	}
}
