package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default, got %d", got)
	}
	if got := NormalizeLimit(1000); got != MaxLimit {
		t.Fatalf("expected max, got %d", got)
	}
	if got := NormalizeLimit(7); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2026, 3, 1, 12, 30, 0, 123, time.UTC), ID: uuid.New()}
	out, err := ParseCursor(EncodeCursor(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("cursor mismatch %+v vs %+v", out, in)
	}

	if c, err := ParseCursor("  "); err != nil || c != nil {
		t.Fatalf("expected empty cursor to be nil, got %+v %v", c, err)
	}
	if _, err := ParseCursor("!!!"); err == nil {
		t.Fatal("expected garbage cursor to fail")
	}
}

func TestBuildPage(t *testing.T) {
	type row struct {
		id uuid.UUID
		at time.Time
	}
	now := time.Now().UTC()
	rows := []row{{uuid.New(), now}, {uuid.New(), now.Add(-time.Minute)}, {uuid.New(), now.Add(-2 * time.Minute)}}
	key := func(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} }

	page := Build(rows, 2, key)
	if len(page.Items) != 2 || page.NextCursor == "" {
		t.Fatalf("expected a trimmed page with cursor, got %+v", page)
	}
	next, err := ParseCursor(page.NextCursor)
	if err != nil || next.ID != rows[1].id {
		t.Fatalf("expected cursor at second row, got %+v %v", next, err)
	}

	last := Build(rows[:1], 2, key)
	if len(last.Items) != 1 || last.NextCursor != "" {
		t.Fatalf("expected final page without cursor, got %+v", last)
	}

	empty := Build[row](nil, 2, key)
	if empty.Items == nil {
		t.Fatal("expected empty slice, not nil")
	}
}
