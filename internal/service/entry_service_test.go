package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rotalog/internal/db"
)

func TestCreateEntryServesContent(t *testing.T) {
	ts := newTestServices(t)

	id := ts.mustCreate(t, minimalEntry())
	if id < 1_000_000 || id >= 10_000_000 {
		t.Fatalf("expected sparse id in [1000000, 10000000), got %d", id)
	}

	ctx, err := ts.pages.RetrieveEntry(fmt.Sprintf("%d", id), false)
	if err != nil {
		t.Fatalf("retrieve entry: %v", err)
	}
	if len(ctx.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(ctx.Entries))
	}
	e := ctx.Entries[0]
	if e.ID != id {
		t.Fatalf("expected id %d, got %d", id, e.ID)
	}
	if e.Content != "Hello, world" {
		t.Fatalf("unexpected content %q", e.Content)
	}
	if e.Title != fmt.Sprintf("#%d", id) {
		t.Fatalf("expected fallback title, got %q", e.Title)
	}
	if e.Permalink != fmt.Sprintf("/entry/%d", id) {
		t.Fatalf("unexpected permalink %q", e.Permalink)
	}
}

func TestCreateEntryWithTitle(t *testing.T) {
	ts := newTestServices(t)

	payload := minimalEntry()
	payload.Title = strPtr("Some title")
	id := ts.mustCreate(t, payload)

	ctx, err := ts.pages.RetrieveEntry(fmt.Sprintf("%d", id), false)
	if err != nil {
		t.Fatalf("retrieve entry: %v", err)
	}
	if len(ctx.Entries) != 1 || ctx.Entries[0].Title != "Some title" {
		t.Fatalf("unexpected entries: %+v", ctx.Entries)
	}
}

func TestUpdateEntryReplacesBody(t *testing.T) {
	ts := newTestServices(t)

	id := ts.mustCreate(t, minimalEntry())

	changed := minimalEntry()
	changed.ID = id
	changed.Body = "Hello world again"
	if err := ts.entries.Update(changed); err != nil {
		t.Fatalf("update entry: %v", err)
	}

	ctx, err := ts.pages.RetrieveEntry(fmt.Sprintf("%d", id), false)
	if err != nil {
		t.Fatalf("retrieve entry: %v", err)
	}
	if len(ctx.Entries) != 1 || ctx.Entries[0].Content != "Hello world again" {
		t.Fatalf("unexpected entries: %+v", ctx.Entries)
	}
}

func TestUpdateCreatesMissingEntry(t *testing.T) {
	ts := newTestServices(t)

	if ids := ts.pageIDs(t); len(ids) != 0 {
		t.Fatalf("expected empty page, got %v", ids)
	}

	backup := minimalEntry()
	backup.ID = 111222
	if err := ts.entries.Update(backup); err != nil {
		t.Fatalf("restore entry: %v", err)
	}

	ids := ts.pageIDs(t)
	if len(ids) != 1 || ids[0] != 111222 {
		t.Fatalf("expected restored entry, got %v", ids)
	}
}

func TestUpdateWithoutIDFails(t *testing.T) {
	ts := newTestServices(t)

	if err := ts.entries.Update(minimalEntry()); err != ErrMissingEntryID {
		t.Fatalf("expected ErrMissingEntryID, got %v", err)
	}
}

func TestCutBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "short body passes through",
			body: "Hello, world",
			want: "Hello, world",
		},
		{
			name: "body at the limit passes through",
			body: strings.Repeat("a", 600),
			want: strings.Repeat("a", 600),
		},
		{
			name: "cut at last newline in window",
			body: strings.Repeat("a", 100) + "\n" + strings.Repeat("b", 700),
			want: strings.Repeat("a", 100),
		},
		{
			name: "cut at last space when no newline",
			body: strings.Repeat("a", 100) + " " + strings.Repeat("b", 700),
			want: strings.Repeat("a", 100),
		},
		{
			name: "hard cut without separators",
			body: strings.Repeat("a", 700),
			want: strings.Repeat("a", 600),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CutBody(tt.body)
			if got != tt.want {
				t.Fatalf("expected %d chars %q..., got %d chars %q...", len(tt.want), head(tt.want), len(got), head(got))
			}
		})
	}
}

func TestRepeatedWordsCutAtSpace(t *testing.T) {
	body := strings.Repeat("Hello ", 1000)
	teaser := CutBody(body)
	if len(teaser) >= 600 {
		t.Fatalf("expected teaser under limit, got %d chars", len(teaser))
	}
	if strings.HasSuffix(teaser, " ") {
		t.Fatalf("teaser should not end mid-separator: %q", head(teaser))
	}
}

func TestEntryIndexListsSignatures(t *testing.T) {
	ts := newTestServices(t)

	id := ts.mustCreate(t, minimalEntry())

	digests, err := ts.entries.Index()
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if len(digests) != 1 {
		t.Fatalf("expected 1 digest, got %d", len(digests))
	}
	if digests[0].ID != id || digests[0].Signature != "sig1" {
		t.Fatalf("unexpected digest: %+v", digests[0])
	}
}

func TestRanksStayDense(t *testing.T) {
	ts := newTestServices(t)

	for i := 0; i < 6; i++ {
		ts.mustCreate(t, minimalEntry())
	}
	backup := minimalEntry()
	backup.ID = 111222
	if err := ts.entries.Update(backup); err != nil {
		t.Fatalf("restore entry: %v", err)
	}
	redirect := EntryPayload{URL: strPtr("http://example.com"), Signature: "sig11"}
	ts.mustCreate(t, redirect)
	if err := ts.rotation.Rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	assertDenseRanks(t, ts)
}

func assertDenseRanks(t *testing.T, ts *testServices) {
	t.Helper()

	var ranks []int
	if err := ts.db.Model(&db.Entry{}).Order("rank").Pluck("rank", &ranks).Error; err != nil {
		t.Fatalf("load ranks: %v", err)
	}
	for i, rank := range ranks {
		if rank != i+1 {
			t.Fatalf("expected dense ranks 1..%d, got %v", len(ranks), ranks)
		}
	}
}

func head(s string) string {
	if len(s) > 24 {
		return s[:24]
	}
	return s
}
