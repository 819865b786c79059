package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/rotalog/internal/db"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testRootURL = "http://example.com"

// testServices bundles the full service graph over one in-memory database.
type testServices struct {
	db       *gorm.DB
	symlinks *SymlinkService
	tags     *TagService
	series   *SeriesService
	rss      *RssService
	entries  *EntryService
	rotation *RotationService
	pages    *PageService
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return gdb
}

func newTestServices(t *testing.T) *testServices {
	return newTestServicesWithMicro(t, true)
}

func newTestServicesWithMicro(t *testing.T, hasMicro bool) *testServices {
	t.Helper()

	gdb := setupServiceTestDB(t)
	symlinks := NewSymlinkService()
	tags := NewTagService(hasMicro)
	series := NewSeriesService(symlinks)
	rss := NewRssService(gdb, symlinks)

	return &testServices{
		db:       gdb,
		symlinks: symlinks,
		tags:     tags,
		series:   series,
		rss:      rss,
		entries:  NewEntryService(gdb, symlinks, tags, series, rss),
		rotation: NewRotationService(gdb, rss, zerolog.Nop()),
		pages:    NewPageService(gdb, testRootURL, hasMicro, symlinks, tags, series),
	}
}

func strPtr(s string) *string {
	return &s
}

func minimalEntry() EntryPayload {
	return EntryPayload{Body: "Hello, world", Signature: "sig1"}
}

func (ts *testServices) mustCreate(t *testing.T, payload EntryPayload) int64 {
	t.Helper()
	id, err := ts.entries.Create(payload)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	return id
}

// pageIDs fetches the ids of the first untagged page in rank order.
func (ts *testServices) pageIDs(t *testing.T) []int64 {
	t.Helper()
	ctx, err := ts.pages.RetrievePage(mustPageRef(t, "", ""))
	if err != nil {
		t.Fatalf("retrieve page: %v", err)
	}
	ids := make([]int64, 0, len(ctx.Entries))
	for _, e := range ctx.Entries {
		ids = append(ids, e.ID)
	}
	return ids
}
