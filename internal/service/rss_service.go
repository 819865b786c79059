package service

import (
	"time"

	"github.com/rotalog/internal/db"
	"github.com/rotalog/internal/view"
	"gorm.io/gorm"
)

// feedCapacity 是订阅窗口保留的条目数上限
const feedCapacity = 10

// RssService maintains the bounded recency feed of promoted entries.
type RssService struct {
	db       *gorm.DB
	symlinks *SymlinkService
}

// NewRssService creates an RssService instance.
func NewRssService(gdb *gorm.DB, symlinks *SymlinkService) *RssService {
	return &RssService{db: gdb, symlinks: symlinks}
}

// Enqueue puts the entry at feed position 1, shifting the rest up and
// evicting anything past the capacity. Entries already in the feed stay
// where they are.
func (s *RssService) Enqueue(tx *gorm.DB, entryID int64) error {
	var count int64
	if err := tx.Model(&db.RssEntry{}).Where("entry_id = ?", entryID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if err := slideFeed(tx); err != nil {
		return err
	}
	return tx.Create(&db.RssEntry{EntryID: entryID, FeedPosition: 1}).Error
}

// Remove drops the entry's feed row, if any.
func (s *RssService) Remove(tx *gorm.DB, entryID int64) error {
	return tx.Where("entry_id = ?", entryID).Delete(&db.RssEntry{}).Error
}

// Feed returns the feed items in position order, joined with entry content
// and decorated with permalinks.
func (s *RssService) Feed() (*view.RssContext, error) {
	ctx := &view.RssContext{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var rows []struct {
			EntryID    int64
			Title      string
			Teaser     string
			DatePosted time.Time
		}
		if err := tx.Model(&db.RssEntry{}).
			Select("rss_entries.entry_id, entries.title, entries.teaser, entries.date_posted").
			Joins("JOIN entries ON entries.id = rss_entries.entry_id").
			Order("rss_entries.feed_position").
			Scan(&rows).Error; err != nil {
			return err
		}

		for _, row := range rows {
			e := view.NewEntry(row.EntryID)
			e.Title = view.DisplayTitle(row.EntryID, row.Title)
			e.Summary = row.Teaser
			e.PubDate = row.DatePosted.UTC().Format(time.RFC1123Z)
			ctx.Entries = append(ctx.Entries, e)
		}

		return s.symlinks.Inject(tx, false, ctx.Entries)
	})
	if err != nil {
		return nil, err
	}
	return ctx, nil
}

// slideFeed shifts every feed position up by one, in descending order to
// keep the unique index happy, then evicts rows past the capacity.
func slideFeed(tx *gorm.DB) error {
	var ids []int64
	if err := tx.Model(&db.RssEntry{}).
		Order("feed_position desc").
		Pluck("entry_id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if err := tx.Model(&db.RssEntry{}).
			Where("entry_id = ?", id).
			Update("feed_position", gorm.Expr("feed_position + 1")).Error; err != nil {
			return err
		}
	}
	return tx.Where("feed_position > ?", feedCapacity).Delete(&db.RssEntry{}).Error
}
