package service

import (
	"github.com/rotalog/internal/db"
	"github.com/rotalog/internal/view"
	"gorm.io/gorm"
)

// Synthetic tags computed from entry state instead of stored rows.
const (
	TagMicro = "micro"
	TagMeta  = "meta"
)

// TagService owns the entry/tag relation, listing filters and the tag cloud.
type TagService struct {
	hasMicro bool
}

// NewTagService creates a TagService instance. hasMicro toggles the
// synthetic micro tag for short-form entries.
func NewTagService(hasMicro bool) *TagService {
	return &TagService{hasMicro: hasMicro}
}

// Replace swaps the entry's tags wholesale.
func (s *TagService) Replace(tx *gorm.DB, entryID int64, tags []string) error {
	if err := s.DeleteFor(tx, entryID); err != nil {
		return err
	}
	for _, tag := range tags {
		if err := tx.Create(&db.EntryTag{EntryID: entryID, Tag: tag}).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteFor removes every tag row of the entry.
func (s *TagService) DeleteFor(tx *gorm.DB, entryID int64) error {
	return tx.Where("entry_id = ?", entryID).Delete(&db.EntryTag{}).Error
}

// InjectTags batch-loads stored tags for the looked-up entries.
func (s *TagService) InjectTags(tx *gorm.DB, lookup map[int64]*view.Entry) error {
	if len(lookup) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(lookup))
	for id := range lookup {
		ids = append(ids, id)
	}

	var rows []db.EntryTag
	if err := tx.Select("tag", "entry_id").Where("entry_id IN ?", ids).Find(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		lookup[row.EntryID].AddTag(row.Tag)
	}
	return nil
}

// InjectCloud records every stored tag with its usage count, plus the
// synthetic micro and meta tags when their counts are non-zero.
func (s *TagService) InjectCloud(tx *gorm.DB, ctx *view.WebContext) error {
	var rows []struct {
		Tag   string
		Count int
	}
	if err := tx.Model(&db.EntryTag{}).
		Select("tag, COUNT(*) AS count").
		Group("tag").
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		ctx.AddCloudTag(row.Tag, row.Count)
	}

	if s.hasMicro {
		var count int64
		if err := tx.Model(&db.Entry{}).Where("body = teaser").Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			ctx.AddCloudTag(TagMicro, int(count))
		}
	}

	var count int64
	if err := tx.Model(&db.Symlink{}).Where("kind = ?", KindMeta).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		ctx.AddCloudTag(TagMeta, int(count))
	}
	return nil
}

// ApplyFilter narrows an entry query to visible entries matching the tag:
// none (visibility only), micro (body equals teaser), meta (a meta symlink
// exists) or a stored tag row.
func (s *TagService) ApplyFilter(q *gorm.DB, tag string) *gorm.DB {
	q = q.Where("invisible = ?", false)
	switch tag {
	case "":
		return q
	case TagMicro:
		return q.Where("body = teaser")
	case TagMeta:
		return q.Where("EXISTS (SELECT 1 FROM symlinks WHERE symlinks.kind = ? AND symlinks.entry_id = entries.id)", KindMeta)
	default:
		return q.Where("EXISTS (SELECT 1 FROM entry_tags WHERE entry_tags.tag = ? AND entry_tags.entry_id = entries.id)", tag)
	}
}
