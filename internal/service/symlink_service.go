package service

import (
	"errors"
	"strconv"

	"github.com/rotalog/internal/db"
	"github.com/rotalog/internal/view"
	"gorm.io/gorm"
)

// Symlink kinds. Normal links live under /entry, meta links under /meta.
const (
	KindNormal = "normal"
	KindMeta   = "meta"
)

// SymlinkService maps human readable slugs to entry ids and computes
// permalinks for resolved entries.
type SymlinkService struct{}

// NewSymlinkService creates a SymlinkService instance.
func NewSymlinkService() *SymlinkService {
	return &SymlinkService{}
}

// Replace swaps the entry's symlink of the given kind: the old row is always
// deleted, a new one inserted only when link is non-nil.
func (s *SymlinkService) Replace(tx *gorm.DB, entryID int64, kind string, link *string) error {
	if err := tx.Where("entry_id = ? AND kind = ?", entryID, kind).Delete(&db.Symlink{}).Error; err != nil {
		return err
	}
	if link == nil {
		return nil
	}
	return tx.Create(&db.Symlink{EntryID: entryID, Kind: kind, Link: *link}).Error
}

// Resolve looks up an exact slug within one kind. The second return value is
// false when no such slug exists; that is not an error.
func (s *SymlinkService) Resolve(tx *gorm.DB, kind, link string) (int64, bool, error) {
	var row db.Symlink
	err := tx.Select("entry_id").Where("link = ? AND kind = ?", link, kind).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return row.EntryID, true, nil
}

// Inject batch-loads the symlinks of all given entries, assigns each entry
// its permalink and marks meta-linked entries with the synthetic meta tag.
func (s *SymlinkService) Inject(tx *gorm.DB, metaContext bool, entries []*view.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}

	var rows []db.Symlink
	if err := tx.Select("entry_id", "kind", "link").Where("entry_id IN ?", ids).Find(&rows).Error; err != nil {
		return err
	}

	links := newLinkSet(metaContext)
	for _, row := range rows {
		links.put(row.EntryID, row.Kind, row.Link)
	}

	for _, e := range entries {
		e.Permalink = links.permalink(e.ID)
		if links.hasMeta(e.ID) {
			e.AddTag("meta")
		}
	}
	return nil
}

// linkSet holds the loaded symlinks of a batch of entries and applies the
// permalink precedence rules.
type linkSet struct {
	meta bool
	data map[int64]map[string]string
}

func newLinkSet(meta bool) *linkSet {
	return &linkSet{meta: meta, data: make(map[int64]map[string]string)}
}

func (l *linkSet) put(entryID int64, kind, link string) {
	links, ok := l.data[entryID]
	if !ok {
		links = make(map[string]string, 2)
		l.data[entryID] = links
	}
	links[kind] = link
}

// permalink picks the entry's public path. Meta contexts prefer the meta
// link; otherwise the normal link wins, then the meta link, then the bare id.
func (l *linkSet) permalink(entryID int64) string {
	links := l.data[entryID]
	normal, hasNormal := links[KindNormal]
	meta, hasMeta := links[KindMeta]
	if hasMeta && l.meta {
		return "/meta/" + meta
	}
	if hasNormal {
		return "/entry/" + normal
	}
	if hasMeta {
		return "/meta/" + meta
	}
	return "/entry/" + strconv.FormatInt(entryID, 10)
}

func (l *linkSet) hasMeta(entryID int64) bool {
	_, ok := l.data[entryID][KindMeta]
	return ok
}
