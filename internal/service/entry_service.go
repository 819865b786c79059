package service

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/rotalog/internal/db"
	"gorm.io/gorm"
)

var (
	ErrMissingEntryID = errors.New("entry id is required")
)

// teaserLimit 是摘要截断的最大字符数
const teaserLimit = 600

const (
	entryIDFloor = 1_000_000
	entryIDSpan  = 9_000_000
)

// EntryService owns entry creation and updates, including rank allocation
// and the fan-out to tags, series, symlinks and the recency feed.
type EntryService struct {
	db       *gorm.DB
	symlinks *SymlinkService
	tags     *TagService
	series   *SeriesService
	rss      *RssService
}

// EntryPayload represents the fields accepted when creating or updating an
// entry. Pointer fields distinguish absent values from empty ones.
type EntryPayload struct {
	ID        int64            `json:"id"`
	Title     *string          `json:"title"`
	Body      string           `json:"body"`
	Summary   *string          `json:"summary"`
	URL       *string          `json:"url"`
	Signature string           `json:"signature"`
	Symlink   *string          `json:"symlink"`
	Metalink  *string          `json:"metalink"`
	Tags      []string         `json:"tags"`
	Series    []SeriesPosition `json:"series"`
}

// EntryDigest pairs an entry id with its client-supplied change token.
type EntryDigest struct {
	ID        int64  `json:"id"`
	Signature string `json:"signature"`
}

// NewEntryService creates an EntryService instance.
func NewEntryService(gdb *gorm.DB, symlinks *SymlinkService, tags *TagService, series *SeriesService, rss *RssService) *EntryService {
	return &EntryService{
		db:       gdb,
		symlinks: symlinks,
		tags:     tags,
		series:   series,
		rss:      rss,
	}
}

// Create allocates a fresh sparse id, inserts a placeholder row with a
// freshly allocated rank, then applies the payload. Returns the new id.
func (s *EntryService) Create(payload EntryPayload) (int64, error) {
	var id int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = generateID(tx)
		if err != nil {
			return err
		}
		if err := createEmpty(tx, id); err != nil {
			return err
		}
		return s.updateExisting(tx, id, payload)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update applies the payload to the entry named by payload.ID. A missing row
// is first created as a placeholder, so restoring from a backup is a plain
// sequence of updates.
func (s *EntryService) Update(payload EntryPayload) error {
	if payload.ID == 0 {
		return ErrMissingEntryID
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, payload.ID); err != nil {
			return err
		}
		return s.updateExisting(tx, payload.ID, payload)
	})
}

// Index returns the id and change token of every entry.
func (s *EntryService) Index() ([]EntryDigest, error) {
	var rows []db.Entry
	if err := s.db.Select("id", "md5_signature").Find(&rows).Error; err != nil {
		return nil, err
	}
	digests := make([]EntryDigest, 0, len(rows))
	for _, row := range rows {
		digests = append(digests, EntryDigest{ID: row.ID, Signature: row.MD5Signature})
	}
	return digests, nil
}

func (s *EntryService) updateExisting(tx *gorm.DB, id int64, payload EntryPayload) error {
	var err error
	if payload.URL == nil {
		err = s.updateNormal(tx, id, payload)
	} else {
		err = s.updateRedirect(tx, id, payload)
	}
	if err != nil {
		return err
	}

	// 无论普通更新还是重定向更新，都整体替换两类符号链接。
	if err := s.symlinks.Replace(tx, id, KindNormal, payload.Symlink); err != nil {
		return err
	}
	return s.symlinks.Replace(tx, id, KindMeta, payload.Metalink)
}

func (s *EntryService) updateNormal(tx *gorm.DB, id int64, payload EntryPayload) error {
	title := ""
	if payload.Title != nil {
		title = *payload.Title
	}
	teaser := CutBody(payload.Body)
	if payload.Summary != nil {
		teaser = *payload.Summary
	}

	updates := map[string]interface{}{
		"title":         title,
		"teaser":        teaser,
		"body":          payload.Body,
		"invisible":     false,
		"md5_signature": payload.Signature,
		"redirect_url":  nil,
	}
	if err := tx.Model(&db.Entry{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return err
	}

	if err := s.tags.Replace(tx, id, payload.Tags); err != nil {
		return err
	}
	return s.series.Replace(tx, id, payload.Series)
}

// updateRedirect turns the entry into a pure redirect stub: content cleared,
// hidden from listings, and detached from tags, series and the recency feed.
func (s *EntryService) updateRedirect(tx *gorm.DB, id int64, payload EntryPayload) error {
	updates := map[string]interface{}{
		"title":         "",
		"teaser":        "",
		"body":          "",
		"invisible":     true,
		"md5_signature": payload.Signature,
		"redirect_url":  *payload.URL,
	}
	if err := tx.Model(&db.Entry{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return err
	}

	if err := s.tags.DeleteFor(tx, id); err != nil {
		return err
	}
	if err := s.series.DeleteFor(tx, id); err != nil {
		return err
	}
	return s.rss.Remove(tx, id)
}

func ensureExists(tx *gorm.DB, id int64) error {
	var count int64
	if err := tx.Model(&db.Entry{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return createEmpty(tx, id)
}

func createEmpty(tx *gorm.DB, id int64) error {
	rank, err := generateRank(tx)
	if err != nil {
		return err
	}
	return tx.Create(&db.Entry{
		ID:         id,
		Rank:       rank,
		Invisible:  true,
		DatePosted: time.Now(),
	}).Error
}

// generateID samples ids uniformly from a large sparse range and retries on
// collision, so ids stay non-sequential.
func generateID(tx *gorm.DB) (int64, error) {
	for {
		id := rand.Int63n(entryIDSpan) + entryIDFloor
		var count int64
		if err := tx.Model(&db.Entry{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return id, nil
		}
	}
}

// CutBody computes the default teaser: bodies within the limit pass through,
// longer ones are truncated at the last newline inside the window, failing
// that the last space, failing that hard at the limit.
func CutBody(body string) string {
	runes := []rune(body)
	if len(runes) <= teaserLimit {
		return body
	}
	window := string(runes[:teaserLimit])
	if ix := strings.LastIndex(window, "\n"); ix >= 0 {
		return window[:ix]
	}
	if ix := strings.LastIndex(window, " "); ix >= 0 {
		return window[:ix]
	}
	return window
}
