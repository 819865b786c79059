package service

import (
	"math/rand"
	"regexp"
	"strconv"

	"github.com/rotalog/internal/db"
	"github.com/rotalog/internal/view"
	"gorm.io/gorm"
)

// pageSize 是多条目页面的固定条目数
const pageSize = 5

// RandomRef is the entry reference that resolves to a uniformly random
// visible entry.
const RandomRef = "random"

var numericEntryRef = regexp.MustCompile(`^[0-9]+$`)

// PageService assembles the read-side views: single entries, paginated entry
// lists and their navigation links.
type PageService struct {
	db       *gorm.DB
	rootURL  string
	hasMicro bool
	symlinks *SymlinkService
	tags     *TagService
	series   *SeriesService
}

// NewPageService creates a PageService instance.
func NewPageService(gdb *gorm.DB, rootURL string, hasMicro bool, symlinks *SymlinkService, tags *TagService, series *SeriesService) *PageService {
	return &PageService{
		db:       gdb,
		rootURL:  rootURL,
		hasMicro: hasMicro,
		symlinks: symlinks,
		tags:     tags,
		series:   series,
	}
}

// RetrievePage resolves a page reference into a window of rank-ordered
// entries plus prev/next links and the tag cloud.
func (s *PageService) RetrievePage(ref view.PageRef) (*view.PageContext, error) {
	ctx := view.NewPageContext(s.hasMicro)
	if ref.Tag == TagMeta {
		ctx.Meta = true
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		count, err := s.pageCount(tx, ref.Tag)
		if err != nil {
			return err
		}

		realIndex := ref.AbsIndex(count)
		offset := realIndex*pageSize - pageSize
		if offset < 0 {
			offset = 0
		}

		var rows []db.Entry
		q := tx.Model(&db.Entry{}).Select("id", "title", "teaser", "body", "redirect_url")
		q = s.tags.ApplyFilter(q, ref.Tag)
		if err := q.Order("rank").Limit(pageSize).Offset(offset).Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			ctx.AddRow(row)
		}

		if err := s.decorate(tx, &ctx.WebContext, nil); err != nil {
			return err
		}

		ctx.Prev = ref.PrevURL(count)
		ctx.Next = ref.NextURL(count)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ctx, nil
}

// RetrieveEntry resolves a single entry reference: "random" short-circuits
// to a redirect at a uniformly random visible entry, any other reference is
// looked up as a symlink first and as a raw numeric id second. An unknown
// reference yields an empty, renderable context.
func (s *PageService) RetrieveEntry(ref string, meta bool) (*view.EntryContext, error) {
	ctx := view.NewEntryContext(s.hasMicro)
	if meta {
		ctx.Meta = true
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if ref == RandomRef {
			if err := s.retrieveRandom(tx, ctx); err != nil {
				return err
			}
		} else {
			id, ok, err := s.idByRef(tx, ctx.Meta, ref)
			if err != nil {
				return err
			}
			if ok {
				var rows []db.Entry
				if err := tx.Model(&db.Entry{}).
					Select("id", "title", "teaser", "body", "redirect_url").
					Where("id = ?", id).
					Find(&rows).Error; err != nil {
					return err
				}
				for _, row := range rows {
					ctx.AddRow(row)
				}
			}
		}

		if ctx.RedirectURL() != "" {
			return nil
		}
		return s.decorate(tx, &ctx.WebContext, ctx)
	})
	if err != nil {
		return nil, err
	}
	return ctx, nil
}

// idByRef resolves a reference to an entry id: symlink lookup scoped by
// context kind, then raw numeric ids.
func (s *PageService) idByRef(tx *gorm.DB, meta bool, ref string) (int64, bool, error) {
	kind := KindNormal
	if meta {
		kind = KindMeta
	}
	id, ok, err := s.symlinks.Resolve(tx, kind, ref)
	if err != nil || ok {
		return id, ok, err
	}
	if numericEntryRef.MatchString(ref) {
		id, err := strconv.ParseInt(ref, 10, 64)
		if err != nil {
			return 0, false, nil
		}
		return id, true, nil
	}
	return 0, false, nil
}

// retrieveRandom picks a random visible entry and turns the context into a
// pure redirect at its permalink, without loading the full row. With no
// visible entries the context simply stays empty.
func (s *PageService) retrieveRandom(tx *gorm.DB, ctx *view.EntryContext) error {
	count, err := s.entryCount(tx, "")
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	var ids []int64
	if err := tx.Model(&db.Entry{}).
		Where("invisible = ?", false).
		Order("rank").
		Limit(1).
		Offset(rand.Intn(count)).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	stub := view.NewEntry(ids[0])
	if err := s.symlinks.Inject(tx, ctx.Meta, []*view.Entry{stub}); err != nil {
		return err
	}
	ctx.SetRedirectURL(s.rootURL + stub.Permalink)
	return nil
}

// decorate runs the shared annotation pipeline: permalinks, stored tags and
// the tag cloud for every context, series neighbors only for single-entry
// contexts.
func (s *PageService) decorate(tx *gorm.DB, web *view.WebContext, entryCtx *view.EntryContext) error {
	if err := s.symlinks.Inject(tx, web.Meta, web.Entries); err != nil {
		return err
	}
	if err := s.tags.InjectTags(tx, web.Lookup()); err != nil {
		return err
	}
	if err := s.tags.InjectCloud(tx, web); err != nil {
		return err
	}
	if entryCtx != nil {
		return s.series.Inject(tx, entryCtx)
	}
	return nil
}

func (s *PageService) entryCount(tx *gorm.DB, tag string) (int, error) {
	var count int64
	q := tx.Model(&db.Entry{})
	q = s.tags.ApplyFilter(q, tag)
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s *PageService) pageCount(tx *gorm.DB, tag string) (int, error) {
	count, err := s.entryCount(tx, tag)
	if err != nil {
		return 0, err
	}
	return (count + pageSize - 1) / pageSize, nil
}
