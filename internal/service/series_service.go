package service

import (
	"github.com/rotalog/internal/db"
	"github.com/rotalog/internal/view"
	"gorm.io/gorm"
)

// SeriesPosition is one series membership in an entry payload.
type SeriesPosition struct {
	Series string `json:"series"`
	Index  int    `json:"index"`
}

// SeriesService owns the entry/series relation and neighbor navigation.
type SeriesService struct {
	symlinks *SymlinkService
}

// NewSeriesService creates a SeriesService instance.
func NewSeriesService(symlinks *SymlinkService) *SeriesService {
	return &SeriesService{symlinks: symlinks}
}

// Replace swaps the entry's series memberships wholesale.
func (s *SeriesService) Replace(tx *gorm.DB, entryID int64, series []SeriesPosition) error {
	if err := s.DeleteFor(tx, entryID); err != nil {
		return err
	}
	for _, sp := range series {
		if err := tx.Create(&db.SeriesAssignment{
			EntryID:  entryID,
			Series:   sp.Series,
			Position: sp.Index,
		}).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteFor removes every series membership of the entry.
func (s *SeriesService) DeleteFor(tx *gorm.DB, entryID int64) error {
	return tx.Where("entry_id = ?", entryID).Delete(&db.SeriesAssignment{}).Error
}

// Inject annotates every entry in the context with its series memberships.
// For each membership the first/prev/next/last neighbors are computed from
// the full ordered member list of that series; neighbor references resolve
// to lightweight stubs carrying only id and permalink, deduplicated across
// the whole context.
func (s *SeriesService) Inject(tx *gorm.DB, ctx *view.EntryContext) error {
	if ctx.Empty() {
		return nil
	}

	f := newSeriesFetcher(tx)
	if err := f.fetch(ctx.Lookup()); err != nil {
		return err
	}
	return s.symlinks.Inject(tx, ctx.Meta, f.refs())
}

// seriesFetcher caches full series member lists and neighbor stubs for one
// request. Both caches are populated explicitly during fetch, never lazily
// on read.
type seriesFetcher struct {
	tx          *gorm.DB
	seriesCache map[string][]db.SeriesAssignment
	refCache    map[int64]*view.Entry
}

func newSeriesFetcher(tx *gorm.DB) *seriesFetcher {
	return &seriesFetcher{
		tx:          tx,
		seriesCache: make(map[string][]db.SeriesAssignment),
		refCache:    make(map[int64]*view.Entry),
	}
}

func (f *seriesFetcher) fetch(lookup map[int64]*view.Entry) error {
	ids := make([]int64, 0, len(lookup))
	for id := range lookup {
		ids = append(ids, id)
	}

	var rows []db.SeriesAssignment
	if err := f.tx.Select("entry_id", "series", "position").
		Where("entry_id IN ?", ids).
		Order("series").
		Find(&rows).Error; err != nil {
		return err
	}

	for _, row := range rows {
		links, err := f.make(row)
		if err != nil {
			return err
		}
		e := lookup[row.EntryID]
		e.Series = append(e.Series, links)
	}
	return nil
}

func (f *seriesFetcher) make(row db.SeriesAssignment) (view.SeriesLinks, error) {
	members, err := f.retrieve(row.Series)
	if err != nil {
		return view.SeriesLinks{}, err
	}

	links := view.SeriesLinks{
		First: f.ref(members[0].EntryID),
		Last:  f.ref(members[len(members)-1].EntryID),
	}
	if id, ok := findPrev(row.Position, members); ok {
		links.Prev = f.ref(id)
	}
	if id, ok := findNext(row.Position, members); ok {
		links.Next = f.ref(id)
	}
	return links, nil
}

// retrieve loads the full ordered member list of a series, once per request.
func (f *seriesFetcher) retrieve(name string) ([]db.SeriesAssignment, error) {
	if members, ok := f.seriesCache[name]; ok {
		return members, nil
	}
	var members []db.SeriesAssignment
	if err := f.tx.Select("entry_id", "position").
		Where("series = ?", name).
		Order("position").
		Find(&members).Error; err != nil {
		return nil, err
	}
	f.seriesCache[name] = members
	return members, nil
}

func (f *seriesFetcher) ref(id int64) *view.Entry {
	if e, ok := f.refCache[id]; ok {
		return e
	}
	e := view.NewEntry(id)
	f.refCache[id] = e
	return e
}

func (f *seriesFetcher) refs() []*view.Entry {
	refs := make([]*view.Entry, 0, len(f.refCache))
	for _, e := range f.refCache {
		refs = append(refs, e)
	}
	return refs
}

// findPrev returns the member with the highest position strictly below pos.
func findPrev(pos int, members []db.SeriesAssignment) (int64, bool) {
	var best db.SeriesAssignment
	found := false
	for _, m := range members {
		if m.Position >= pos {
			continue
		}
		if !found || best.Position < m.Position {
			best = m
			found = true
		}
	}
	return best.EntryID, found
}

// findNext returns the member with the lowest position strictly above pos.
func findNext(pos int, members []db.SeriesAssignment) (int64, bool) {
	var best db.SeriesAssignment
	found := false
	for _, m := range members {
		if m.Position <= pos {
			continue
		}
		if !found || best.Position > m.Position {
			best = m
			found = true
		}
	}
	return best.EntryID, found
}
