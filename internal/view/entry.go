package view

import (
	"sort"
	"strconv"
)

// Entry is the render-ready projection of a single entry row. Fields that do
// not apply to a given context stay at their zero value: RedirectURL is only
// set for redirect stubs, Summary and PubDate only for feed items.
type Entry struct {
	ID          int64
	Color       int
	Title       string
	Content     string
	Teaser      string
	Summary     string
	PubDate     string
	Permalink   string
	RedirectURL string
	ReadMore    bool
	Series      []SeriesLinks

	tags map[string]struct{}
}

// SeriesLinks carries neighbor references for one series membership.
// First and Last are always present; Prev and Next are nil at the edges.
type SeriesLinks struct {
	First *Entry
	Prev  *Entry
	Next  *Entry
	Last  *Entry
}

// NewEntry 构造一个空条目视图，颜色由 id 派生。
func NewEntry(id int64) *Entry {
	return &Entry{
		ID:    id,
		Color: int(id%6) + 1,
		tags:  make(map[string]struct{}),
	}
}

// AddTag records a tag on the entry; duplicates are collapsed.
func (e *Entry) AddTag(tag string) {
	e.tags[tag] = struct{}{}
}

// HasTag reports whether the entry carries the given tag.
func (e *Entry) HasTag(tag string) bool {
	_, ok := e.tags[tag]
	return ok
}

// Tags returns the entry's tags sorted by name, or nil when there are none.
func (e *Entry) Tags() []string {
	if len(e.tags) == 0 {
		return nil
	}
	tags := make([]string, 0, len(e.tags))
	for tag := range e.tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// DisplayTitle is the human-visible fallback for untitled entries.
func DisplayTitle(id int64, title string) string {
	if title == "" {
		return "#" + strconv.FormatInt(id, 10)
	}
	return title
}
