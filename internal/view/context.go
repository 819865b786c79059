package view

import (
	"sort"
	"strings"

	"github.com/rotalog/internal/db"
)

// Context collects resolved entries for one request. Meta marks contexts
// reached through the /meta namespace, which flips permalink precedence.
type Context struct {
	Meta    bool
	Entries []*Entry
}

// Empty reports whether no entry was resolved.
func (c *Context) Empty() bool {
	return len(c.Entries) == 0
}

// Lookup indexes the collected entries by id.
func (c *Context) Lookup() map[int64]*Entry {
	lookup := make(map[int64]*Entry, len(c.Entries))
	for _, e := range c.Entries {
		lookup[e.ID] = e
	}
	return lookup
}

// TagCount is one tag cloud item.
type TagCount struct {
	Name  string
	Count int
	Color int
}

// WebContext 是页面类上下文的公共部分：条目列表加标签云。
type WebContext struct {
	Context

	hasMicro bool
	page     bool
	cloud    []TagCount
}

// AddRow translates a raw entry row into a view entry and collects it.
// Entries whose body equals their teaser are short-form posts: they render in
// full and, when the micro feature is on, receive the synthetic micro tag.
// Longer entries render only their teaser on multi-entry pages.
func (c *WebContext) AddRow(row db.Entry) *Entry {
	e := NewEntry(row.ID)
	e.Title = DisplayTitle(row.ID, row.Title)
	if row.RedirectURL != nil {
		e.RedirectURL = *row.RedirectURL
	}
	switch {
	case row.Body == row.Teaser:
		if c.hasMicro {
			e.AddTag("micro")
		}
		e.Content = row.Teaser
	case c.page:
		e.Content = strings.TrimSuffix(strings.TrimSpace(row.Teaser), "<br />")
		e.ReadMore = true
	default:
		e.Content = row.Body
	}
	e.Teaser = row.Teaser
	c.Entries = append(c.Entries, e)
	return e
}

// AddCloudTag records one tag cloud item.
func (c *WebContext) AddCloudTag(name string, count int) {
	c.cloud = append(c.cloud, TagCount{
		Name:  name,
		Count: count,
		Color: count%6 + 1,
	})
}

// TagCloud returns the cloud sorted by count descending, ties broken by name
// ascending, or nil when no tag was recorded.
func (c *WebContext) TagCloud() []TagCount {
	if len(c.cloud) == 0 {
		return nil
	}
	cloud := make([]TagCount, len(c.cloud))
	copy(cloud, c.cloud)
	sort.SliceStable(cloud, func(i, j int) bool {
		if cloud[i].Count != cloud[j].Count {
			return cloud[i].Count > cloud[j].Count
		}
		return cloud[i].Name < cloud[j].Name
	})
	return cloud
}

// Page reports whether this is a multi-entry page context.
func (c *WebContext) Page() bool {
	return c.page
}

// EntryContext renders a page with a single entry.
type EntryContext struct {
	WebContext

	redirectURL string
}

// NewEntryContext 构造单条目上下文。
func NewEntryContext(hasMicro bool) *EntryContext {
	return &EntryContext{WebContext: WebContext{hasMicro: hasMicro}}
}

// SetRedirectURL marks the whole context as a redirect response.
func (c *EntryContext) SetRedirectURL(url string) {
	c.redirectURL = url
}

// RedirectURL returns the redirect target for this context, if any: either an
// explicitly set one (random entry picks) or the resolved entry's own
// redirect stub URL.
func (c *EntryContext) RedirectURL() string {
	if c.redirectURL != "" {
		return c.redirectURL
	}
	if len(c.Entries) == 0 {
		return ""
	}
	return c.Entries[0].RedirectURL
}

// PageContext renders a multi-entry page with prev/next navigation.
type PageContext struct {
	WebContext

	Prev string
	Next string
}

// NewPageContext 构造多条目分页上下文。
func NewPageContext(hasMicro bool) *PageContext {
	return &PageContext{WebContext: WebContext{hasMicro: hasMicro, page: true}}
}

// RssContext collects feed items in feed position order.
type RssContext struct {
	Context
}
