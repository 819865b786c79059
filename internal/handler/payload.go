package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rotalog/internal/view"
)

// entryRefPayload is a lightweight entry reference used in series links.
type entryRefPayload struct {
	ID        int64  `json:"id"`
	Permalink string `json:"permalink"`
}

type seriesPayload struct {
	First *entryRefPayload `json:"first"`
	Prev  *entryRefPayload `json:"prev"`
	Next  *entryRefPayload `json:"next"`
	Last  *entryRefPayload `json:"last"`
}

type entryPayload struct {
	ID        int64           `json:"id"`
	Color     int             `json:"color"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Permalink string          `json:"permalink"`
	ReadMore  bool            `json:"read_more"`
	Tags      []string        `json:"tags"`
	Series    []seriesPayload `json:"series,omitempty"`
}

type cloudPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Color int    `json:"color"`
}

func makeEntryRef(e *view.Entry) *entryRefPayload {
	if e == nil {
		return nil
	}
	return &entryRefPayload{ID: e.ID, Permalink: e.Permalink}
}

func makeEntryPayload(e *view.Entry) entryPayload {
	p := entryPayload{
		ID:        e.ID,
		Color:     e.Color,
		Title:     e.Title,
		Content:   renderMarkdown(e.Content),
		Permalink: e.Permalink,
		ReadMore:  e.ReadMore,
		Tags:      e.Tags(),
	}
	for _, links := range e.Series {
		p.Series = append(p.Series, seriesPayload{
			First: makeEntryRef(links.First),
			Prev:  makeEntryRef(links.Prev),
			Next:  makeEntryRef(links.Next),
			Last:  makeEntryRef(links.Last),
		})
	}
	return p
}

// basePayload carries the site profile plus everything common to the page
// and single-entry views.
func (a *API) basePayload(ctx *view.WebContext) gin.H {
	entries := make([]entryPayload, 0, len(ctx.Entries))
	for _, e := range ctx.Entries {
		entries = append(entries, makeEntryPayload(e))
	}

	var cloud []cloudPayload
	for _, tc := range ctx.TagCloud() {
		cloud = append(cloud, cloudPayload{Name: tc.Name, Count: tc.Count, Color: tc.Color})
	}

	return gin.H{
		"site_title":     a.cfg.SiteTitle,
		"author_name":    a.cfg.AuthorName,
		"author_href":    a.cfg.AuthorHref,
		"root_url":       a.cfg.RootURL,
		"has_powered_by": a.cfg.HasPoweredBy,
		"donate_link":    a.cfg.DonateLink,
		"not_found":      ctx.Empty(),
		"entries":        entries,
		"tag_cloud":      cloud,
	}
}

func (a *API) pagePayload(ctx *view.PageContext) gin.H {
	payload := a.basePayload(&ctx.WebContext)
	payload["page_title"] = a.cfg.SiteTitle
	payload["page_url"] = a.cfg.RootURL
	payload["page_description"] = a.siteDescription()
	payload["prev"] = nullableLink(ctx.Prev)
	payload["next"] = nullableLink(ctx.Next)
	payload["navi"] = ctx.Prev != "" || ctx.Next != ""
	return payload
}

func (a *API) entryPayloadFor(ctx *view.EntryContext) gin.H {
	payload := a.basePayload(&ctx.WebContext)
	if ctx.Empty() {
		payload["page_title"] = a.cfg.SiteTitle
		payload["page_url"] = a.cfg.RootURL
		payload["page_description"] = a.siteDescription()
		return payload
	}
	first := ctx.Entries[0]
	payload["page_title"] = a.cfg.SiteTitle + " : " + first.Title
	payload["page_url"] = a.cfg.RootURL + first.Permalink
	payload["page_description"] = first.Teaser
	return payload
}

func (a *API) siteDescription() string {
	if a.cfg.AuthorName != "" {
		return a.cfg.SiteTitle + " by " + a.cfg.AuthorName
	}
	return a.cfg.SiteTitle
}

func nullableLink(link string) interface{} {
	if link == "" {
		return nil
	}
	return link
}
