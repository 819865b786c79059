package handler

import (
	"encoding/xml"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rotalog/internal/view"
)

// ShowHome renders the first untagged page.
func (a *API) ShowHome(c *gin.Context) {
	a.renderPage(c, view.PageRef{Index: 1})
}

// ShowPage renders a page addressed by one or two path segments: an ordinal,
// a tag, or a tag plus ordinal.
func (a *API) ShowPage(c *gin.Context) {
	ref, err := view.MakePageRef(c.Param("ref"), c.Param("secref"))
	if err != nil {
		if errors.Is(err, view.ErrBadIndex) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		a.serverError(c, err)
		return
	}
	a.renderPage(c, ref)
}

func (a *API) renderPage(c *gin.Context, ref view.PageRef) {
	ctx, err := a.pages.RetrievePage(ref)
	if err != nil {
		a.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.pagePayload(ctx))
}

// ShowEntry renders a single entry resolved by symlink or numeric id, or
// redirects for redirect stubs and the special "random" reference.
func (a *API) ShowEntry(c *gin.Context) {
	a.renderEntry(c, false)
}

// ShowMeta is ShowEntry in the meta namespace.
func (a *API) ShowMeta(c *gin.Context) {
	a.renderEntry(c, true)
}

func (a *API) renderEntry(c *gin.Context, meta bool) {
	ctx, err := a.pages.RetrieveEntry(c.Param("ref"), meta)
	if err != nil {
		a.serverError(c, err)
		return
	}
	if url := ctx.RedirectURL(); url != "" {
		c.Redirect(http.StatusFound, url)
		return
	}
	c.JSON(http.StatusOK, a.entryPayloadFor(ctx))
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
}

// ShowRssFeed serves the bounded recency feed as RSS 2.0.
func (a *API) ShowRssFeed(c *gin.Context) {
	ctx, err := a.rss.Feed()
	if err != nil {
		a.serverError(c, err)
		return
	}

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.cfg.SiteTitle,
			Link:        a.cfg.RootURL,
			Description: a.siteDescription(),
		},
	}
	for _, e := range ctx.Entries {
		link := a.cfg.RootURL + e.Permalink
		feed.Channel.Items = append(feed.Channel.Items, rssItem{
			Title:       e.Title,
			Link:        link,
			GUID:        link,
			PubDate:     e.PubDate,
			Description: renderMarkdown(e.Summary),
		})
	}

	body, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		a.serverError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", append([]byte(xml.Header), body...))
}

func (a *API) serverError(c *gin.Context, err error) {
	a.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
