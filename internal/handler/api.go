package handler

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rotalog/internal/config"
	"github.com/rotalog/internal/service"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	cfg      config.AppConfig
	entries  *service.EntryService
	pages    *service.PageService
	rotation *service.RotationService
	rss      *service.RssService
	log      zerolog.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig, log zerolog.Logger) *API {
	symlinks := service.NewSymlinkService()
	tags := service.NewTagService(cfg.HasMicro)
	series := service.NewSeriesService(symlinks)
	rss := service.NewRssService(gdb, symlinks)

	return &API{
		cfg:      cfg,
		entries:  service.NewEntryService(gdb, symlinks, tags, series, rss),
		pages:    service.NewPageService(gdb, cfg.RootURL, cfg.HasMicro, symlinks, tags, series),
		rotation: service.NewRotationService(gdb, rss, log),
		rss:      rss,
		log:      log,
	}
}

// renderMarkdown converts stored markdown into sanitized HTML for the
// response payload.
func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return template.HTMLEscapeString(content)
	}
	return sanitizer.Sanitize(buf.String())
}
