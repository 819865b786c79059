package config

import (
	"fmt"
	"os"
	"strings"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr   string
	Port         string
	DatabasePath string
	APIKey       string
	APIKeyHash   string
	RootURL      string
	SiteTitle    string
	AuthorName   string
	AuthorHref   string
	DonateLink   string
	HasMicro     bool
	HasPoweredBy bool
	GinMode      string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "4000"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "rotalog.db"
	}

	rootURL := strings.TrimSpace(os.Getenv("ROOT_URL"))
	if rootURL == "" {
		rootURL = fmt.Sprintf("http://localhost:%s", port)
	}
	rootURL = strings.TrimRight(rootURL, "/")

	siteTitle := strings.TrimSpace(os.Getenv("SITE_TITLE"))
	if siteTitle == "" {
		siteTitle = "Rotalog"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	return AppConfig{
		ListenAddr:   listenAddr,
		Port:         port,
		DatabasePath: databasePath,
		APIKey:       strings.TrimSpace(os.Getenv("API_KEY")),
		APIKeyHash:   strings.TrimSpace(os.Getenv("API_KEY_HASH")),
		RootURL:      rootURL,
		SiteTitle:    siteTitle,
		AuthorName:   strings.TrimSpace(os.Getenv("AUTHOR_NAME")),
		AuthorHref:   strings.TrimSpace(os.Getenv("AUTHOR_HREF")),
		DonateLink:   strings.TrimSpace(os.Getenv("DONATE_LINK")),
		HasMicro:     boolEnv("HAS_MICRO", true),
		HasPoweredBy: boolEnv("HAS_POWERED_BY", true),
		GinMode:      ginMode,
	}
}

func boolEnv(name string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
