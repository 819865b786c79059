package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rotalog/internal/config"
	"github.com/rotalog/internal/db"
	"github.com/rotalog/internal/handler"
	"github.com/rotalog/internal/router"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	e2eAPIKey  = "e2e-secret"
	e2eBaseURL = "http://example.test"
)

type e2eSuite struct {
	handler  http.Handler
	entryID  int64
	serialID int64
}

func TestE2E_AllInterfaces(t *testing.T) {
	suite := newE2ESuite(t)

	t.Run("public endpoints", suite.testPublicEndpoints)
	t.Run("sync api", suite.testSyncAPI)
	t.Run("rotation and feed", suite.testRotationAndFeed)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:e2e-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	// 用哈希配置走 bcrypt 校验分支
	hashed, err := bcrypt.GenerateFromPassword([]byte(e2eAPIKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash api key: %v", err)
	}
	cfg := config.AppConfig{
		APIKeyHash: string(hashed),
		RootURL:    e2eBaseURL,
		SiteTitle:  "Rotalog",
		AuthorName: "E2E",
		HasMicro:   true,
		GinMode:    gin.TestMode,
	}

	api := handler.NewAPI(gdb, cfg, zerolog.Nop())
	suite := &e2eSuite{handler: router.Setup(api, cfg)}

	suite.entryID = suite.createEntry(t, `{"body":"Hello, world","signature":"e2e-1","title":"First","tags":["notes"],"symlink":"first"}`)
	suite.serialID = suite.createEntry(t, `{"body":"Part one","signature":"e2e-2","series":[{"series":"a-tale","index":1}]}`)
	suite.createEntry(t, `{"body":"Part two","signature":"e2e-3","series":[{"series":"a-tale","index":2}]}`)
	suite.createEntry(t, `{"body":"About this site","signature":"e2e-4","metalink":"about"}`)
	suite.createEntry(t, `{"url":"https://example.com/moved","signature":"e2e-5"}`)

	return suite
}

func (s *e2eSuite) testPublicEndpoints(t *testing.T) {
	checkJSON := func(name, path, expect string) {
		t.Helper()
		resp := s.request(t, http.MethodGet, path, "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", name, resp.StatusCode)
		}
		body := readBody(t, resp)
		if expect != "" && !strings.Contains(body, expect) {
			t.Fatalf("%s: response does not contain %q\nbody=%s", name, expect, body)
		}
	}

	checkJSON("home", "/", `"site_title":"Rotalog"`)
	checkJSON("home content", "/", "Hello, world")
	checkJSON("tag page", "/page/notes", `"title":"First"`)
	checkJSON("meta page", "/page/meta", "About this site")
	checkJSON("past last page", "/page/9", `"not_found":true`)
	checkJSON("entry by symlink", "/entry/first", `"permalink":"/entry/first"`)
	checkJSON("entry by id", fmt.Sprintf("/entry/%d", s.serialID), `"series"`)
	checkJSON("meta entry", "/meta/about", `"permalink":"/meta/about"`)

	resp := s.request(t, http.MethodGet, "/page/foo/bar", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad page number: expected 400, got %d", resp.StatusCode)
	}

	resp = s.request(t, http.MethodGet, "/entry/random", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("random entry: expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, e2eBaseURL+"/") {
		t.Fatalf("random entry: unexpected location %q", loc)
	}

	resp = s.request(t, http.MethodGet, "/ping", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ping: expected 200, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testSyncAPI(t *testing.T) {
	resp := s.request(t, http.MethodGet, "/api/index", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("index without key: expected 403, got %d", resp.StatusCode)
	}

	resp = s.request(t, http.MethodGet, "/api/index?api_key=wrong", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("index with wrong key: expected 403, got %d", resp.StatusCode)
	}

	resp = s.request(t, http.MethodGet, "/api/index?api_key="+e2eAPIKey, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("index: expected 200, got %d", resp.StatusCode)
	}
	var digests []struct {
		ID        int64  `json:"id"`
		Signature string `json:"signature"`
	}
	decodeJSON(t, resp, &digests)
	if len(digests) != 5 {
		t.Fatalf("expected 5 digests, got %d", len(digests))
	}

	update := fmt.Sprintf(`{"id":%d,"body":"Hello again","signature":"e2e-1b","title":"First","tags":["notes"],"symlink":"first"}`, s.entryID)
	resp = s.request(t, http.MethodPost, "/api/update?api_key="+e2eAPIKey, update)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d, body=%s", resp.StatusCode, readBody(t, resp))
	}

	resp = s.request(t, http.MethodGet, "/entry/first", "")
	defer resp.Body.Close()
	if body := readBody(t, resp); !strings.Contains(body, "Hello again") {
		t.Fatalf("expected updated body to be served, got %s", body)
	}
}

func (s *e2eSuite) testRotationAndFeed(t *testing.T) {
	for i := 0; i < 2; i++ {
		resp := s.request(t, http.MethodPost, "/api/rotate?api_key="+e2eAPIKey, "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("rotate: expected 200, got %d", resp.StatusCode)
		}
	}

	resp := s.request(t, http.MethodGet, "/rss.xml", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rss: expected 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "<rss") || !strings.Contains(body, "<item>") {
		t.Fatalf("expected rotated entries in feed, got %s", body)
	}
	if !strings.Contains(body, "<title>Rotalog</title>") {
		t.Fatalf("expected channel title in feed, got %s", body)
	}
}

func (s *e2eSuite) createEntry(t *testing.T, payload string) int64 {
	t.Helper()

	resp := s.request(t, http.MethodPost, "/api/create?api_key="+e2eAPIKey, payload)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create: expected 200, got %d, body=%s", resp.StatusCode, readBody(t, resp))
	}
	var created struct {
		Content int64 `json:"content"`
	}
	decodeJSON(t, resp, &created)
	if created.Content == 0 {
		t.Fatalf("create returned empty id")
	}
	return created.Content
}

func (s *e2eSuite) request(t *testing.T, method, path, body string) *http.Response {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, e2eBaseURL+path, nil)
	} else {
		req = httptest.NewRequest(method, e2eBaseURL+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w.Result()
}

func decodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	body := readBody(t, resp)
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		t.Fatalf("failed to decode json: %v\nbody=%s", err, body)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}
