package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/database"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/http/handler"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/http/router"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/repository"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/service"
)

type catalogTestServerOptions struct {
	imageDir   string
	imageStore service.ImageStore
	cache      service.ProductListCacheStore
	cacheTTL   time.Duration
	limiter    router.APIRateLimiterFunc
	rateRPM    int
}

type catalogTestServer struct {
	baseURL string
	client  *http.Client
	db      *gorm.DB
	repo    repository.ProductRepository
}

func newCatalogTestServer(t *testing.T, opts catalogTestServerOptions) *catalogTestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := opts.imageStore
	var images *handler.ImageHandler
	if store == nil {
		if opts.imageDir == "" {
			opts.imageDir = t.TempDir()
		}
		store = service.NewLocalImageStore(opts.imageDir)
		images = handler.NewImageHandler(opts.imageDir)
	}
	rpm := opts.rateRPM
	if rpm <= 0 {
		rpm = 10_000
	}

	repo := repository.NewProductRepository(db)
	products := service.NewProductService(repo, opts.cache, opts.cacheTTL)
	h := router.NewRouter(router.Dependencies{
		ProductHandler:  handler.NewProductHandler(products, service.NewImageService(store)),
		ImageHandler:    images,
		CORSOrigins:     []string{"http://localhost:3000"},
		APIRateLimitRPM: rpm,
		APIRateLimiter:  opts.limiter,
		MaxBodyBytes:    1 << 20,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.Close()
		_ = sqlDB.Close()
	})
	return &catalogTestServer{baseURL: srv.URL, client: srv.Client(), db: db, repo: repo}
}

func (s *catalogTestServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.baseURL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func insertPayload(name string, price float64, image string) map[string]any {
	return map[string]any{
		"name":        name,
		"category":    "BEVERAGE",
		"price":       price,
		"stock":       5,
		"description": name + " description",
		"image":       image,
	}
}

type insertResult struct {
	Message string `json:"message"`
	Image   string `json:"image"`
	Error   string `json:"error"`
}

func mustInsert(t *testing.T, s *catalogTestServer, payload map[string]any) insertResult {
	t.Helper()
	resp, raw := s.do(t, http.MethodPost, "/product/insert", payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("insert: status=%d body=%s", resp.StatusCode, raw)
	}
	var res insertResult
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatalf("decode insert: %v", err)
	}
	return res
}
