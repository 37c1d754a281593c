package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/devfolio-next/internal/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(`{"email":" Test@Example.com "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndJSONField("email")(c)
	if key != "test@example.com|1.2.3.4" {
		t.Fatalf("key want test@example.com|1.2.3.4 got %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Test@Example.com") {
		t.Fatalf("request body should be restored after reading field")
	}
}

func TestKeyByIPAndJSONFieldOversizedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	padding := strings.Repeat("a", constants.RateLimitBodyMaxBytes)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(`{"email":"big@example.com","pad":"`+padding+`"}`))
	c.Request.RemoteAddr = "1.2.3.4:5678"

	if key := KeyByIPAndJSONField("email")(c); key != "1.2.3.4" {
		t.Fatalf("oversized body should fall back to ip key, got %s", key)
	}
	body, _ := io.ReadAll(c.Request.Body)
	if len(body) > constants.RateLimitBodyMaxBytes {
		t.Fatalf("restored body want at most %d bytes got %d", constants.RateLimitBodyMaxBytes, len(body))
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d want 200 got %d", i, w.Code)
		}
	}
}

func TestRateLimitMiddlewareBlocksAfterLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := gin.New()
	r.Use(RateLimitMiddleware(client, RateLimitRule{Prefix: "test:rate:login", WindowSeconds: 60, MaxRequests: 2}, KeyByIPAndJSONField("email")))
	r.POST("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	send := func(email string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"`+email+`"}`))
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := send("ana@example.com"); w.Code != http.StatusOK {
			t.Fatalf("request %d want 200 got %d", i, w.Code)
		}
	}
	w := send("ana@example.com")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request want 429 got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Fatalf("retry after want 60 got %q", w.Header().Get("Retry-After"))
	}
	if !strings.Contains(w.Body.String(), "retry in 60 seconds") {
		t.Fatalf("message should carry the wait time, got %s", w.Body.String())
	}

	if w := send("bob@example.com"); w.Code != http.StatusOK {
		t.Fatalf("other email should have its own bucket, got %d", w.Code)
	}

	mr.FastForward(61 * time.Second)
	if w := send("ana@example.com"); w.Code != http.StatusOK {
		t.Fatalf("window expired want 200 got %d", w.Code)
	}
}

func TestRateLimitMiddlewareRedisDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	r := gin.New()
	r.Use(RateLimitMiddleware(client, RateLimitRule{WindowSeconds: 60, MaxRequests: 5}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("redis down want 503 got %d", w.Code)
	}
}
