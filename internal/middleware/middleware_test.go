package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dokuly-PLM/dokuly-sub000/internal/plm/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func doRequest(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(testutil.JWTSecret))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})

	// 缺少凭证
	w := doRequest(r, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("No token: expected 401, got %d", w.Code)
	}

	// 伪造token
	w = doRequest(r, map[string]string{"Authorization": "Bearer not-a-token"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Bad token: expected 401, got %d", w.Code)
	}

	// 有效token注入用户上下文
	token := testutil.GenerateTestToken("user-001", "alice", "Alice")
	w = doRequest(r, map[string]string{"Authorization": "Bearer " + token})
	if w.Code != http.StatusOK {
		t.Fatalf("Valid token: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := testutil.ParseResponse(w)["user_id"]; got != "user-001" {
		t.Errorf("user_id = %v, want user-001", got)
	}
}

func TestOrgContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OrgContext())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"org_id": c.GetString("org_id")})
	})

	w := doRequest(r, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Missing X-Org-ID: expected 400, got %d", w.Code)
	}

	w = doRequest(r, map[string]string{"X-Org-ID": "org-001"})
	if w.Code != http.StatusOK {
		t.Fatalf("With X-Org-ID: expected 200, got %d", w.Code)
	}
	if got := testutil.ParseResponse(w)["org_id"]; got != "org-001" {
		t.Errorf("org_id = %v, want org-001", got)
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	// 未携带时生成
	w := doRequest(r, nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Generated request id must be echoed in the response header")
	}

	// 携带时透传
	w = doRequest(r, map[string]string{"X-Request-ID": "req-123"})
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}
}

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) {
		c.Set("user_id", "user-001")
		c.Set("org_id", "org-001")
		c.String(http.StatusOK, "pong")
	})

	doRequest(r, nil)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Log entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["user_id"] != "user-001" {
		t.Errorf("user_id field = %v", fields["user_id"])
	}
	if fields["org_id"] != "org-001" {
		t.Errorf("org_id field = %v", fields["org_id"])
	}
	if fields["request_id"] == "" {
		t.Error("request_id field must be populated")
	}
	if fields["path"] != "/ping" {
		t.Errorf("path field = %v", fields["path"])
	}
}
