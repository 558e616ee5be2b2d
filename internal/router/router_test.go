package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	_ "complianceadvisor/docs"
	"complianceadvisor/internal/auth"
	"complianceadvisor/internal/config"
	"complianceadvisor/internal/handler"
	"complianceadvisor/internal/router"
)

func newRoutedEcho() *echo.Echo {
	e := echo.New()
	router.Register(
		e,
		&config.Config{MaxUploadSize: "1M"},
		zap.NewNop(),
		auth.NewJWTService("test-secret", time.Hour),
		nil,
		handler.NewAuthHandler(nil, false),
		handler.NewUserHandler(),
		handler.NewComplianceHandler(nil),
		handler.NewDocumentHandler(nil),
	)
	return e
}

// documented returns "METHOD /path" for every operation in the served OpenAPI document.
func documented(t *testing.T) map[string]bool {
	t.Helper()
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	ops := map[string]bool{}
	for path, methods := range doc.Paths {
		for method := range methods {
			ops[strings.ToUpper(method)+" "+path] = true
		}
	}
	return ops
}

func TestRoutesMatchAPIDocs(t *testing.T) {
	docs := documented(t)

	routed := map[string]bool{}
	for _, r := range newRoutedEcho().Routes() {
		// Groups with middleware also register not-found catch-alls.
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			continue
		}
		if r.Path == "/health" || strings.HasPrefix(r.Path, "/swagger") {
			continue
		}
		path := r.Path
		if i := strings.Index(path, "/:"); i >= 0 {
			path = path[:i+1] + "{" + path[i+2:] + "}"
		}
		routed[r.Method+" "+path] = true
	}

	for op := range routed {
		assert.True(t, docs[op], "route %s is not documented", op)
	}
	for op := range docs {
		assert.True(t, routed[op], "documented operation %s has no route", op)
	}
}

func TestHealthIsPublic(t *testing.T) {
	e := newRoutedEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
