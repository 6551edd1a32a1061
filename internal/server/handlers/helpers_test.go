package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdboard/internal/repository/memory"
	"github.com/mamadbah2/herdboard/internal/service/cache"
	"github.com/mamadbah2/herdboard/internal/service/dashboard"
	"github.com/mamadbah2/herdboard/internal/service/persistence"
	"github.com/mamadbah2/herdboard/internal/service/records"
)

var fixedNow = time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func newService(t *testing.T) *dashboard.Service {
	t.Helper()
	gw := persistence.NewGateway(memory.NewStore(), nil, nil)
	store := records.NewStore(gw, nil)
	c := cache.New(gw, cache.DefaultTTL, nil, nil, cache.WithClock(func() time.Time { return fixedNow }))
	svc := dashboard.NewService(store, c, gw, nil, nil, dashboard.Options{
		SeedDemoHerd: true,
		Now:          func() time.Time { return fixedNow },
	})
	svc.Init(context.Background())
	return svc
}

type registrar interface {
	Register(rg *gin.RouterGroup)
}

func newEngine(handlers ...registrar) *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	for _, h := range handlers {
		h.Register(api)
	}
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
