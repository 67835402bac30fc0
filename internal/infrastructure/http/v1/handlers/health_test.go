package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "prodtrack/internal/core/numerator"
	"prodtrack/internal/infrastructure/storage/postgres"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func healthRouter(cfg HealthConfig) *gin.Engine {
	h := NewHealthHandler(cfg)
	r := gin.New()
	r.GET("/health/live", h.Live)
	r.GET("/health/ready", h.Ready)
	r.GET("/health/info", h.Info)
	return r
}

type readyBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func TestHealth_Ready(t *testing.T) {
	dbUp := pingFunc(func(context.Context) error { return nil })
	dbDown := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name       string
		db         Pinger
		counters   CounterCheck
		wantStatus int
		wantCheck  map[string]string
	}{
		{
			name:       "all provisioned",
			db:         dbUp,
			counters:   func(context.Context) ([]corenumerator.Kind, error) { return nil, nil },
			wantStatus: http.StatusOK,
			wantCheck:  map[string]string{"database": "healthy", "sequence_counters": "healthy"},
		},
		{
			name: "missing counters",
			db:   dbUp,
			counters: func(context.Context) ([]corenumerator.Kind, error) {
				return []corenumerator.Kind{corenumerator.KindOrder, corenumerator.KindProductionOrder}, nil
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCheck: map[string]string{
				"database":          "healthy",
				"sequence_counters": "missing: order-sequence, production-order-sequence",
			},
		},
		{
			name:       "database down skips counter check",
			db:         dbDown,
			counters:   func(context.Context) ([]corenumerator.Kind, error) { t.Fatal("counters checked"); return nil, nil },
			wantStatus: http.StatusServiceUnavailable,
			wantCheck:  map[string]string{"database": "unhealthy: connection refused"},
		},
		{
			name:       "no counter check configured",
			db:         dbUp,
			wantStatus: http.StatusOK,
			wantCheck:  map[string]string{"database": "healthy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := healthRouter(HealthConfig{DB: tt.db, Counters: tt.counters})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			var body readyBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCheck, body.Checks)
		})
	}
}

func TestHealth_LiveAndInfo(t *testing.T) {
	r := healthRouter(HealthConfig{
		DB:      pingFunc(func(context.Context) error { return errors.New("down") }),
		Version: "1.2.3",
		Stats:   func() postgres.PoolStats { return postgres.PoolStats{TotalConns: 4, MaxConns: 10} },
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/info", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var info struct {
		App      string             `json:"app"`
		Version  string             `json:"version"`
		Database postgres.PoolStats `json:"database"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "prodtrack", info.App)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, int32(4), info.Database.TotalConns)
	assert.Equal(t, int32(10), info.Database.MaxConns)
}
