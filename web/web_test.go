package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/JamesCliffordSpratt/macros-sub001/cache"
	"github.com/JamesCliffordSpratt/macros-sub001/ledger"
	"github.com/JamesCliffordSpratt/macros-sub001/macro"
	"github.com/JamesCliffordSpratt/macros-sub001/store"
)

const appleNote = `---
serving_size: 100g
calories: 52
protein: 0.3
fat: 0.2
carbs: 14
---
`

const mondayDoc = "```macros" + `
id:2024-05-01
Apple:150g
` + "```" + `
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()

	assert.NoError(t, os.MkdirAll(filepath.Join(root, "foods"), 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(root, "foods", "Apple.md"), []byte(appleNote), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(root, "monday.md"), []byte(mondayDoc), 0o644))

	quiet := log.New(io.Discard)
	vault := store.NewVault(root, store.WithVaultLogger(quiet))
	foods := store.NewFoodDir(filepath.Join(root, "foods"), quiet)
	agg := ledger.NewAggregator(macro.NewResolver(foods), ledger.WithLogger(quiet))
	coordinator := cache.NewCoordinator(vault, agg, cache.WithLogger(quiet))

	return New("127.0.0.1:0", vault, foods, coordinator, quiet)
}

func TestAPITotals(t *testing.T) {
	server := newTestServer(t)
	mux := server.setupRouter()

	t.Run("SingleIdentifier", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/totals?ids=2024-05-01", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var response TotalsResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 1, len(response.Breakdown))
		assert.Equal(t, "2024-05-01", response.Breakdown[0].ID)
		assert.Equal(t, "78", response.Total.Calories.String())
	})

	t.Run("MissingIdentifier", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/totals", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnknownIdentifier", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/totals?ids=2099-01-01", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAPIFoods(t *testing.T) {
	server := newTestServer(t)
	mux := server.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/foods", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response FoodsResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, 1, len(response.Foods))
	assert.Equal(t, "Apple", response.Foods[0].Name)
	assert.Equal(t, "52", response.Foods[0].Calories.String())
}

func TestSSEClientRedraw(t *testing.T) {
	done := make(chan struct{})
	client := &sseClient{
		ids:    []string{"2024-05-01"},
		events: make(chan []byte, 10),
		done:   done,
	}

	assert.True(t, client.Mounted())
	assert.Equal(t, []string{"2024-05-01"}, client.BoundIdentifiers())

	assert.NoError(t, client.Redraw(t.Context(), cache.Result{}))
	payload := <-client.events

	var response TotalsResponse
	assert.NoError(t, json.Unmarshal(payload, &response))

	close(done)
	assert.False(t, client.Mounted())
}

func TestRelevantEvent(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"markdown write", fsnotify.Event{Name: "note.md", Op: fsnotify.Write}, true},
		{"markdown create", fsnotify.Event{Name: "note.md", Op: fsnotify.Create}, true},
		{"non-markdown write", fsnotify.Event{Name: "note.txt", Op: fsnotify.Write}, false},
		{"markdown chmod", fsnotify.Event{Name: "note.md", Op: fsnotify.Chmod}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevantEvent(tt.event))
		})
	}
}
