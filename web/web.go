// Package web provides an HTTP server over a macro vault.
//
// The server exposes a read API for ledger totals and food records, plus a
// Server-Sent Events stream that pushes fresh results whenever the vault
// changes on disk. A file watcher feeds every change through the refresh
// coordinator, so concurrent edits still produce exactly one reload cycle.
//
// SECURITY WARNING: This server has no authentication and should only be
// bound to localhost (127.0.0.1). Do not expose it to untrusted networks.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/JamesCliffordSpratt/macros-sub001/cache"
	"github.com/JamesCliffordSpratt/macros-sub001/store"
)

type Server struct {
	Addr      string
	Version   string
	CommitSHA string

	vault       *store.Vault
	foods       *store.FoodDir
	coordinator *cache.Coordinator
	logger      *log.Logger
}

// New creates a server over the given vault, food directory and refresh
// coordinator.
func New(addr string, vault *store.Vault, foods *store.FoodDir, coordinator *cache.Coordinator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		Addr:        addr,
		vault:       vault,
		foods:       foods,
		coordinator: coordinator,
		logger:      logger,
	}
}

func (s *Server) Start(ctx context.Context) error {
	if err := s.startWatcher(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	mux := s.setupRouter()
	return http.ListenAndServe(s.Addr, mux)
}

func (s *Server) setupRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/totals", s.handleGetTotals)
	mux.HandleFunc("GET /api/foods", s.handleGetFoods)
	mux.HandleFunc("GET /api/events", s.handleSSE)
	mux.HandleFunc("GET /api/version", s.handleGetVersion)

	return mux
}

// startWatcher watches the vault tree for markdown changes. fsnotify does
// not recurse, so every directory is added individually and directories
// created later are picked up from their create events.
func (s *Server) startWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	root := s.vault.Root()
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && path != root {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			s.logger.Warn("failed to watch directory", "path", path, "err", err)
		}
		return nil
	})
	if err != nil {
		_ = watcher.Close()
		return err
	}

	go s.runWatcher(ctx, watcher)
	return nil
}

// runWatcher processes file system events with debouncing.
func (s *Server) runWatcher(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	// Editors often write files in multiple steps.
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// New directories join the watch set immediately.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}

			if !relevantEvent(event) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				s.logger.Debug("vault changed; refreshing", "path", event.Name)
				s.coordinator.ForceCompleteRefresh(ctx)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("file watcher error", "err", err)
		}
	}
}

// relevantEvent keeps write/create/remove/rename events on markdown files.
// Remove and rename are common in atomic saves.
func relevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return strings.EqualFold(filepath.Ext(event.Name), ".md")
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, map[string]string{
		"version":   s.Version,
		"commitSha": s.CommitSHA,
	})
}

// writeJSONResponse writes a JSON response to the http.ResponseWriter.
// If encoding fails, it writes an error response.
func writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// queryIdentifiers parses the ids query parameter into identifiers.
func queryIdentifiers(r *http.Request) []string {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ";") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
