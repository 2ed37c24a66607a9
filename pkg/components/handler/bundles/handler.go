/*
 * Copyright 2026 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package bundles

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/SENERGY-Platform/bundle-manager/pkg/models/bundle"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/slog_attr"
)

type Skipped struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type IndexResult struct {
	Snapshots []*bundle.Snapshot `json:"snapshots"`
	Skipped   []Skipped          `json:"skipped"`
}

type Handler struct {
	mu        sync.RWMutex
	config    Config
	snapshots map[string]*bundle.Snapshot
	order     []string
}

func New(config Config) *Handler {
	if config.VersionPrefixes == nil {
		config.VersionPrefixes = DefaultVersionPrefixes
	}
	return &Handler{
		config:    config,
		snapshots: make(map[string]*bundle.Snapshot),
	}
}

func (h *Handler) Init() error {
	return os.MkdirAll(h.config.CacheRoot, 0775)
}

func (h *Handler) CacheRoot() string {
	return h.config.CacheRoot
}

// Index scans the cache root and replaces the catalog. Snapshots with a missing or
// invalid manifest are recorded as skipped.
func (h *Handler) Index(ctx context.Context) (IndexResult, error) {
	var result IndexResult
	entries, err := os.ReadDir(h.config.CacheRoot)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return IndexResult{}, models_error.NewIOFailure("listing bundle cache", "", "", err)
	}
	snapshots := make(map[string]*bundle.Snapshot)
	var order []string
	for _, entry := range entries {
		if err = ctx.Err(); err != nil {
			return IndexResult{}, err
		}
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(h.config.CacheRoot, entry.Name())
		snapshot, err := LoadSnapshot(dir, h.config.VersionPrefixes)
		if err != nil {
			logger.Warn("skipping bundle", slog_attr.DirNameKey, dir, slog_attr.ErrorKey, err)
			result.Skipped = append(result.Skipped, Skipped{Path: dir, Error: err.Error()})
			continue
		}
		snapshots[snapshot.ID] = snapshot
		order = append(order, snapshot.ID)
		result.Snapshots = append(result.Snapshots, snapshot)
	}
	h.mu.Lock()
	h.snapshots = snapshots
	h.order = order
	h.mu.Unlock()
	logger.Info("indexed bundles", slog_attr.CountKey, len(result.Snapshots), slog_attr.SkippedCountKey, len(result.Skipped))
	return result, nil
}

func (h *Handler) Snapshots() []*bundle.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	snapshots := make([]*bundle.Snapshot, 0, len(h.order))
	for _, id := range h.order {
		snapshots = append(snapshots, h.snapshots[id])
	}
	return snapshots
}

func (h *Handler) Snapshot(id string) (*bundle.Snapshot, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	snapshot, ok := h.snapshots[id]
	if !ok {
		return nil, models_error.NewNotFoundError("bundle", id, "")
	}
	return snapshot, nil
}

// Delete removes the whole snapshot directory and drops it from the catalog.
func (h *Handler) Delete(_ context.Context, id string) error {
	snapshot, err := h.Snapshot(id)
	if err != nil {
		return err
	}
	if err = os.RemoveAll(snapshot.Path); err != nil {
		return models_error.NewIOFailure("deleting bundle", snapshot.Title, "", err)
	}
	h.mu.Lock()
	delete(h.snapshots, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i:i], h.order[i+1:]...)
			break
		}
	}
	h.mu.Unlock()
	logger.Info("deleted bundle", slog_attr.BundleKey, snapshot.Title, slog_attr.DirNameKey, snapshot.Path)
	return nil
}
