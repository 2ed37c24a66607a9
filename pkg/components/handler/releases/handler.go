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

package releases

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/fs_util"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/sanitize"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/bundle"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/release"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/slog_attr"
)

type Handler struct {
	cacheRoot string
	sources   map[string]Source
	order     []string
}

func New(cacheRoot string, sources ...Source) *Handler {
	h := &Handler{
		cacheRoot: cacheRoot,
		sources:   make(map[string]Source),
	}
	for _, src := range sources {
		h.sources[src.Name()] = src
		h.order = append(h.order, src.Name())
	}
	return h
}

func (h *Handler) Source(name string) (Source, error) {
	src, ok := h.sources[name]
	if !ok {
		return nil, models_error.NewNotFoundError("release source", name, "")
	}
	return src, nil
}

func (h *Handler) Sources() []string {
	return append([]string(nil), h.order...)
}

// List collects at most limit releases of a source. A limit of zero or less collects all.
func (h *Handler) List(ctx context.Context, src Source, limit int) ([]release.Release, error) {
	releases := []release.Release{}
	for rel, err := range src.Releases(ctx) {
		if err != nil {
			return nil, models_error.NewIOFailure(fmt.Sprintf("listing releases of '%s'", src.Name()), "", "", err)
		}
		releases = append(releases, rel)
		if limit > 0 && len(releases) >= limit {
			break
		}
	}
	return releases, nil
}

// Download fetches a release into a new snapshot directory named after the sanitized
// release title and writes its manifest. The directory is removed again on failure.
func (h *Handler) Download(ctx context.Context, src Source, rel release.Release, progress release.ProgressFunc) (string, error) {
	if progress == nil {
		progress = func(int64, int64, string) {}
	}
	title := src.Title(rel)
	dir := filepath.Join(h.cacheRoot, sanitize.DirName(title))
	empty, err := fs_util.IsEmptyDir(dir)
	if err != nil {
		return "", models_error.NewIOFailure("checking bundle directory", title, "", err)
	}
	if !empty {
		return "", models_error.NewAlreadyExistsError(title, dir)
	}
	if err = os.MkdirAll(dir, 0775); err != nil {
		return "", models_error.NewIOFailure("creating bundle directory", title, "", err)
	}
	complete := false
	defer func() {
		if !complete {
			if rErr := os.RemoveAll(dir); rErr != nil {
				logger.Error("removing incomplete bundle failed", slog_attr.DirNameKey, dir, slog_attr.ErrorKey, rErr)
			}
		}
	}()
	logger.Info("downloading release", slog_attr.SourceKey, src.Name(), slog_attr.TagKey, rel.TagName, slog_attr.DirNameKey, dir)
	if err = src.Fetch(ctx, rel, dir, progress); err != nil {
		return "", models_error.NewIOFailure("downloading bundle", title, "", err)
	}
	versionDirs, deps, err := Scan(dir, progress)
	if err != nil {
		return "", models_error.NewIOFailure("scanning bundle", title, "", err)
	}
	manifest := bundle.Manifest{
		Title:        title,
		TagName:      rel.TagName,
		URL:          rel.URL,
		Released:     float64(rel.Published.UnixMilli()) / 1000,
		Bundles:      versionDirs,
		Dependencies: deps,
	}
	progress(1, 1, "Writing metadata...")
	b, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", models_error.NewIOFailure("writing manifest", title, "", err)
	}
	if err = fs_util.WriteFileAtomic(filepath.Join(dir, bundle.ManifestFileName), b, 0664); err != nil {
		return "", models_error.NewIOFailure("writing manifest", title, "", err)
	}
	complete = true
	logger.Info("downloaded release", slog_attr.BundleKey, title, slog_attr.CountKey, len(versionDirs))
	return dir, nil
}

// Scan finds the version directories and the dependency table among the top-level entries
// of a fetched release. A version directory contains the module root and is not an
// examples directory. The first top-level JSON file is the dependency table.
func Scan(dir string, progress release.ProgressFunc) ([]string, map[string]bundle.DependencyDecl, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	versionDirs := []string{}
	var deps map[string]bundle.DependencyDecl
	total := int64(len(entries))
	for i, entry := range entries {
		progress(int64(i+1), total, fmt.Sprintf("Scanning downloaded content... (%d / %d)", i+1, total))
		p := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if strings.Contains(entry.Name(), "examples") {
				continue
			}
			if fileInfo, err := os.Stat(filepath.Join(p, bundle.ModuleRootName)); err == nil && fileInfo.IsDir() {
				versionDirs = append(versionDirs, entry.Name())
			}
			continue
		}
		if deps == nil && entry.Type().IsRegular() && filepath.Ext(entry.Name()) == ".json" && entry.Name() != bundle.ManifestFileName {
			b, err := os.ReadFile(p)
			if err != nil {
				return nil, nil, err
			}
			if err = json.Unmarshal(b, &deps); err != nil {
				return nil, nil, fmt.Errorf("decoding dependency table '%s' failed: %w", entry.Name(), err)
			}
		}
	}
	if deps == nil {
		deps = make(map[string]bundle.DependencyDecl)
	}
	return versionDirs, deps, nil
}
