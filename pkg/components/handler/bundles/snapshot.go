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
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SENERGY-Platform/bundle-manager/pkg/models/bundle"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/slog_attr"
)

// LoadSnapshot reads the manifest of dir and builds one module set per listed version directory.
func LoadSnapshot(dir string, prefixes []string) (*bundle.Snapshot, error) {
	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	snapshot := &bundle.Snapshot{
		ID:           filepath.Base(dir),
		Title:        manifest.Title,
		TagName:      manifest.TagName,
		URL:          manifest.URL,
		Released:     epochToTime(manifest.Released),
		Path:         dir,
		Dependencies: manifest.Dependencies,
	}
	if snapshot.Dependencies == nil {
		snapshot.Dependencies = make(map[string]bundle.DependencyDecl)
	}
	seen := make(map[string]struct{})
	for i, p := range manifest.Bundles {
		versionPath := resolveVersionPath(dir, p)
		version := uniqueLabel(VersionLabel(filepath.Base(versionPath), manifest.TagName, prefixes), filepath.Base(versionPath), i, seen)
		snapshot.VersionPaths = append(snapshot.VersionPaths, versionPath)
		snapshot.Versions = append(snapshot.Versions, version)
		snapshot.ModuleSets = append(snapshot.ModuleSets, loadModuleSet(version, versionPath, snapshot.Dependencies))
	}
	return snapshot, nil
}

// uniqueLabel falls back to the directory name, then to an indexed label, if label is already taken.
func uniqueLabel(label, dirName string, i int, seen map[string]struct{}) string {
	candidates := []string{label, dirName, fmt.Sprintf("%s-%d", label, i)}
	for _, c := range candidates {
		if _, ok := seen[c]; !ok {
			if c != label {
				logger.Warn("duplicate version label", slog_attr.VersionLabelKey, label, slog_attr.DirNameKey, dirName)
			}
			seen[c] = struct{}{}
			return c
		}
	}
	return candidates[len(candidates)-1]
}

func ReadManifest(dir string) (bundle.Manifest, error) {
	b, err := os.ReadFile(filepath.Join(dir, bundle.ManifestFileName))
	if err != nil {
		return bundle.Manifest{}, models_error.NewManifestReadError(dir, err)
	}
	var manifest bundle.Manifest
	if err = json.Unmarshal(b, &manifest); err != nil {
		return bundle.Manifest{}, models_error.NewManifestReadError(dir, err)
	}
	if manifest.Title == "" {
		return bundle.Manifest{}, models_error.NewManifestReadError(dir, errors.New("missing title"))
	}
	return manifest, nil
}

// VersionLabel strips the first matching prefix and the '-<tag>' suffix from a version directory name.
func VersionLabel(dirName, tag string, prefixes []string) string {
	for _, prefix := range prefixes {
		if strings.HasPrefix(dirName, prefix) {
			dirName = strings.TrimPrefix(dirName, prefix)
			break
		}
	}
	if tag != "" {
		dirName = strings.TrimSuffix(dirName, fmt.Sprintf("-%s", tag))
	}
	return dirName
}

func resolveVersionPath(snapshotDir, p string) string {
	if !filepath.IsAbs(p) {
		return filepath.Join(snapshotDir, p)
	}
	if _, err := os.Stat(p); err != nil {
		fallback := filepath.Join(snapshotDir, filepath.Base(p))
		logger.Debug("version path not found, using fallback", slog_attr.DirNameKey, p, slog_attr.FilePathKey, fallback)
		return fallback
	}
	return p
}

func loadModuleSet(version, versionPath string, deps map[string]bundle.DependencyDecl) *bundle.ModuleSet {
	set := bundle.NewModuleSet(version, versionPath)
	moduleRoot := filepath.Join(versionPath, bundle.ModuleRootName)
	entries, err := os.ReadDir(moduleRoot)
	if err != nil {
		logger.Warn("listing module root failed", slog_attr.VersionLabelKey, version, slog_attr.DirNameKey, moduleRoot, slog_attr.ErrorKey, err)
		return set
	}
	for _, entry := range entries {
		m := &bundle.Module{
			Name:      entry.Name(),
			Stem:      bundle.Stem(entry.Name()),
			Path:      filepath.Join(moduleRoot, entry.Name()),
			IsPackage: entry.IsDir(),
		}
		if decl, ok := deps[m.Stem]; ok {
			m.Meta = &decl
		}
		set.Add(m)
	}
	logger.Debug("loaded modules", slog_attr.VersionLabelKey, version, slog_attr.CountKey, set.Len())
	return set
}

func epochToTime(v float64) time.Time {
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
