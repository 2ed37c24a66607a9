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

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/SENERGY-Platform/bundle-manager/pkg/models/bundle"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/slog_attr"
)

func (s *Service) GetBundles() []*bundle.Snapshot {
	return s.bundlesHdl.Snapshots()
}

func (s *Service) GetBundle(id string) (*bundle.Snapshot, error) {
	snapshot, err := s.bundlesHdl.Snapshot(id)
	if err != nil {
		return nil, newServiceErr(fmt.Sprintf("get bundle (id=%s)", id), err)
	}
	return snapshot, nil
}

// InitBundles indexes the bundle cache without creating a job.
func (s *Service) InitBundles(ctx context.Context) error {
	metaStr := "index bundles"
	if err := s.bundlesMu.TryLock(metaStr); err != nil {
		return newServiceErr(metaStr, err)
	}
	defer s.bundlesMu.Unlock()
	if err := s.indexBundles(ctx); err != nil {
		return newServiceErr(metaStr, err)
	}
	return nil
}

func (s *Service) IndexBundles() (string, error) {
	metaStr := "index bundles"
	if err := s.bundlesMu.TryLock(metaStr); err != nil {
		return "", newServiceErr(metaStr, err)
	}
	jID, err := s.jobsHdl.Create(metaStr, func(ctx context.Context, cf context.CancelFunc) error {
		defer s.bundlesMu.Unlock()
		defer cf()
		if err := ctx.Err(); err != nil {
			return err
		}
		return s.indexBundles(ctx)
	})
	if err != nil {
		s.bundlesMu.Unlock()
		return "", newServiceErr(metaStr, err)
	}
	return jID, nil
}

// DeleteBundle removes a snapshot from the cache. Installs reading the cache block it.
func (s *Service) DeleteBundle(ctx context.Context, id string) error {
	metaStr := fmt.Sprintf("delete bundle (id=%s)", id)
	if err := s.bundlesMu.TryLock(metaStr); err != nil {
		return newServiceErr(metaStr, err)
	}
	defer s.bundlesMu.Unlock()
	if err := s.bundlesHdl.Delete(ctx, id); err != nil {
		return newServiceErr(metaStr, err)
	}
	s.resolverHdl.Invalidate(id)
	s.dropSelectedBundle()
	return nil
}

// GetModules lists the modules of a bundle version in declaration order. A non-empty
// search only keeps modules whose name contains it, ignoring case.
func (s *Service) GetModules(bundleID, version, search string) ([]*bundle.Module, error) {
	metaStr := fmt.Sprintf("get modules (bundle_id=%s version=%s search=%s)", bundleID, version, search)
	set, err := s.moduleSet(bundleID, version)
	if err != nil {
		return nil, newServiceErr(metaStr, err)
	}
	modules := []*bundle.Module{}
	search = strings.ToLower(search)
	for _, m := range set.Modules() {
		if search == "" || strings.Contains(strings.ToLower(m.Name), search) {
			modules = append(modules, m)
		}
	}
	return modules, nil
}

// GetDependencies returns the transitive dependencies of a module.
func (s *Service) GetDependencies(bundleID, version, module string) ([]*bundle.Module, error) {
	metaStr := fmt.Sprintf("get dependencies (bundle_id=%s version=%s module=%s)", bundleID, version, module)
	snapshot, err := s.bundlesHdl.Snapshot(bundleID)
	if err != nil {
		return nil, newServiceErr(metaStr, err)
	}
	modules, err := s.resolverHdl.Resolve(snapshot, version, module)
	if err != nil {
		return nil, newServiceErr(metaStr, err)
	}
	if modules == nil {
		modules = []*bundle.Module{}
	}
	return modules, nil
}

func (s *Service) indexBundles(ctx context.Context) error {
	result, err := s.bundlesHdl.Index(ctx)
	if err != nil {
		return err
	}
	s.resolverHdl.Reset()
	s.dropSelectedBundle()
	s.events.BundlesIndexed.Publish(result)
	return nil
}

func (s *Service) moduleSet(bundleID, version string) (*bundle.ModuleSet, error) {
	snapshot, err := s.bundlesHdl.Snapshot(bundleID)
	if err != nil {
		return nil, err
	}
	set, ok := snapshot.ModuleSet(version)
	if !ok {
		return nil, models_error.NewNotFoundError("version", version, snapshot.Title)
	}
	return set, nil
}

func (s *Service) lookupModule(bundleID, version, name string) (*bundle.Snapshot, *bundle.Module, error) {
	snapshot, err := s.bundlesHdl.Snapshot(bundleID)
	if err != nil {
		return nil, nil, err
	}
	set, ok := snapshot.ModuleSet(version)
	if !ok {
		return nil, nil, models_error.NewNotFoundError("version", version, snapshot.Title)
	}
	mod, ok := set.Get(name)
	if !ok {
		return nil, nil, models_error.NewNotFoundError("module", name, snapshot.Title+" ("+version+")")
	}
	return snapshot, mod, nil
}

func (s *Service) dropSelectedBundle() {
	s.mu.Lock()
	id := s.selection.BundleID
	if id == "" {
		s.mu.Unlock()
		return
	}
	if _, err := s.bundlesHdl.Snapshot(id); err == nil {
		s.mu.Unlock()
		return
	}
	s.selection.BundleID = ""
	s.mu.Unlock()
	logger.Info("selected bundle no longer available", slog_attr.BundleKey, id)
	s.events.SelectedBundle.Publish("")
}
