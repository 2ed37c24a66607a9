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

package resolver

import (
	"slices"
	"sync"

	"github.com/SENERGY-Platform/bundle-manager/pkg/models/bundle"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
)

type key struct {
	snapshot string
	version  string
	module   string
}

// Handler resolves dependency closures on first request and memoizes the result.
type Handler struct {
	mu   sync.RWMutex
	memo map[key][]*bundle.Module
}

func New() *Handler {
	return &Handler{memo: make(map[key][]*bundle.Module)}
}

// Dependencies returns the direct dependencies of a module in declaration order.
func (h *Handler) Dependencies(snapshot *bundle.Snapshot, version, name string) ([]*bundle.Module, error) {
	set, m, err := lookup(snapshot, version, name)
	if err != nil {
		return nil, err
	}
	var deps []*bundle.Module
	for _, depName := range m.DependencyNames() {
		dep, ok := set.Get(depName)
		if !ok {
			return nil, models_error.NewUnresolvedDependencyError(snapshot.Title, version, m.Name, depName)
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// Resolve returns the transitive dependency closure of a module, excluding the module
// itself. Each module appears once, in depth-first pre-order of the declarations.
func (h *Handler) Resolve(snapshot *bundle.Snapshot, version, name string) ([]*bundle.Module, error) {
	set, m, err := lookup(snapshot, version, name)
	if err != nil {
		return nil, err
	}
	k := key{snapshot: snapshot.ID, version: version, module: m.Name}
	h.mu.RLock()
	closure, ok := h.memo[k]
	h.mu.RUnlock()
	if ok {
		return slices.Clone(closure), nil
	}
	r := resolution{
		snapshot: snapshot.Title,
		version:  version,
		set:      set,
		seen:     map[string]struct{}{m.Name: {}},
	}
	if err = r.walk(m, []string{m.Stem}); err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.memo[k] = r.closure
	h.mu.Unlock()
	return slices.Clone(r.closure), nil
}

// Invalidate drops all memoized closures of a snapshot.
func (h *Handler) Invalidate(snapshotID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for k := range h.memo {
		if k.snapshot == snapshotID {
			delete(h.memo, k)
		}
	}
}

func (h *Handler) Reset() {
	h.mu.Lock()
	h.memo = make(map[key][]*bundle.Module)
	h.mu.Unlock()
}

type resolution struct {
	snapshot string
	version  string
	set      *bundle.ModuleSet
	seen     map[string]struct{}
	closure  []*bundle.Module
}

// walk threads the chain of modules currently being resolved through the recursion.
func (r *resolution) walk(m *bundle.Module, chain []string) error {
	for _, depName := range m.DependencyNames() {
		dep, ok := r.set.Get(depName)
		if !ok {
			return models_error.NewUnresolvedDependencyError(r.snapshot, r.version, m.Name, depName)
		}
		if i := slices.Index(chain, dep.Stem); i >= 0 {
			cycle := append(slices.Clone(chain[i:]), dep.Stem)
			return models_error.NewDependencyCycleError(r.snapshot, r.version, cycle)
		}
		if _, ok = r.seen[dep.Name]; ok {
			continue
		}
		r.seen[dep.Name] = struct{}{}
		r.closure = append(r.closure, dep)
		if err := r.walk(dep, append(slices.Clone(chain), dep.Stem)); err != nil {
			return err
		}
	}
	return nil
}

func lookup(snapshot *bundle.Snapshot, version, name string) (*bundle.ModuleSet, *bundle.Module, error) {
	set, ok := snapshot.ModuleSet(version)
	if !ok {
		return nil, nil, models_error.NewNotFoundError("version", version, snapshot.Title)
	}
	m, ok := set.Get(name)
	if !ok {
		return nil, nil, models_error.NewNotFoundError("module", name, snapshot.Title+" ("+version+")")
	}
	return set, m, nil
}
