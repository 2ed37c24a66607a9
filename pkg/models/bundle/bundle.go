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

package bundle

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	ManifestFileName = "metadata.json"
	ModuleRootName   = "lib"
)

// Manifest is the on-disk record written next to the content of every snapshot.
type Manifest struct {
	Title        string                    `json:"title"`
	TagName      string                    `json:"tag_name"`
	URL          string                    `json:"url"`
	Released     float64                   `json:"released"`
	Bundles      []string                  `json:"bundles"`
	Dependencies map[string]DependencyDecl `json:"dependencies"`
}

type DependencyDecl struct {
	Package      bool     `json:"package"`
	PypiName     *string  `json:"pypi_name"`
	Version      *string  `json:"version"`
	Repo         *string  `json:"repo"`
	Dependencies []string `json:"dependencies"`
}

type Snapshot struct {
	ID           string                    `json:"id"`
	Title        string                    `json:"title"`
	TagName      string                    `json:"tag_name"`
	URL          string                    `json:"url"`
	Released     time.Time                 `json:"released"`
	Path         string                    `json:"path"`
	VersionPaths []string                  `json:"version_paths"`
	Versions     []string                  `json:"versions"`
	Dependencies map[string]DependencyDecl `json:"-"`
	ModuleSets   []*ModuleSet              `json:"-"`
}

func (s *Snapshot) ModuleSet(version string) (*ModuleSet, bool) {
	for _, set := range s.ModuleSets {
		if set.Version == version {
			return set, true
		}
	}
	return nil, false
}

type ModuleSet struct {
	Version string
	Path    string
	modules map[string]*Module
	order   []string
}

func NewModuleSet(version, path string) *ModuleSet {
	return &ModuleSet{
		Version: version,
		Path:    path,
		modules: make(map[string]*Module),
	}
}

func (s *ModuleSet) Add(m *Module) {
	if _, ok := s.modules[m.Name]; !ok {
		s.order = append(s.order, m.Name)
	}
	s.modules[m.Name] = m
}

// Get looks up a module by entry name first and by stem second.
func (s *ModuleSet) Get(name string) (*Module, bool) {
	if m, ok := s.modules[name]; ok {
		return m, true
	}
	for _, n := range s.order {
		if m := s.modules[n]; m.Stem == name {
			return m, true
		}
	}
	return nil, false
}

func (s *ModuleSet) Modules() []*Module {
	modules := make([]*Module, 0, len(s.order))
	for _, n := range s.order {
		modules = append(modules, s.modules[n])
	}
	return modules
}

func (s *ModuleSet) Len() int {
	return len(s.order)
}

type Module struct {
	Name      string          `json:"name"`
	Stem      string          `json:"stem"`
	Path      string          `json:"path"`
	IsPackage bool            `json:"is_package"`
	Meta      *DependencyDecl `json:"meta,omitempty"`
}

func (m *Module) DependencyNames() []string {
	if m.Meta == nil {
		return nil
	}
	return m.Meta.Dependencies
}

func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
