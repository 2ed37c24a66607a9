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

package sync

import (
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/bundle"
	"github.com/SENERGY-Platform/mgw-module-lib/tsort"
)

// InstallOrder sorts a module and its resolved dependency closure so that every module
// comes after the modules it depends on.
func InstallOrder(set *bundle.ModuleSet, mod *bundle.Module, closure []*bundle.Module) ([]*bundle.Module, error) {
	modules := map[string]*bundle.Module{mod.Name: mod}
	for _, m := range closure {
		modules[m.Name] = m
	}
	if len(modules) == 1 {
		return []*bundle.Module{mod}, nil
	}
	nodes := make(tsort.Nodes)
	for name, m := range modules {
		var reqIDs map[string]struct{}
		if deps := m.DependencyNames(); len(deps) > 0 {
			reqIDs = make(map[string]struct{})
			for _, depName := range deps {
				if dep, ok := set.Get(depName); ok {
					if _, ok = modules[dep.Name]; ok {
						reqIDs[dep.Name] = struct{}{}
					}
				}
			}
		}
		nodes.Add(name, reqIDs, nil)
	}
	order, err := tsort.GetTopOrder(nodes)
	if err != nil {
		return nil, err
	}
	sorted := make([]*bundle.Module, 0, len(order))
	for _, name := range order {
		sorted = append(sorted, modules[name])
	}
	return sorted, nil
}
