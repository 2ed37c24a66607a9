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

package api

import (
	"fmt"
	"path"

	"github.com/gin-gonic/gin"
)

type route func(a *Api) (string, string, gin.HandlerFunc)

type routeList []route

var routes = routeList{
	getBundlesH,
	patchIndexBundlesH,
	getBundleH,
	deleteBundleH,
	getModulesH,
	getDependenciesH,
	getDevicesH,
	patchIndexDevicesH,
	getDeviceH,
	postInstallModuleH,
	deleteModuleH,
	patchReinstallModuleH,
	getReleaseSourcesH,
	getReleasesH,
	postDownloadReleaseH,
	getTokenH,
	putTokenH,
	deleteTokenH,
	getSelectionH,
	putSelectionH,
	getJobsH,
	getJobH,
	patchCancelJobH,
	getHealthCheckH,
	getInfoH,
}

// Set registers all routes and returns their methods and paths. Duplicate routes are an error.
func (r routeList) Set(a *Api, e *gin.Engine) ([][2]string, error) {
	set := make(map[string]struct{})
	var routes [][2]string
	for _, f := range r {
		method, p, handler := f(a)
		p = path.Join("/", p)
		key := method + " " + p
		if _, ok := set[key]; ok {
			return nil, fmt.Errorf("duplicate route '%s'", key)
		}
		set[key] = struct{}{}
		e.Handle(method, p, handler)
		routes = append(routes, [2]string{method, p})
	}
	return routes, nil
}
