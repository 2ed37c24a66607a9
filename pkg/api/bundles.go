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
	"net/http"
	"path"

	models_api "github.com/SENERGY-Platform/bundle-manager/pkg/models/api"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
	models_service "github.com/SENERGY-Platform/bundle-manager/pkg/models/service"
	"github.com/gin-gonic/gin"
)

const (
	bundleIdParam   = "id"
	versionParam    = "ver"
	moduleNameParam = "mod"
)

func getBundlesH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, models_api.BundlesPath, func(gc *gin.Context) {
		gc.JSON(http.StatusOK, a.service.GetBundles())
	}
}

func patchIndexBundlesH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, path.Join(models_api.BundlesPath, models_api.IndexPath), func(gc *gin.Context) {
		jID, err := a.service.IndexBundles()
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, jID)
	}
}

func getBundleH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(models_api.BundlesPath, ":"+bundleIdParam), func(gc *gin.Context) {
		snapshot, err := a.service.GetBundle(gc.Param(bundleIdParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, snapshot)
	}
}

func deleteBundleH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodDelete, path.Join(models_api.BundlesPath, ":"+bundleIdParam), func(gc *gin.Context) {
		if err := a.service.DeleteBundle(gc.Request.Context(), gc.Param(bundleIdParam)); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func getModulesH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(models_api.BundlesPath, ":"+bundleIdParam, models_api.VersionsPath, ":"+versionParam, models_api.ModulesPath), func(gc *gin.Context) {
		query := models_service.ModulesQuery{}
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		modules, err := a.service.GetModules(gc.Param(bundleIdParam), gc.Param(versionParam), query.Search)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, modules)
	}
}

func getDependenciesH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(models_api.BundlesPath, ":"+bundleIdParam, models_api.VersionsPath, ":"+versionParam, models_api.ModulesPath, ":"+moduleNameParam, models_api.DependenciesPath), func(gc *gin.Context) {
		modules, err := a.service.GetDependencies(gc.Param(bundleIdParam), gc.Param(versionParam), gc.Param(moduleNameParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, modules)
	}
}
