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

const sourceParam = "source"

func getReleaseSourcesH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, models_api.ReleasesPath, func(gc *gin.Context) {
		gc.JSON(http.StatusOK, a.service.GetReleaseSources())
	}
}

func getReleasesH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(models_api.ReleasesPath, ":"+sourceParam), func(gc *gin.Context) {
		query := models_service.ReleasesQuery{}
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		releases, err := a.service.GetReleases(gc.Request.Context(), gc.Param(sourceParam), query.Limit)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, releases)
	}
}

func postDownloadReleaseH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, path.Join(models_api.ReleasesPath, ":"+sourceParam), func(gc *gin.Context) {
		var req models_service.DownloadRequest
		if err := gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		jID, err := a.service.DownloadRelease(gc.Param(sourceParam), req.TagName)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, jID)
	}
}
