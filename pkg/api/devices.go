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

const deviceIdParam = "id"

func getDevicesH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, models_api.DevicesPath, func(gc *gin.Context) {
		gc.JSON(http.StatusOK, a.service.GetDevices())
	}
}

func patchIndexDevicesH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, path.Join(models_api.DevicesPath, models_api.IndexPath), func(gc *gin.Context) {
		jID, err := a.service.IndexDevices()
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, jID)
	}
}

func getDeviceH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(models_api.DevicesPath, ":"+deviceIdParam), func(gc *gin.Context) {
		device, err := a.service.GetDevice(gc.Param(deviceIdParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, device)
	}
}

func postInstallModuleH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, path.Join(models_api.DevicesPath, ":"+deviceIdParam, models_api.ModulesPath), func(gc *gin.Context) {
		var req models_service.InstallRequest
		if err := gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		jID, err := a.service.InstallModule(gc.Param(deviceIdParam), req)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, jID)
	}
}

func deleteModuleH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodDelete, path.Join(models_api.DevicesPath, ":"+deviceIdParam, models_api.ModulesPath, ":"+moduleNameParam), func(gc *gin.Context) {
		jID, err := a.service.UninstallModule(gc.Param(deviceIdParam), gc.Param(moduleNameParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, jID)
	}
}

func patchReinstallModuleH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, path.Join(models_api.DevicesPath, ":"+deviceIdParam, models_api.ModulesPath, ":"+moduleNameParam, models_api.ReinstallPath), func(gc *gin.Context) {
		var req models_service.ReinstallRequest
		if err := gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		jID, err := a.service.ReinstallModule(gc.Param(deviceIdParam), gc.Param(moduleNameParam), req)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, jID)
	}
}
