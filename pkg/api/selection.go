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

	models_api "github.com/SENERGY-Platform/bundle-manager/pkg/models/api"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
	models_service "github.com/SENERGY-Platform/bundle-manager/pkg/models/service"
	"github.com/gin-gonic/gin"
)

func getSelectionH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, models_api.SelectionPath, func(gc *gin.Context) {
		gc.JSON(http.StatusOK, a.service.GetSelection())
	}
}

func putSelectionH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPut, models_api.SelectionPath, func(gc *gin.Context) {
		var sel models_service.Selection
		if err := gc.ShouldBindJSON(&sel); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		if err := a.service.SetSelection(sel); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}
