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

func getTokenH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(models_api.CredentialsPath, models_api.TokenPath), func(gc *gin.Context) {
		gc.JSON(http.StatusOK, models_service.TokenStatus{Set: a.service.HasToken()})
	}
}

func putTokenH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPut, path.Join(models_api.CredentialsPath, models_api.TokenPath), func(gc *gin.Context) {
		var req models_service.TokenRequest
		if err := gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		if err := a.service.SetToken(req.Token, req.Persist); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func deleteTokenH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodDelete, path.Join(models_api.CredentialsPath, models_api.TokenPath), func(gc *gin.Context) {
		if err := a.service.DeleteToken(); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}
