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
	models_job "github.com/SENERGY-Platform/bundle-manager/pkg/models/job"
	"github.com/gin-gonic/gin"
)

const jobIdParam = "id"

func getJobsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, models_api.JobsPath, func(gc *gin.Context) {
		filter := models_job.Filter{}
		if err := gc.ShouldBindQuery(&filter); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		gc.JSON(http.StatusOK, a.service.GetJobs(filter))
	}
}

func getJobH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(models_api.JobsPath, ":"+jobIdParam), func(gc *gin.Context) {
		job, err := a.service.GetJob(gc.Param(jobIdParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, job)
	}
}

func patchCancelJobH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, path.Join(models_api.JobsPath, ":"+jobIdParam, models_api.CancelPath), func(gc *gin.Context) {
		if err := a.service.CancelJob(gc.Param(jobIdParam)); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}
