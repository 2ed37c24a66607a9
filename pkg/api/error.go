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
	"errors"
	"net/http"

	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
)

func getStatusCode(err error) int {
	if errors.Is(err, models_error.NotFoundErr) {
		return http.StatusNotFound
	}
	var iie *models_error.InvalidInputError
	if errors.As(err, &iie) {
		return http.StatusBadRequest
	}
	var ice *models_error.InstallConflictError
	if errors.As(err, &ice) {
		return http.StatusConflict
	}
	var aee *models_error.AlreadyExistsError
	if errors.As(err, &aee) {
		return http.StatusConflict
	}
	var rbe *models_error.ResourceBusyError
	if errors.As(err, &rbe) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
