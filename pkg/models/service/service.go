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

package service

type Selection struct {
	BundleID string `json:"bundle_id"`
	DeviceID string `json:"device_id"`
}

type InstallRequest struct {
	BundleID         string `json:"bundle_id"`
	Version          string `json:"version"`
	Module           string `json:"module"`
	WithDependencies bool   `json:"with_dependencies"`
}

type ReinstallRequest struct {
	BundleID string `json:"bundle_id"`
	Version  string `json:"version"`
}

type DownloadRequest struct {
	TagName string `json:"tag_name"`
}

type TokenRequest struct {
	Token   string `json:"token"`
	Persist bool   `json:"persist"`
}

type TokenStatus struct {
	Set bool `json:"set"`
}

type ModulesQuery struct {
	Search string `form:"search"`
}

type ReleasesQuery struct {
	Limit int `form:"limit"`
}
