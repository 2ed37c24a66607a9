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

const (
	HeaderRequestID = "X-Request-ID"
	HeaderApiVer    = "X-Api-Version"
	HeaderSrvName   = "X-Service-Name"
)

const (
	BundlesPath     = "bundles"
	DevicesPath     = "devices"
	ReleasesPath    = "releases"
	CredentialsPath = "credentials"
	SelectionPath   = "selection"
	JobsPath        = "jobs"
	HealthCheckPath = "health-check"
	InfoPath        = "info"
)

const (
	IndexPath        = "index"
	VersionsPath     = "versions"
	ModulesPath      = "modules"
	DependenciesPath = "dependencies"
	ReinstallPath    = "reinstall"
	TokenPath        = "token"
	CancelPath       = "cancel"
)
