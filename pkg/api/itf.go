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
	"context"

	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/drives"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/bundle"
	models_job "github.com/SENERGY-Platform/bundle-manager/pkg/models/job"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/release"
	models_service "github.com/SENERGY-Platform/bundle-manager/pkg/models/service"
	"github.com/SENERGY-Platform/bundle-manager/pkg/service"
	srv_info_hdl "github.com/SENERGY-Platform/go-service-base/srv-info-hdl"
)

type serviceItf interface {
	GetBundles() []*bundle.Snapshot
	GetBundle(id string) (*bundle.Snapshot, error)
	IndexBundles() (string, error)
	DeleteBundle(ctx context.Context, id string) error
	GetModules(bundleID, version, search string) ([]*bundle.Module, error)
	GetDependencies(bundleID, version, module string) ([]*bundle.Module, error)
	GetDevices() service.Devices
	GetDevice(id string) (drives.ManagedDeviceInfo, error)
	IndexDevices() (string, error)
	InstallModule(deviceID string, req models_service.InstallRequest) (string, error)
	UninstallModule(deviceID, name string) (string, error)
	ReinstallModule(deviceID, name string, req models_service.ReinstallRequest) (string, error)
	GetReleaseSources() []string
	GetReleases(ctx context.Context, source string, limit int) ([]release.Release, error)
	DownloadRelease(source, tagName string) (string, error)
	HasToken() bool
	SetToken(token string, persist bool) error
	DeleteToken() error
	GetSelection() models_service.Selection
	SetSelection(sel models_service.Selection) error
	GetJobs(filter models_job.Filter) []models_job.Job
	GetJob(id string) (models_job.Job, error)
	CancelJob(id string) error
}

type infoHandler interface {
	ServiceInfo() srv_info_hdl.ServiceInfo
	Version() string
	Name() string
}
