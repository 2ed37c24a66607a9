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

import (
	"sync"

	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/bundles"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/drives"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/events"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/lock"
	models_job "github.com/SENERGY-Platform/bundle-manager/pkg/models/job"
	models_service "github.com/SENERGY-Platform/bundle-manager/pkg/models/service"
)

// Events groups the topics other parts of the program can observe.
type Events struct {
	SelectedBundle *events.Bus[string]
	SelectedDevice *events.Bus[string]
	BundlesIndexed *events.Bus[bundles.IndexResult]
	DevicesIndexed *events.Bus[Devices]
	DeviceChanged  *events.Bus[drives.ManagedDeviceInfo]
	JobFinished    *events.Bus[models_job.Job]
}

type Devices struct {
	Managed []drives.ManagedDeviceInfo `json:"managed"`
	Plain   []drives.PlainDevice       `json:"plain"`
}

type Service struct {
	bundlesHdl     BundlesHandler
	drivesHdl      DrivesHandler
	resolverHdl    ResolverHandler
	syncHdl        SyncHandler
	releasesHdl    ReleasesHandler
	credentialsHdl CredentialsHandler
	jobsHdl        JobsHandler
	bundlesMu      *lock.RWMutex
	devicesMu      *lock.RWMutex
	deviceMu       *lock.KeyedMutex
	mu             sync.RWMutex
	devices        map[string]*drives.ManagedDevice
	deviceOrder    []string
	plainDevices   []*drives.PlainDevice
	selection      models_service.Selection
	events         *Events
}

func New(bundlesHdl BundlesHandler, drivesHdl DrivesHandler, resolverHdl ResolverHandler, syncHdl SyncHandler, releasesHdl ReleasesHandler, credentialsHdl CredentialsHandler, jobsHdl JobsHandler) *Service {
	return &Service{
		bundlesHdl:     bundlesHdl,
		drivesHdl:      drivesHdl,
		resolverHdl:    resolverHdl,
		syncHdl:        syncHdl,
		releasesHdl:    releasesHdl,
		credentialsHdl: credentialsHdl,
		jobsHdl:        jobsHdl,
		bundlesMu:      lock.NewRWMutex("bundle cache"),
		devicesMu:      lock.NewRWMutex("devices"),
		deviceMu:       lock.NewKeyedMutex(),
		devices:        make(map[string]*drives.ManagedDevice),
		events: &Events{
			SelectedBundle: events.NewBus[string](),
			SelectedDevice: events.NewBus[string](),
			BundlesIndexed: events.NewBus[bundles.IndexResult](),
			DevicesIndexed: events.NewBus[Devices](),
			DeviceChanged:  events.NewBus[drives.ManagedDeviceInfo](),
			JobFinished:    jobsHdl.Finished(),
		},
	}
}

func (s *Service) Events() *Events {
	return s.events
}
