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
	"context"

	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/bundles"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/drives"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/releases"
	sync_hdl "github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/sync"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/events"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/bundle"
	models_job "github.com/SENERGY-Platform/bundle-manager/pkg/models/job"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/release"
)

type BundlesHandler interface {
	Index(ctx context.Context) (bundles.IndexResult, error)
	Snapshots() []*bundle.Snapshot
	Snapshot(id string) (*bundle.Snapshot, error)
	Delete(ctx context.Context, id string) error
}

type DrivesHandler interface {
	Index(ctx context.Context) ([]*drives.ManagedDevice, []*drives.PlainDevice, error)
}

type ResolverHandler interface {
	Dependencies(snapshot *bundle.Snapshot, version, name string) ([]*bundle.Module, error)
	Resolve(snapshot *bundle.Snapshot, version, name string) ([]*bundle.Module, error)
	Invalidate(snapshotID string)
	Reset()
}

type SyncHandler interface {
	Install(ctx context.Context, target sync_hdl.Target, mod *bundle.Module) error
	Uninstall(ctx context.Context, target sync_hdl.Target, name string) error
	Reinstall(ctx context.Context, target sync_hdl.Target, mod *bundle.Module) error
}

type ReleasesHandler interface {
	Source(name string) (releases.Source, error)
	Sources() []string
	List(ctx context.Context, src releases.Source, limit int) ([]release.Release, error)
	Download(ctx context.Context, src releases.Source, rel release.Release, progress release.ProgressFunc) (string, error)
}

type CredentialsHandler interface {
	Token() (string, bool)
	SetToken(token string, persist bool) error
	DeleteToken() error
}

type JobsHandler interface {
	Create(desc string, tFunc func(context.Context, context.CancelFunc) error) (string, error)
	Get(id string) (models_job.Job, error)
	Cancel(id string) error
	List(filter models_job.Filter) []models_job.Job
	Finished() *events.Bus[models_job.Job]
}
