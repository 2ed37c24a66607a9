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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/drives"
	sync_hdl "github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/sync"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/bundle"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
	models_service "github.com/SENERGY-Platform/bundle-manager/pkg/models/service"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/slog_attr"
)

func (s *Service) GetDevices() Devices {
	s.mu.RLock()
	defer s.mu.RUnlock()
	devices := Devices{
		Managed: make([]drives.ManagedDeviceInfo, 0, len(s.deviceOrder)),
		Plain:   make([]drives.PlainDevice, 0, len(s.plainDevices)),
	}
	for _, id := range s.deviceOrder {
		devices.Managed = append(devices.Managed, s.devices[id].Info())
	}
	for _, d := range s.plainDevices {
		devices.Plain = append(devices.Plain, *d)
	}
	return devices
}

func (s *Service) GetDevice(id string) (drives.ManagedDeviceInfo, error) {
	device, err := s.device(id)
	if err != nil {
		return drives.ManagedDeviceInfo{}, newServiceErr(fmt.Sprintf("get device (id=%s)", id), err)
	}
	return device.Info(), nil
}

// InitDevices indexes the devices without creating a job.
func (s *Service) InitDevices(ctx context.Context) error {
	metaStr := "index devices"
	if err := s.devicesMu.TryLock(metaStr); err != nil {
		return newServiceErr(metaStr, err)
	}
	defer s.devicesMu.Unlock()
	if err := s.indexDevices(ctx); err != nil {
		return newServiceErr(metaStr, err)
	}
	return nil
}

// IndexDevices replaces all known devices. It is rejected while any device operation runs.
func (s *Service) IndexDevices() (string, error) {
	metaStr := "index devices"
	if err := s.devicesMu.TryLock(metaStr); err != nil {
		return "", newServiceErr(metaStr, err)
	}
	jID, err := s.jobsHdl.Create(metaStr, func(ctx context.Context, cf context.CancelFunc) error {
		defer s.devicesMu.Unlock()
		defer cf()
		if err := ctx.Err(); err != nil {
			return err
		}
		return s.indexDevices(ctx)
	})
	if err != nil {
		s.devicesMu.Unlock()
		return "", newServiceErr(metaStr, err)
	}
	return jID, nil
}

func (s *Service) InstallModule(deviceID string, req models_service.InstallRequest) (string, error) {
	metaStr := fmt.Sprintf("install module (device_id=%s bundle_id=%s version=%s module=%s with_dependencies=%v)", deviceID, req.BundleID, req.Version, req.Module, req.WithDependencies)
	unlock, err := s.lockDevice(deviceID, metaStr, true)
	if err != nil {
		return "", newServiceErr(metaStr, err)
	}
	device, err := s.device(deviceID)
	if err != nil {
		unlock()
		return "", newServiceErr(metaStr, err)
	}
	snapshot, mod, err := s.lookupModule(req.BundleID, req.Version, req.Module)
	if err != nil {
		unlock()
		return "", newServiceErr(metaStr, err)
	}
	jID, err := s.jobsHdl.Create(metaStr, func(ctx context.Context, cf context.CancelFunc) error {
		defer unlock()
		defer cf()
		if err := ctx.Err(); err != nil {
			return err
		}
		defer s.refreshDevice(device)
		var err error
		if req.WithDependencies {
			err = s.installWithDependencies(ctx, device, snapshot, req.Version, mod)
		} else {
			err = s.syncHdl.Install(ctx, device, mod)
		}
		if err != nil {
			return newServiceErr(metaStr, err)
		}
		return nil
	})
	if err != nil {
		unlock()
		return "", newServiceErr(metaStr, err)
	}
	return jID, nil
}

func (s *Service) UninstallModule(deviceID, name string) (string, error) {
	metaStr := fmt.Sprintf("uninstall module (device_id=%s module=%s)", deviceID, name)
	unlock, err := s.lockDevice(deviceID, metaStr, false)
	if err != nil {
		return "", newServiceErr(metaStr, err)
	}
	device, err := s.device(deviceID)
	if err != nil {
		unlock()
		return "", newServiceErr(metaStr, err)
	}
	jID, err := s.jobsHdl.Create(metaStr, func(ctx context.Context, cf context.CancelFunc) error {
		defer unlock()
		defer cf()
		if err := ctx.Err(); err != nil {
			return err
		}
		defer s.refreshDevice(device)
		if err := s.syncHdl.Uninstall(ctx, device, name); err != nil {
			return newServiceErr(metaStr, err)
		}
		return nil
	})
	if err != nil {
		unlock()
		return "", newServiceErr(metaStr, err)
	}
	return jID, nil
}

// ReinstallModule replaces an installed module with the same module from a bundle version.
func (s *Service) ReinstallModule(deviceID, name string, req models_service.ReinstallRequest) (string, error) {
	metaStr := fmt.Sprintf("reinstall module (device_id=%s module=%s bundle_id=%s version=%s)", deviceID, name, req.BundleID, req.Version)
	unlock, err := s.lockDevice(deviceID, metaStr, true)
	if err != nil {
		return "", newServiceErr(metaStr, err)
	}
	device, err := s.device(deviceID)
	if err != nil {
		unlock()
		return "", newServiceErr(metaStr, err)
	}
	_, mod, err := s.lookupModule(req.BundleID, req.Version, name)
	if err != nil {
		unlock()
		return "", newServiceErr(metaStr, err)
	}
	jID, err := s.jobsHdl.Create(metaStr, func(ctx context.Context, cf context.CancelFunc) error {
		defer unlock()
		defer cf()
		if err := ctx.Err(); err != nil {
			return err
		}
		defer s.refreshDevice(device)
		if err := s.syncHdl.Reinstall(ctx, device, mod); err != nil {
			return newServiceErr(metaStr, err)
		}
		return nil
	})
	if err != nil {
		unlock()
		return "", newServiceErr(metaStr, err)
	}
	return jID, nil
}

// installWithDependencies installs a module after its dependency closure. Dependencies
// already present on the device are left as they are.
func (s *Service) installWithDependencies(ctx context.Context, device *drives.ManagedDevice, snapshot *bundle.Snapshot, version string, mod *bundle.Module) error {
	set, ok := snapshot.ModuleSet(version)
	if !ok {
		return models_error.NewNotFoundError("version", version, snapshot.Title)
	}
	closure, err := s.resolverHdl.Resolve(snapshot, version, mod.Name)
	if err != nil {
		return err
	}
	order, err := sync_hdl.InstallOrder(set, mod, closure)
	if err != nil {
		return err
	}
	for _, m := range order {
		if m.Name != mod.Name {
			ok, err := entryExists(device.ModulePath(), m.Name)
			if err != nil {
				return models_error.NewIOFailure("checking module", m.Name, device.Path(), err)
			}
			if ok {
				logger.Debug("dependency already installed", slog_attr.ModuleKey, m.Name, slog_attr.DeviceKey, device.Path())
				continue
			}
		}
		if err = s.syncHdl.Install(ctx, device, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) indexDevices(ctx context.Context) error {
	managed, plain, err := s.drivesHdl.Index(ctx)
	if err != nil {
		return err
	}
	devices := make(map[string]*drives.ManagedDevice, len(managed))
	order := make([]string, 0, len(managed))
	for _, d := range managed {
		if _, ok := devices[d.ID()]; ok {
			continue
		}
		devices[d.ID()] = d
		order = append(order, d.ID())
	}
	s.mu.Lock()
	s.devices = devices
	s.deviceOrder = order
	s.plainDevices = plain
	selected := s.selection.DeviceID
	_, ok := devices[selected]
	dropped := selected != "" && !ok
	if dropped {
		s.selection.DeviceID = ""
	}
	s.mu.Unlock()
	if dropped {
		logger.Info("selected device no longer available", slog_attr.DeviceKey, selected)
		s.events.SelectedDevice.Publish("")
	}
	s.events.DevicesIndexed.Publish(s.GetDevices())
	return nil
}

func (s *Service) device(id string) (*drives.ManagedDevice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	device, ok := s.devices[id]
	if !ok {
		return nil, models_error.NewNotFoundError("device", id, "")
	}
	return device, nil
}

// lockDevice acquires the locks of a module operation on a device. Re-indexing devices is
// excluded for its whole duration, and if withBundles is set so is changing the bundle cache.
func (s *Service) lockDevice(id, reason string, withBundles bool) (func(), error) {
	if err := s.devicesMu.TryRLock(); err != nil {
		return nil, err
	}
	if err := s.deviceMu.TryLock(id, reason); err != nil {
		s.devicesMu.RUnlock()
		return nil, err
	}
	if withBundles {
		if err := s.bundlesMu.TryRLock(); err != nil {
			s.deviceMu.Unlock(id)
			s.devicesMu.RUnlock()
			return nil, err
		}
	}
	return func() {
		if withBundles {
			s.bundlesMu.RUnlock()
		}
		s.deviceMu.Unlock(id)
		s.devicesMu.RUnlock()
	}, nil
}

func (s *Service) refreshDevice(device *drives.ManagedDevice) {
	if err := device.Recalculate(); err != nil {
		logger.Error("recalculating device failed", slog_attr.DeviceKey, device.Path(), slog_attr.ErrorKey, err)
	}
	s.events.DeviceChanged.Publish(device.Info())
}

func entryExists(dir, name string) (bool, error) {
	if _, err := os.Lstat(filepath.Join(dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
