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

package drives

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"code.cloudfoundry.org/bytefmt"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/fs_util"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/slog_attr"
	"github.com/shirou/gopsutil/v4/disk"
)

type usageFunc func(path string) (*disk.UsageStat, error)

type Capacity struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
	Free  uint64 `json:"free"`
}

type File struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

type PlainDevice struct {
	ID        string   `json:"id"`
	MountPath string   `json:"mount_path"`
	Capacity  Capacity `json:"capacity"`
}

// ManagedDeviceInfo is a point-in-time view of a managed device.
type ManagedDeviceInfo struct {
	ID               string   `json:"id"`
	MountPath        string   `json:"mount_path"`
	Capacity         Capacity `json:"capacity"`
	Marker           *string  `json:"marker"`
	CodeFile         *File    `json:"code_file"`
	ConfigFile       *File    `json:"config_file"`
	ModuleDir        *File    `json:"module_dir"`
	InstalledModules []string `json:"installed_modules"`
}

// ManagedDevice is a volume carrying the marker file. Its derived fields only change
// when Recalculate is called; module operations do not refresh them.
type ManagedDevice struct {
	mu    sync.RWMutex
	info  ManagedDeviceInfo
	usage usageFunc
}

func newManagedDevice(mountPath string, capacity Capacity, usage usageFunc) *ManagedDevice {
	d := &ManagedDevice{usage: usage}
	d.info = inspect(mountPath, capacity)
	return d
}

func (d *ManagedDevice) ID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.info.ID
}

func (d *ManagedDevice) Path() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.info.MountPath
}

func (d *ManagedDevice) ModulePath() string {
	return filepath.Join(d.Path(), ModuleDirName)
}

func (d *ManagedDevice) Info() ManagedDeviceInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	info := d.info
	info.InstalledModules = append([]string(nil), d.info.InstalledModules...)
	return info
}

func (d *ManagedDevice) InstalledModules() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.info.InstalledModules...)
}

func (d *ManagedDevice) HasModule(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, m := range d.info.InstalledModules {
		if m == name {
			return true
		}
	}
	return false
}

// Recalculate re-reads capacity and content of the device and replaces all derived fields.
func (d *ManagedDevice) Recalculate() error {
	mountPath := d.Path()
	stat, err := d.usage(mountPath)
	if err != nil {
		return models_error.NewIOFailure("reading disk usage", "", mountPath, err)
	}
	if _, err = os.Stat(filepath.Join(mountPath, MarkerFileName)); err != nil {
		return models_error.NewIOFailure("reading marker file", "", mountPath, err)
	}
	info := inspect(mountPath, newCapacity(stat))
	d.mu.Lock()
	d.info = info
	d.mu.Unlock()
	return nil
}

func inspect(mountPath string, capacity Capacity) ManagedDeviceInfo {
	info := ManagedDeviceInfo{
		ID:               deviceID(mountPath),
		MountPath:        mountPath,
		Capacity:         capacity,
		InstalledModules: []string{},
	}
	b, err := os.ReadFile(filepath.Join(mountPath, MarkerFileName))
	if err != nil {
		logger.Warn("reading marker file failed", slog_attr.DeviceKey, mountPath, slog_attr.ErrorKey, err)
	} else {
		marker := string(b)
		info.Marker = &marker
	}
	if p, fileInfo, ok := fs_util.FindFirst(mountPath, CodeFileNames); ok {
		info.CodeFile = &File{Path: p, Size: fileInfo.Size()}
	}
	if p, fileInfo, ok := fs_util.FindFirst(mountPath, ConfigFileNames); ok {
		info.ConfigFile = &File{Path: p, Size: fileInfo.Size()}
	}
	moduleDir := filepath.Join(mountPath, ModuleDirName)
	fileInfo, err := os.Stat(moduleDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("reading module directory failed", slog_attr.DeviceKey, mountPath, slog_attr.ErrorKey, err)
		}
		return info
	}
	if !fileInfo.IsDir() {
		return info
	}
	size, err := fs_util.Size(moduleDir)
	if err != nil {
		logger.Warn("calculating module directory size failed", slog_attr.DeviceKey, mountPath, slog_attr.ErrorKey, err)
	}
	info.ModuleDir = &File{Path: moduleDir, Size: size}
	entries, err := os.ReadDir(moduleDir)
	if err != nil {
		logger.Warn("listing module directory failed", slog_attr.DeviceKey, mountPath, slog_attr.ErrorKey, err)
		return info
	}
	for _, entry := range entries {
		info.InstalledModules = append(info.InstalledModules, entry.Name())
	}
	logger.Debug("inspected device", slog_attr.DeviceKey, mountPath, slog_attr.CountKey, len(info.InstalledModules), slog_attr.SizeKey, bytefmt.ByteSize(uint64(size)))
	return info
}

func newCapacity(stat *disk.UsageStat) Capacity {
	return Capacity{
		Total: stat.Total,
		Used:  stat.Used,
		Free:  stat.Free,
	}
}

func deviceID(mountPath string) string {
	hash := sha1.New()
	hash.Write([]byte(filepath.Clean(mountPath)))
	return hex.EncodeToString(hash.Sum(nil))[:12]
}
