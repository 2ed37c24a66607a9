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
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/SENERGY-Platform/bundle-manager/pkg/models/slog_attr"
	"github.com/shirou/gopsutil/v4/disk"
)

type Handler struct {
	config Config
	usage  usageFunc
}

func New(config Config) *Handler {
	return &Handler{
		config: config,
		usage:  disk.Usage,
	}
}

// Index probes all candidate mount points. Candidates without readable disk usage are skipped.
func (h *Handler) Index(ctx context.Context) ([]*ManagedDevice, []*PlainDevice, error) {
	var managed []*ManagedDevice
	var plain []*PlainDevice
	for _, mountPath := range h.candidates() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		stat, err := h.usage(mountPath)
		if err != nil {
			logger.Debug("skipping mount point", slog_attr.DeviceKey, mountPath, slog_attr.ErrorKey, err)
			continue
		}
		capacity := newCapacity(stat)
		if _, err = os.Stat(filepath.Join(mountPath, MarkerFileName)); err != nil {
			plain = append(plain, &PlainDevice{
				ID:        deviceID(mountPath),
				MountPath: mountPath,
				Capacity:  capacity,
			})
			continue
		}
		managed = append(managed, newManagedDevice(mountPath, capacity, h.usage))
	}
	logger.Info("indexed drives", slog_attr.ManagedCountKey, len(managed), slog_attr.PlainCountKey, len(plain))
	return managed, plain, nil
}

func (h *Handler) candidates() []string {
	if h.config.LetterMode {
		var paths []string
		for l := 'A'; l <= 'Z'; l++ {
			paths = append(paths, string(l)+`:\`)
		}
		return paths
	}
	var paths []string
	for _, root := range h.config.MountRoots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logger.Warn("listing mount root failed", slog_attr.DirNameKey, root, slog_attr.ErrorKey, err)
			}
			continue
		}
		for _, entry := range entries {
			p := filepath.Join(root, entry.Name())
			fileInfo, err := os.Stat(p)
			if err != nil || !fileInfo.IsDir() {
				continue
			}
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}
