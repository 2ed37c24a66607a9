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

package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/fs_util"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/bundle"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/slog_attr"
)

// Target is a device with a module directory.
type Target interface {
	Path() string
	ModulePath() string
}

// Handler applies module operations to a target's module directory. It does not refresh
// any derived device state; callers must recalculate the device afterwards. Callers must
// also exclude concurrent operations against the same target.
type Handler struct{}

func New() *Handler {
	return &Handler{}
}

// Install copies a module into the module directory of the target. An existing entry
// with the same name is never overwritten.
func (h *Handler) Install(ctx context.Context, target Target, mod *bundle.Module) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validName(mod.Name); err != nil {
		return err
	}
	modulePath := target.ModulePath()
	if err := os.MkdirAll(modulePath, 0775); err != nil {
		return models_error.NewIOFailure("creating module directory", mod.Name, target.Path(), err)
	}
	dst := filepath.Join(modulePath, mod.Name)
	if _, err := os.Lstat(dst); err == nil {
		return models_error.NewInstallConflictError(mod.Name, target.Path())
	} else if !errors.Is(err, fs.ErrNotExist) {
		return models_error.NewIOFailure("installing", mod.Name, target.Path(), err)
	}
	var err error
	if mod.IsPackage {
		err = fs_util.CopyDir(mod.Path, dst)
	} else {
		_, err = fs_util.CopyFile(mod.Path, dst)
		if err != nil && !errors.Is(err, fs.ErrExist) {
			_ = os.Remove(dst)
		}
	}
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return models_error.NewInstallConflictError(mod.Name, target.Path())
		}
		return models_error.NewIOFailure("installing", mod.Name, target.Path(), err)
	}
	logger.Info("installed module", slog_attr.ModuleKey, mod.Name, slog_attr.DeviceKey, target.Path())
	return nil
}

// Uninstall removes the named entry from the module directory of the target.
func (h *Handler) Uninstall(ctx context.Context, target Target, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validName(name); err != nil {
		return err
	}
	dst := filepath.Join(target.ModulePath(), name)
	fileInfo, err := os.Lstat(dst)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models_error.NewNotFoundError("module", name, target.Path())
		}
		return models_error.NewIOFailure("uninstalling", name, target.Path(), err)
	}
	if fileInfo.IsDir() {
		err = os.RemoveAll(dst)
	} else {
		err = os.Remove(dst)
	}
	if err != nil {
		return models_error.NewIOFailure("uninstalling", name, target.Path(), err)
	}
	logger.Info("uninstalled module", slog_attr.ModuleKey, name, slog_attr.DeviceKey, target.Path())
	return nil
}

// Reinstall uninstalls and installs a module as one operation. If the install step fails
// the module stays absent and a PartialFailureError is returned.
func (h *Handler) Reinstall(ctx context.Context, target Target, mod *bundle.Module) error {
	if err := h.Uninstall(ctx, target, mod.Name); err != nil {
		return err
	}
	if err := h.Install(context.WithoutCancel(ctx), target, mod); err != nil {
		logger.Error("reinstall incomplete", slog_attr.ModuleKey, mod.Name, slog_attr.DeviceKey, target.Path(), slog_attr.ErrorKey, err)
		return models_error.NewPartialFailureError(mod.Name, target.Path(), err)
	}
	return nil
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return models_error.NewInvalidInputError(fmt.Errorf("invalid module name '%s'", name))
	}
	return nil
}
