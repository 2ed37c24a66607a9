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

package error

import (
	"errors"
	"fmt"
	"strings"
)

var NotFoundErr = errors.New("not found")

const (
	KindManifestRead         = "manifest_read"
	KindDependencyCycle      = "dependency_cycle"
	KindUnresolvedDependency = "unresolved_dependency"
	KindInstallConflict      = "install_conflict"
	KindNotFound             = "not_found"
	KindIOFailure            = "io_failure"
	KindAlreadyExists        = "already_exists"
	KindPartialFailure       = "partial_failure"
	KindResourceBusy         = "resource_busy"
	KindInvalidInput         = "invalid_input"
	KindCanceled             = "canceled"
	KindUnknown              = "unknown"
)

type MultiError struct {
	errs []error
}

func NewMultiError(errs []error) *MultiError {
	return &MultiError{errs: errs}
}

func (e *MultiError) Error() string {
	var str string
	errsLen := len(e.errs)
	for i, err := range e.errs {
		str += err.Error()
		if i < errsLen-1 {
			str += "\n"
		}
	}
	return str
}

func (e *MultiError) Errors() []error {
	return e.errs
}

// ManifestReadError is returned when a snapshot directory lacks a readable or valid manifest.
type ManifestReadError struct {
	Path string
	err  error
}

func NewManifestReadError(path string, err error) *ManifestReadError {
	return &ManifestReadError{Path: path, err: err}
}

func (e *ManifestReadError) Error() string {
	return fmt.Sprintf("reading manifest of bundle '%s' failed: %s", e.Path, e.err)
}

func (e *ManifestReadError) Unwrap() error {
	return e.err
}

type DependencyCycleError struct {
	Bundle  string
	Version string
	Cycle   []string
}

func NewDependencyCycleError(bundle, version string, cycle []string) *DependencyCycleError {
	return &DependencyCycleError{Bundle: bundle, Version: version, Cycle: cycle}
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("dependency cycle in bundle '%s' (%s): %s", e.Bundle, e.Version, strings.Join(e.Cycle, " -> "))
}

type UnresolvedDependencyError struct {
	Bundle     string
	Version    string
	Module     string
	Dependency string
}

func NewUnresolvedDependencyError(bundle, version, module, dependency string) *UnresolvedDependencyError {
	return &UnresolvedDependencyError{Bundle: bundle, Version: version, Module: module, Dependency: dependency}
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("dependency '%s' of module '%s' not found in bundle '%s' (%s)", e.Dependency, e.Module, e.Bundle, e.Version)
}

type InstallConflictError struct {
	Module string
	Device string
}

func NewInstallConflictError(module, device string) *InstallConflictError {
	return &InstallConflictError{Module: module, Device: device}
}

func (e *InstallConflictError) Error() string {
	return fmt.Sprintf("module '%s' already installed on device '%s'", e.Module, e.Device)
}

// NotFoundError matches NotFoundErr via errors.Is.
type NotFoundError struct {
	Kind string
	Name string
	In   string
}

func NewNotFoundError(kind, name, in string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name, In: in}
}

func (e *NotFoundError) Error() string {
	if e.In != "" {
		return fmt.Sprintf("%s '%s' not found in '%s'", e.Kind, e.Name, e.In)
	}
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == NotFoundErr
}

type IOFailure struct {
	Op     string
	Module string
	Device string
	err    error
}

func NewIOFailure(op, module, device string, err error) *IOFailure {
	return &IOFailure{Op: op, Module: module, Device: device, err: err}
}

func (e *IOFailure) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Module != "" {
		b.WriteString(" '" + e.Module + "'")
	}
	if e.Device != "" {
		b.WriteString(" on '" + e.Device + "'")
	}
	b.WriteString(" failed: ")
	b.WriteString(e.err.Error())
	return b.String()
}

func (e *IOFailure) Unwrap() error {
	return e.err
}

type AlreadyExistsError struct {
	Bundle string
	Path   string
}

func NewAlreadyExistsError(bundle, path string) *AlreadyExistsError {
	return &AlreadyExistsError{Bundle: bundle, Path: path}
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("bundle '%s' already exists at '%s'", e.Bundle, e.Path)
}

// PartialFailureError reports a reinstall where the uninstall step succeeded but the
// install step failed, leaving the module absent from the device.
type PartialFailureError struct {
	Module string
	Device string
	err    error
}

func NewPartialFailureError(module, device string, err error) *PartialFailureError {
	return &PartialFailureError{Module: module, Device: device, err: err}
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("module '%s' was removed from device '%s' but could not be installed again: %s", e.Module, e.Device, e.err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.err
}

type ResourceBusyError struct {
	Resource string
	Reason   string
}

func NewResourceBusyError(resource, reason string) *ResourceBusyError {
	return &ResourceBusyError{Resource: resource, Reason: reason}
}

func (e *ResourceBusyError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("'%s' is busy", e.Resource)
	}
	return fmt.Sprintf("'%s' is busy: %s", e.Resource, e.Reason)
}

type InvalidInputError struct {
	err error
}

func NewInvalidInputError(err error) *InvalidInputError {
	return &InvalidInputError{err: err}
}

func (e *InvalidInputError) Error() string {
	return e.err.Error()
}

func (e *InvalidInputError) Unwrap() error {
	return e.err
}

// Kind returns a machine-readable identifier for the outermost known error type in err's chain.
func Kind(err error) string {
	var pfe *PartialFailureError
	if errors.As(err, &pfe) {
		return KindPartialFailure
	}
	var mre *ManifestReadError
	if errors.As(err, &mre) {
		return KindManifestRead
	}
	var dce *DependencyCycleError
	if errors.As(err, &dce) {
		return KindDependencyCycle
	}
	var ude *UnresolvedDependencyError
	if errors.As(err, &ude) {
		return KindUnresolvedDependency
	}
	var ice *InstallConflictError
	if errors.As(err, &ice) {
		return KindInstallConflict
	}
	var aee *AlreadyExistsError
	if errors.As(err, &aee) {
		return KindAlreadyExists
	}
	var rbe *ResourceBusyError
	if errors.As(err, &rbe) {
		return KindResourceBusy
	}
	var iie *InvalidInputError
	if errors.As(err, &iie) {
		return KindInvalidInput
	}
	var iof *IOFailure
	if errors.As(err, &iof) {
		return KindIOFailure
	}
	if errors.Is(err, NotFoundErr) {
		return KindNotFound
	}
	return KindUnknown
}
