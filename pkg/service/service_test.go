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
	"encoding/json"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/bundles"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/credentials"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/drives"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/jobs"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/releases"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/resolver"
	sync_hdl "github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/sync"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/bundle"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
	models_job "github.com/SENERGY-Platform/bundle-manager/pkg/models/job"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/release"
	models_service "github.com/SENERGY-Platform/bundle-manager/pkg/models/service"
	"github.com/SENERGY-Platform/go-cc-job-handler/ccjh"
)

const (
	testBundleID = "bundle-1"
	testVersion  = "9.x-mpy"
)

type testSource struct{}

func (testSource) Name() string {
	return "test"
}

func (testSource) Title(rel release.Release) string {
	return "Test Bundle " + rel.TagName
}

func (testSource) Releases(_ context.Context) iter.Seq2[release.Release, error] {
	return func(yield func(release.Release, error) bool) {
		for _, tag := range []string{"3", "2"} {
			if !yield(release.Release{TagName: tag}, nil) {
				return
			}
		}
	}
}

func (testSource) Get(_ context.Context, tagName string) (release.Release, error) {
	if tagName != "2" {
		return release.Release{}, models_error.NewNotFoundError("release", tagName, "test")
	}
	return release.Release{TagName: "2", Published: time.Unix(1700000000, 0)}, nil
}

func (testSource) Fetch(_ context.Context, _ release.Release, dstDir string, progress release.ProgressFunc) error {
	lib := filepath.Join(dstDir, "adafruit-circuitpython-bundle-9.x-mpy-2", bundle.ModuleRootName)
	if err := os.MkdirAll(lib, 0775); err != nil {
		return err
	}
	progress(1, 1, "done")
	return os.WriteFile(filepath.Join(lib, "foo.mpy"), []byte("foo"), 0664)
}

func writeTestBundle(t *testing.T, cacheRoot string) {
	t.Helper()
	dir := filepath.Join(cacheRoot, testBundleID)
	versionDir := "adafruit-circuitpython-bundle-9.x-mpy-1"
	lib := filepath.Join(dir, versionDir, bundle.ModuleRootName)
	if err := os.MkdirAll(filepath.Join(lib, "adafruit_bus_device"), 0775); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"neopixel.mpy", "adafruit_pixelbuf.mpy", "adafruit_bus_device/i2c_device.mpy"} {
		if err := os.WriteFile(filepath.Join(lib, filepath.FromSlash(f)), []byte(f), 0664); err != nil {
			t.Fatal(err)
		}
	}
	manifest := bundle.Manifest{
		Title:    "Bundle 1",
		TagName:  "1",
		Released: 1700000000,
		Bundles:  []string{versionDir},
		Dependencies: map[string]bundle.DependencyDecl{
			"neopixel":            {Dependencies: []string{"adafruit_pixelbuf"}},
			"adafruit_pixelbuf":   {},
			"adafruit_bus_device": {Package: true},
		},
	}
	b, err := json.Marshal(manifest)
	if err != nil {
		t.Fatal(err)
	}
	if err = os.WriteFile(filepath.Join(dir, bundle.ManifestFileName), b, 0664); err != nil {
		t.Fatal(err)
	}
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	ccHandler := ccjh.New(10)
	if err := ccHandler.RunAsync(2, 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		ccHandler.Stop()
	})
	return newTestServiceWithRunner(t, ccHandler)
}

func newTestServiceWithRunner(t *testing.T, ccHandler *ccjh.Handler) (*Service, string) {
	t.Helper()
	root := t.TempDir()
	cacheRoot := filepath.Join(root, "cache")
	writeTestBundle(t, cacheRoot)
	mountRoot := filepath.Join(root, "media")
	if err := os.MkdirAll(filepath.Join(mountRoot, "CIRCUITPY"), 0775); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(mountRoot, "CIRCUITPY", drives.MarkerFileName), []byte("Adafruit CircuitPython 9.0.0"), 0664); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(mountRoot, "USB"), 0775); err != nil {
		t.Fatal(err)
	}
	s := New(
		bundles.New(bundles.Config{CacheRoot: cacheRoot}),
		drives.New(drives.Config{MountRoots: []string{mountRoot}}),
		resolver.New(),
		sync_hdl.New(),
		releases.New(cacheRoot, testSource{}),
		credentials.New(credentials.Config{FilePath: filepath.Join(root, "credentials.yml")}),
		jobs.New(context.Background(), ccHandler),
	)
	if err := s.InitBundles(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.InitDevices(context.Background()); err != nil {
		t.Fatal(err)
	}
	return s, mountRoot
}

func waitForJob(t *testing.T, s *Service, id string) models_job.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := s.GetJob(id)
		if err != nil {
			t.Fatal(err)
		}
		if job.Completed != nil {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job '%s' did not complete", id)
	return models_job.Job{}
}

func managedDeviceID(t *testing.T, s *Service) string {
	t.Helper()
	devices := s.GetDevices()
	if len(devices.Managed) != 1 {
		t.Fatalf("expected one managed device, got %d", len(devices.Managed))
	}
	return devices.Managed[0].ID
}

func TestService_Init(t *testing.T) {
	s, mountRoot := newTestService(t)
	if l := len(s.GetBundles()); l != 1 {
		t.Errorf("expected one bundle, got %d", l)
	}
	devices := s.GetDevices()
	if len(devices.Managed) != 1 || devices.Managed[0].MountPath != filepath.Join(mountRoot, "CIRCUITPY") {
		t.Errorf("unexpected managed devices %+v", devices.Managed)
	}
	if len(devices.Plain) != 1 || devices.Plain[0].MountPath != filepath.Join(mountRoot, "USB") {
		t.Errorf("unexpected plain devices %+v", devices.Plain)
	}
}

func TestService_GetModules(t *testing.T) {
	s, _ := newTestService(t)
	modules, err := s.GetModules(testBundleID, testVersion, "PIXEL")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, m := range modules {
		names = append(names, m.Name)
	}
	if !reflect.DeepEqual(names, []string{"adafruit_pixelbuf.mpy", "neopixel.mpy"}) {
		t.Errorf("unexpected modules %v", names)
	}
	if _, err = s.GetModules(testBundleID, "7.x-mpy", ""); !errors.Is(err, models_error.NotFoundErr) {
		t.Errorf("expected not found error, got %v", err)
	}
	deps, err := s.GetDependencies(testBundleID, testVersion, "neopixel.mpy")
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 1 || deps[0].Name != "adafruit_pixelbuf.mpy" {
		t.Errorf("unexpected dependencies %v", deps)
	}
}

func TestService_ModuleJobs(t *testing.T) {
	s, mountRoot := newTestService(t)
	deviceID := managedDeviceID(t, s)
	var changed []drives.ManagedDeviceInfo
	unsubscribe := s.Events().DeviceChanged.Subscribe(func(info drives.ManagedDeviceInfo) {
		changed = append(changed, info)
	})
	defer unsubscribe()
	jID, err := s.InstallModule(deviceID, models_service.InstallRequest{
		BundleID:         testBundleID,
		Version:          testVersion,
		Module:           "neopixel",
		WithDependencies: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if job := waitForJob(t, s, jID); job.Error != nil {
		t.Fatalf("unexpected job error %+v", job.Error)
	}
	info, err := s.GetDevice(deviceID)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(info.InstalledModules, []string{"adafruit_pixelbuf.mpy", "neopixel.mpy"}) {
		t.Errorf("unexpected installed modules %v", info.InstalledModules)
	}
	if len(changed) != 1 {
		t.Errorf("expected one device changed event, got %d", len(changed))
	}
	t.Run("conflict", func(t *testing.T) {
		jID, err := s.InstallModule(deviceID, models_service.InstallRequest{BundleID: testBundleID, Version: testVersion, Module: "neopixel.mpy"})
		if err != nil {
			t.Fatal(err)
		}
		job := waitForJob(t, s, jID)
		if job.Error == nil || job.Error.Kind != models_error.KindInstallConflict {
			t.Errorf("unexpected job error %+v", job.Error)
		}
	})
	t.Run("reinstall", func(t *testing.T) {
		p := filepath.Join(mountRoot, "CIRCUITPY", drives.ModuleDirName, "neopixel.mpy")
		if err := os.WriteFile(p, []byte("modified"), 0664); err != nil {
			t.Fatal(err)
		}
		jID, err := s.ReinstallModule(deviceID, "neopixel.mpy", models_service.ReinstallRequest{BundleID: testBundleID, Version: testVersion})
		if err != nil {
			t.Fatal(err)
		}
		if job := waitForJob(t, s, jID); job.Error != nil {
			t.Fatalf("unexpected job error %+v", job.Error)
		}
		b, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "neopixel.mpy" {
			t.Errorf("unexpected content %q", b)
		}
	})
	t.Run("uninstall", func(t *testing.T) {
		jID, err := s.UninstallModule(deviceID, "neopixel.mpy")
		if err != nil {
			t.Fatal(err)
		}
		if job := waitForJob(t, s, jID); job.Error != nil {
			t.Fatalf("unexpected job error %+v", job.Error)
		}
		info, err := s.GetDevice(deviceID)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(info.InstalledModules, []string{"adafruit_pixelbuf.mpy"}) {
			t.Errorf("unexpected installed modules %v", info.InstalledModules)
		}
	})
	t.Run("unknown module", func(t *testing.T) {
		_, err := s.InstallModule(deviceID, models_service.InstallRequest{BundleID: testBundleID, Version: testVersion, Module: "missing"})
		if !errors.Is(err, models_error.NotFoundErr) {
			t.Errorf("expected not found error, got %v", err)
		}
	})
}

func TestService_Busy(t *testing.T) {
	s, _ := newTestService(t)
	deviceID := managedDeviceID(t, s)
	t.Run("device", func(t *testing.T) {
		if err := s.deviceMu.TryLock(deviceID, "test"); err != nil {
			t.Fatal(err)
		}
		defer s.deviceMu.Unlock(deviceID)
		_, err := s.UninstallModule(deviceID, "neopixel.mpy")
		if models_error.Kind(err) != models_error.KindResourceBusy {
			t.Errorf("expected busy error, got %v", err)
		}
	})
	t.Run("index devices during device operation", func(t *testing.T) {
		if err := s.devicesMu.TryRLock(); err != nil {
			t.Fatal(err)
		}
		defer s.devicesMu.RUnlock()
		_, err := s.IndexDevices()
		if models_error.Kind(err) != models_error.KindResourceBusy {
			t.Errorf("expected busy error, got %v", err)
		}
	})
	t.Run("delete bundle during install", func(t *testing.T) {
		if err := s.bundlesMu.TryRLock(); err != nil {
			t.Fatal(err)
		}
		defer s.bundlesMu.RUnlock()
		err := s.DeleteBundle(context.Background(), testBundleID)
		if models_error.Kind(err) != models_error.KindResourceBusy {
			t.Errorf("expected busy error, got %v", err)
		}
	})
	t.Run("install during index", func(t *testing.T) {
		if err := s.bundlesMu.TryLock("test"); err != nil {
			t.Fatal(err)
		}
		defer s.bundlesMu.Unlock()
		_, err := s.InstallModule(deviceID, models_service.InstallRequest{BundleID: testBundleID, Version: testVersion, Module: "neopixel.mpy"})
		if models_error.Kind(err) != models_error.KindResourceBusy {
			t.Errorf("expected busy error, got %v", err)
		}
		if s.deviceMu.IsLocked(deviceID) {
			t.Error("device lock not released")
		}
	})
}

func TestService_CancelPending(t *testing.T) {
	ccHandler := ccjh.New(10)
	s, mountRoot := newTestServiceWithRunner(t, ccHandler)
	deviceID := managedDeviceID(t, s)
	var finished []models_job.Job
	s.Events().JobFinished.Subscribe(func(job models_job.Job) {
		finished = append(finished, job)
	})
	jID, err := s.InstallModule(deviceID, models_service.InstallRequest{BundleID: testBundleID, Version: testVersion, Module: "neopixel"})
	if err != nil {
		t.Fatal(err)
	}
	if err = s.CancelJob(jID); err != nil {
		t.Fatal(err)
	}
	job, err := s.GetJob(jID)
	if err != nil {
		t.Fatal(err)
	}
	if job.Started != nil || job.Canceled == nil || job.Completed == nil {
		t.Errorf("unexpected job %+v", job)
	}
	if len(finished) != 1 || finished[0].ID != jID {
		t.Errorf("unexpected finished jobs %v", finished)
	}
	if s.deviceMu.IsLocked(deviceID) {
		t.Error("device lock not released")
	}
	if err = ccHandler.RunAsync(2, 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		ccHandler.Stop()
	})
	if _, err = os.Stat(filepath.Join(mountRoot, "CIRCUITPY", drives.ModuleDirName, "neopixel.mpy")); !os.IsNotExist(err) {
		t.Errorf("canceled install wrote to the device: %v", err)
	}
	jID, err = s.InstallModule(deviceID, models_service.InstallRequest{BundleID: testBundleID, Version: testVersion, Module: "neopixel"})
	if err != nil {
		t.Fatalf("device still locked: %v", err)
	}
	if job := waitForJob(t, s, jID); job.Error != nil {
		t.Fatalf("unexpected job error %+v", job.Error)
	}
	jID, err = s.IndexDevices()
	if err != nil {
		t.Fatalf("devices still locked: %v", err)
	}
	waitForJob(t, s, jID)
}

func TestService_Selection(t *testing.T) {
	s, _ := newTestService(t)
	deviceID := managedDeviceID(t, s)
	var bundleEvents, deviceEvents []string
	s.Events().SelectedBundle.Subscribe(func(id string) {
		bundleEvents = append(bundleEvents, id)
	})
	s.Events().SelectedDevice.Subscribe(func(id string) {
		deviceEvents = append(deviceEvents, id)
	})
	if err := s.SetSelection(models_service.Selection{BundleID: testBundleID, DeviceID: deviceID}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSelection(models_service.Selection{BundleID: testBundleID, DeviceID: deviceID}); err != nil {
		t.Fatal(err)
	}
	if sel := s.GetSelection(); sel.BundleID != testBundleID || sel.DeviceID != deviceID {
		t.Errorf("unexpected selection %+v", sel)
	}
	if !reflect.DeepEqual(bundleEvents, []string{testBundleID}) || !reflect.DeepEqual(deviceEvents, []string{deviceID}) {
		t.Errorf("unexpected events %v %v", bundleEvents, deviceEvents)
	}
	if err := s.SetSelection(models_service.Selection{DeviceID: "unknown"}); !errors.Is(err, models_error.NotFoundErr) {
		t.Errorf("expected not found error, got %v", err)
	}
	if err := s.DeleteBundle(context.Background(), testBundleID); err != nil {
		t.Fatal(err)
	}
	if sel := s.GetSelection(); sel.BundleID != "" {
		t.Errorf("selection not cleared %+v", sel)
	}
	if !reflect.DeepEqual(bundleEvents, []string{testBundleID, ""}) {
		t.Errorf("unexpected events %v", bundleEvents)
	}
	if l := len(s.GetBundles()); l != 0 {
		t.Errorf("expected no bundles, got %d", l)
	}
}

func TestService_Releases(t *testing.T) {
	s, _ := newTestService(t)
	rels, err := s.GetReleases(context.Background(), "test", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rels) != 1 || rels[0].TagName != "3" {
		t.Errorf("unexpected releases %v", rels)
	}
	if _, err = s.GetReleases(context.Background(), "unknown", 0); !errors.Is(err, models_error.NotFoundErr) {
		t.Errorf("expected not found error, got %v", err)
	}
	var indexed []bundles.IndexResult
	s.Events().BundlesIndexed.Subscribe(func(r bundles.IndexResult) {
		indexed = append(indexed, r)
	})
	jID, err := s.DownloadRelease("test", "2")
	if err != nil {
		t.Fatal(err)
	}
	job := waitForJob(t, s, jID)
	if job.Error != nil {
		t.Fatalf("unexpected job error %+v", job.Error)
	}
	if job.Progress == nil {
		t.Error("missing job progress")
	}
	if len(indexed) != 1 || len(indexed[0].Snapshots) != 2 {
		t.Errorf("unexpected index results %+v", indexed)
	}
	snapshot, err := s.GetBundle("Test Bundle 2")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(snapshot.Versions, []string{testVersion}) {
		t.Errorf("unexpected versions %v", snapshot.Versions)
	}
	jID, err = s.DownloadRelease("test", "2")
	if err != nil {
		t.Fatal(err)
	}
	if job = waitForJob(t, s, jID); job.Error == nil || job.Error.Kind != models_error.KindAlreadyExists {
		t.Errorf("unexpected job error %+v", job.Error)
	}
}

func TestService_Token(t *testing.T) {
	s, _ := newTestService(t)
	if s.HasToken() {
		t.Error("unexpected token")
	}
	if err := s.SetToken(" ", false); models_error.Kind(err) != models_error.KindInvalidInput {
		t.Errorf("expected invalid input error, got %v", err)
	}
	if err := s.SetToken("secret", true); err != nil {
		t.Fatal(err)
	}
	if !s.HasToken() {
		t.Error("missing token")
	}
	if err := s.DeleteToken(); err != nil {
		t.Fatal(err)
	}
	if s.HasToken() {
		t.Error("token not deleted")
	}
}
