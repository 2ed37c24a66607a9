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

package bundles

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/SENERGY-Platform/bundle-manager/pkg/models/bundle"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
)

const testTag = "20240101"

func writeSnapshot(t *testing.T, dir string, relPaths bool) {
	t.Helper()
	versions := []string{
		"adafruit-circuitpython-bundle-8.x-mpy-" + testTag,
		"adafruit-circuitpython-bundle-9.x-mpy-" + testTag,
	}
	var bundles []string
	for _, v := range versions {
		lib := filepath.Join(dir, v, bundle.ModuleRootName)
		if err := os.MkdirAll(filepath.Join(lib, "adafruit_bus_device"), 0775); err != nil {
			t.Fatal(err)
		}
		for _, f := range []string{"neopixel.mpy", "adafruit_pixelbuf.mpy", "adafruit_bus_device/i2c_device.mpy", "unknown.mpy"} {
			if err := os.WriteFile(filepath.Join(lib, filepath.FromSlash(f)), []byte(f), 0664); err != nil {
				t.Fatal(err)
			}
		}
		if relPaths {
			bundles = append(bundles, v)
		} else {
			bundles = append(bundles, filepath.Join(dir, v))
		}
	}
	pypi := "adafruit-circuitpython-neopixel"
	manifest := bundle.Manifest{
		Title:    "Adafruit CircuitPython Bundle " + testTag,
		TagName:  testTag,
		URL:      "https://github.com/adafruit/Adafruit_CircuitPython_Bundle/releases/tag/" + testTag,
		Released: 1704067200.5,
		Bundles:  bundles,
		Dependencies: map[string]bundle.DependencyDecl{
			"neopixel": {
				PypiName:     &pypi,
				Dependencies: []string{"adafruit_pixelbuf"},
			},
			"adafruit_pixelbuf": {
				Dependencies: []string{},
			},
			"adafruit_bus_device": {
				Package:      true,
				Dependencies: []string{},
			},
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

func TestVersionLabel(t *testing.T) {
	cases := [][4]string{
		{"adafruit-circuitpython-bundle-9.x-mpy-20240101", "20240101", "9.x-mpy"},
		{"circuitpython-community-bundle-py-20240101", "20240101", "py"},
		{"other-9.x-mpy-20240101", "20240101", "other-9.x-mpy"},
		{"adafruit-circuitpython-bundle-py", "", "py"},
	}
	for _, c := range cases {
		if l := VersionLabel(c[0], c[1], DefaultVersionPrefixes); l != c[2] {
			t.Errorf("expected %s got %s", c[2], l)
		}
	}
}

func TestLoadSnapshot_DuplicateLabels(t *testing.T) {
	dir := t.TempDir()
	versionDirs := []string{
		"adafruit-circuitpython-bundle-9.x-mpy-" + testTag,
		"circuitpython-community-bundle-9.x-mpy-" + testTag,
		"x/adafruit-circuitpython-bundle-9.x-mpy-" + testTag,
		"y/adafruit-circuitpython-bundle-9.x-mpy-" + testTag,
	}
	modules := []string{"a.mpy", "b.mpy", "c.mpy", "d.mpy"}
	for i, v := range versionDirs {
		lib := filepath.Join(dir, filepath.FromSlash(v), bundle.ModuleRootName)
		if err := os.MkdirAll(lib, 0775); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(lib, modules[i]), nil, 0664); err != nil {
			t.Fatal(err)
		}
	}
	b, err := json.Marshal(bundle.Manifest{Title: "Bundle", TagName: testTag, Bundles: versionDirs})
	if err != nil {
		t.Fatal(err)
	}
	if err = os.WriteFile(filepath.Join(dir, bundle.ManifestFileName), b, 0664); err != nil {
		t.Fatal(err)
	}
	snapshot, err := LoadSnapshot(dir, DefaultVersionPrefixes)
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{
		"9.x-mpy",
		"circuitpython-community-bundle-9.x-mpy-" + testTag,
		"adafruit-circuitpython-bundle-9.x-mpy-" + testTag,
		"9.x-mpy-3",
	}
	if !reflect.DeepEqual(snapshot.Versions, expected) {
		t.Fatalf("expected %v got %v", expected, snapshot.Versions)
	}
	for i, v := range expected {
		set, ok := snapshot.ModuleSet(v)
		if !ok {
			t.Errorf("module set %s not found", v)
			continue
		}
		if _, ok = set.Get(modules[i]); !ok || set.Len() != 1 {
			t.Errorf("module set %s does not hold %s", v, modules[i])
		}
	}
}

func TestLoadSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Adafruit CircuitPython Bundle 20240101")
	writeSnapshot(t, dir, true)
	snapshot, err := LoadSnapshot(dir, DefaultVersionPrefixes)
	if err != nil {
		t.Fatal(err)
	}
	if snapshot.ID != "Adafruit CircuitPython Bundle 20240101" {
		t.Errorf("unexpected id %s", snapshot.ID)
	}
	if !reflect.DeepEqual(snapshot.Versions, []string{"8.x-mpy", "9.x-mpy"}) {
		t.Errorf("unexpected versions %v", snapshot.Versions)
	}
	if !snapshot.Released.Equal(time.Unix(1704067200, 500000000)) {
		t.Errorf("unexpected release time %v", snapshot.Released)
	}
	set, ok := snapshot.ModuleSet("9.x-mpy")
	if !ok {
		t.Fatal("missing module set")
	}
	if set.Len() != 4 {
		t.Errorf("expected 4 modules got %d", set.Len())
	}
	m, ok := set.Get("neopixel")
	if !ok {
		t.Fatal("neopixel not found by stem")
	}
	if m.Name != "neopixel.mpy" || m.IsPackage || m.Meta == nil || *m.Meta.PypiName != "adafruit-circuitpython-neopixel" {
		t.Errorf("unexpected module %+v", m)
	}
	if !reflect.DeepEqual(m.DependencyNames(), []string{"adafruit_pixelbuf"}) {
		t.Errorf("unexpected dependencies %v", m.DependencyNames())
	}
	m, ok = set.Get("adafruit_bus_device")
	if !ok || !m.IsPackage {
		t.Errorf("expected package, got %+v", m)
	}
	m, ok = set.Get("unknown.mpy")
	if !ok {
		t.Fatal("unknown.mpy not found by name")
	}
	if m.Meta != nil {
		t.Error("expected no metadata")
	}
	t.Run("moved absolute paths", func(t *testing.T) {
		tmpDir := t.TempDir()
		oldDir := filepath.Join(tmpDir, "old")
		writeSnapshot(t, oldDir, false)
		newDir := filepath.Join(tmpDir, "new")
		if err := os.Rename(oldDir, newDir); err != nil {
			t.Fatal(err)
		}
		snapshot, err := LoadSnapshot(newDir, DefaultVersionPrefixes)
		if err != nil {
			t.Fatal(err)
		}
		set, ok := snapshot.ModuleSet("8.x-mpy")
		if !ok || set.Len() != 4 {
			t.Errorf("expected 4 modules in moved snapshot")
		}
		if filepath.Dir(snapshot.VersionPaths[0]) != newDir {
			t.Errorf("unexpected version path %s", snapshot.VersionPaths[0])
		}
	})
	t.Run("missing manifest", func(t *testing.T) {
		_, err := LoadSnapshot(t.TempDir(), DefaultVersionPrefixes)
		var mre *models_error.ManifestReadError
		if !errors.As(err, &mre) {
			t.Errorf("expected ManifestReadError got %v", err)
		}
	})
}

func TestHandler_Index(t *testing.T) {
	root := t.TempDir()
	writeSnapshot(t, filepath.Join(root, "valid"), true)
	corrupt := filepath.Join(root, "corrupt")
	if err := os.MkdirAll(corrupt, 0775); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(corrupt, bundle.ManifestFileName), []byte("{not json"), 0664); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "stray-file"), nil, 0664); err != nil {
		t.Fatal(err)
	}
	h := New(Config{CacheRoot: root})
	result, err := h.Index(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Snapshots) != 1 || result.Snapshots[0].ID != "valid" {
		t.Errorf("expected one valid snapshot, got %v", result.Snapshots)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Path != corrupt {
		t.Errorf("expected one skipped snapshot, got %v", result.Skipped)
	}
	if len(h.Snapshots()) != 1 {
		t.Errorf("expected 1 snapshot in catalog got %d", len(h.Snapshots()))
	}
	if _, err = h.Snapshot("valid"); err != nil {
		t.Error(err)
	}
	_, err = h.Snapshot("corrupt")
	if !errors.Is(err, models_error.NotFoundErr) {
		t.Errorf("expected %v got %v", models_error.NotFoundErr, err)
	}
	t.Run("delete", func(t *testing.T) {
		if err := h.Delete(context.Background(), "valid"); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filepath.Join(root, "valid")); !os.IsNotExist(err) {
			t.Error("snapshot directory still exists")
		}
		if len(h.Snapshots()) != 0 {
			t.Error("snapshot still in catalog")
		}
		err := h.Delete(context.Background(), "valid")
		if !errors.Is(err, models_error.NotFoundErr) {
			t.Errorf("expected %v got %v", models_error.NotFoundErr, err)
		}
	})
	t.Run("missing root", func(t *testing.T) {
		h := New(Config{CacheRoot: filepath.Join(root, "missing")})
		result, err := h.Index(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(result.Snapshots) != 0 || len(result.Skipped) != 0 {
			t.Errorf("expected empty result got %v", result)
		}
	})
}
