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

package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractTarGz(t *testing.T) {
	buf := &bytes.Buffer{}
	gw := gzip.NewWriter(buf)
	tw := tar.NewWriter(gw)
	if err := tw.WriteHeader(&tar.Header{Name: "test/", Typeflag: tar.TypeDir, Mode: 0775}); err != nil {
		t.Fatal(err)
	}
	if err := tw.WriteHeader(&tar.Header{Name: "test/lib/", Typeflag: tar.TypeDir, Mode: 0775}); err != nil {
		t.Fatal(err)
	}
	content := []byte("print('hello')")
	if err := tw.WriteHeader(&tar.Header{Name: "test/lib/mod.py", Typeflag: tar.TypeReg, Mode: 0664, Size: int64(len(content))}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	tw.Close()
	gw.Close()
	tempDir := t.TempDir()
	rootDir, err := ExtractTarGz(bytes.NewReader(buf.Bytes()), tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if rootDir != "test" {
		t.Errorf("expected %s got %s", "test", rootDir)
	}
	b, err := os.ReadFile(filepath.Join(tempDir, rootDir, "lib", "mod.py"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, content) {
		t.Errorf("expected %s got %s", content, b)
	}
	t.Run("error", func(t *testing.T) {
		_, err = ExtractTarGz(bytes.NewReader([]byte("not an archive")), tempDir)
		if err == nil {
			t.Error("expected error")
		}
	})
}

func TestExtractZip(t *testing.T) {
	tempDir := t.TempDir()
	archivePath := filepath.Join(tempDir, "test.zip")
	writeZip(t, archivePath, map[string]string{
		"bundle-9.x-mpy/lib/":          "",
		"bundle-9.x-mpy/lib/a.mpy":     "a",
		"bundle-9.x-mpy/lib/pkg/b.mpy": "b",
	})
	target := filepath.Join(tempDir, "out")
	rootDir, err := ExtractZip(archivePath, target)
	if err != nil {
		t.Fatal(err)
	}
	if rootDir != "bundle-9.x-mpy" {
		t.Errorf("expected %s got %s", "bundle-9.x-mpy", rootDir)
	}
	for p, c := range map[string]string{"lib/a.mpy": "a", "lib/pkg/b.mpy": "b"} {
		b, err := os.ReadFile(filepath.Join(target, rootDir, filepath.FromSlash(p)))
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != c {
			t.Errorf("expected %s got %s", c, string(b))
		}
	}
	t.Run("path traversal", func(t *testing.T) {
		evil := filepath.Join(tempDir, "evil.zip")
		writeZip(t, evil, map[string]string{"../escaped": "x"})
		_, err := ExtractZip(evil, filepath.Join(tempDir, "out2"))
		if err == nil {
			t.Error("expected error")
		}
		if _, err := os.Stat(filepath.Join(tempDir, "escaped")); !os.IsNotExist(err) {
			t.Error("entry written outside of target")
		}
	})
	t.Run("error", func(t *testing.T) {
		_, err := ExtractZip(filepath.Join(tempDir, "missing.zip"), target)
		if err == nil {
			t.Error("expected error")
		}
	})
}

func writeZip(t *testing.T, p string, files map[string]string) {
	t.Helper()
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err = w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err = zw.Close(); err != nil {
		t.Fatal(err)
	}
}
