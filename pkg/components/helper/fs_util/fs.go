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

package fs_util

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFile copies a regular file and refuses to overwrite an existing destination.
func CopyFile(srcPath, dstPath string) (int64, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	fileInfo, err := src.Stat()
	if err != nil {
		return 0, err
	}
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileInfo.Mode().Perm())
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(dst, src)
	if err != nil {
		dst.Close()
		return n, err
	}
	if err = dst.Close(); err != nil {
		return n, err
	}
	if n != fileInfo.Size() {
		return n, fmt.Errorf("writing '%s' incomplete: %d of %d bytes", dstPath, n, fileInfo.Size())
	}
	return n, nil
}

// CopyDir recursively copies srcPath to dstPath. The destination must not exist and
// is removed again if copying fails.
func CopyDir(srcPath, dstPath string) (err error) {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return err
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("'%s' is not a directory", srcPath)
	}
	if err = os.Mkdir(dstPath, srcInfo.Mode().Perm()); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dstPath)
		}
	}()
	err = fs.WalkDir(os.DirFS(srcPath), ".", func(currentPath string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if currentPath == "." {
			return nil
		}
		target := filepath.Join(dstPath, filepath.FromSlash(currentPath))
		if dirEntry.IsDir() {
			fileInfo, err := dirEntry.Info()
			if err != nil {
				return err
			}
			return os.Mkdir(target, fileInfo.Mode().Perm())
		}
		if !dirEntry.Type().IsRegular() {
			return nil
		}
		_, err = CopyFile(filepath.Join(srcPath, filepath.FromSlash(currentPath)), target)
		return err
	})
	return err
}

// Size returns the aggregated size of all regular files below path.
func Size(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if dirEntry.Type().IsRegular() {
			fileInfo, err := dirEntry.Info()
			if err != nil {
				return err
			}
			size += fileInfo.Size()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return size, nil
}

// FindFirst returns the path and info of the first candidate name that exists in dir.
func FindFirst(dir string, names []string) (string, fs.FileInfo, bool) {
	for _, name := range names {
		p := filepath.Join(dir, name)
		fileInfo, err := os.Stat(p)
		if err == nil {
			return p, fileInfo, true
		}
	}
	return "", nil, false
}

// IsEmptyDir reports whether path is an empty directory. A missing path counts as empty.
func IsEmptyDir(path string) (bool, error) {
	dir, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, err
	}
	defer dir.Close()
	_, err = dir.Readdirnames(1)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	tmpPath := path + "_tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
