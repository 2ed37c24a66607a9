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
	"os"
	"path/filepath"
	"runtime"
)

const (
	MarkerFileName = "boot_out.txt"
	ModuleDirName  = "lib"
)

var CodeFileNames = []string{"code.txt", "code.py", "main.txt", "main.py"}

var ConfigFileNames = []string{"settings.toml", "boot.py"}

type Config struct {
	// LetterMode probes drive letters A to Z instead of listing mount roots.
	LetterMode bool     `json:"letter_mode" env_var:"DRIVES_LETTER_MODE"`
	MountRoots []string `json:"mount_roots"`
}

func DefaultConfig() Config {
	switch runtime.GOOS {
	case "windows":
		return Config{LetterMode: true}
	case "darwin":
		return Config{MountRoots: []string{"/Volumes"}}
	default:
		user := os.Getenv("USER")
		if user == "" {
			return Config{MountRoots: []string{"/media", "/run/media"}}
		}
		return Config{MountRoots: []string{filepath.Join("/media", user), filepath.Join("/run/media", user)}}
	}
}
