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

package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/fs_util"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/slog_attr"
	"gopkg.in/yaml.v3"
)

type Config struct {
	FilePath    string `json:"file_path" env_var:"CREDENTIALS_FILE_PATH"`
	TokenEnvVar string `json:"token_env_var" env_var:"CREDENTIALS_TOKEN_ENV_VAR"`
}

type file struct {
	GitHubToken string `yaml:"github_token"`
}

// Handler provides the token used to authenticate against the release host. Lookup
// order is environment variable, in-memory value, credentials file.
type Handler struct {
	mu     sync.RWMutex
	config Config
	token  string
	getenv func(string) string
}

func New(config Config) *Handler {
	return &Handler{
		config: config,
		getenv: os.Getenv,
	}
}

func (h *Handler) Token() (string, bool) {
	if h.config.TokenEnvVar != "" {
		if v := strings.TrimSpace(h.getenv(h.config.TokenEnvVar)); v != "" {
			return v, true
		}
	}
	h.mu.RLock()
	token := h.token
	h.mu.RUnlock()
	if token != "" {
		return token, true
	}
	f, err := h.read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("reading credentials file failed", slog_attr.FilePathKey, h.config.FilePath, slog_attr.ErrorKey, err)
		}
		return "", false
	}
	if f.GitHubToken == "" {
		return "", false
	}
	return f.GitHubToken, true
}

// SetToken stores a token in memory and, if persist is set, in the credentials file.
func (h *Handler) SetToken(token string, persist bool) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return models_error.NewInvalidInputError(errors.New("empty token"))
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
	if !persist {
		return nil
	}
	return h.write(file{GitHubToken: token})
}

func (h *Handler) DeleteToken() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = ""
	if h.config.FilePath == "" {
		return nil
	}
	if err := os.Remove(h.config.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return models_error.NewIOFailure("deleting credentials", "", "", err)
	}
	return nil
}

func (h *Handler) read() (file, error) {
	if h.config.FilePath == "" {
		return file{}, os.ErrNotExist
	}
	b, err := os.ReadFile(h.config.FilePath)
	if err != nil {
		return file{}, err
	}
	var f file
	if err = yaml.Unmarshal(b, &f); err != nil {
		return file{}, fmt.Errorf("decoding '%s' failed: %w", h.config.FilePath, err)
	}
	return f, nil
}

func (h *Handler) write(f file) error {
	if h.config.FilePath == "" {
		return models_error.NewInvalidInputError(errors.New("no credentials file configured"))
	}
	b, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(h.config.FilePath), 0700); err != nil {
		return models_error.NewIOFailure("writing credentials", "", "", err)
	}
	if err = fs_util.WriteFileAtomic(h.config.FilePath, b, 0600); err != nil {
		return models_error.NewIOFailure("writing credentials", "", "", err)
	}
	return nil
}
