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

package configuration

import (
	"time"

	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/bundles"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/credentials"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/drives"
	sb_config_hdl "github.com/SENERGY-Platform/go-service-base/config-hdl"
	struct_logger "github.com/SENERGY-Platform/go-service-base/struct-logger"
)

type GitHubRepository struct {
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	TitleSuffix string `json:"title_suffix"`
}

type GitHubConfig struct {
	BaseUrl      string             `json:"base_url" env_var:"GITHUB_BASE_URL"`
	Timeout      time.Duration      `json:"timeout" env_var:"GITHUB_TIMEOUT"`
	PerPage      int                `json:"per_page" env_var:"GITHUB_PER_PAGE"`
	Repositories []GitHubRepository `json:"repositories"`
}

type GitRepository struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	TitlePrefix string `json:"title_prefix"`
}

type GitConfig struct {
	Timeout      time.Duration   `json:"timeout" env_var:"GIT_TIMEOUT"`
	Repositories []GitRepository `json:"repositories"`
}

type ReleasesConfig struct {
	GitHub GitHubConfig `json:"github"`
	Git    GitConfig    `json:"git"`
}

type JobsConfig struct {
	BufferSize  int   `json:"buffer_size" env_var:"JOBS_BUFFER_SIZE"`
	MaxNumber   int   `json:"max_number" env_var:"JOBS_MAX_NUMBER"`
	JHInterval  int   `json:"jh_interval" env_var:"JOBS_JH_INTERVAL"`
	PJHInterval int64 `json:"pjh_interval" env_var:"JOBS_PJH_INTERVAL"`
	MaxAge      int64 `json:"max_age" env_var:"JOBS_MAX_AGE"`
}

type Config struct {
	ServerHost    string               `json:"server_host" env_var:"SERVER_HOST"`
	ServerPort    uint                 `json:"server_port" env_var:"SERVER_PORT"`
	Logger        struct_logger.Config `json:"logger"`
	Bundles       bundles.Config       `json:"bundles"`
	Drives        drives.Config        `json:"drives"`
	Releases      ReleasesConfig       `json:"releases"`
	Credentials   credentials.Config   `json:"credentials"`
	Jobs          JobsConfig           `json:"jobs"`
	HttpAccessLog bool                 `json:"http_access_log" env_var:"HTTP_ACCESS_LOG"`
	HttpLocalOnly bool                 `json:"http_local_only" env_var:"HTTP_LOCAL_ONLY"`
	UseUTC        bool                 `json:"use_utc" env_var:"USE_UTC"`
}

func New(path string) (*Config, error) {
	cfg := Config{
		ServerHost: "127.0.0.1",
		ServerPort: 8780,
		Logger: struct_logger.Config{
			Handler:    struct_logger.TextHandlerSelector,
			Level:      struct_logger.LevelInfo,
			TimeFormat: time.RFC3339Nano,
			TimeUtc:    true,
			AddMeta:    false,
		},
		Bundles: bundles.Config{
			CacheRoot:       "bundles",
			VersionPrefixes: bundles.DefaultVersionPrefixes,
		},
		Drives: drives.DefaultConfig(),
		Releases: ReleasesConfig{
			GitHub: GitHubConfig{
				BaseUrl: "https://api.github.com",
				Timeout: time.Minute * 10,
				PerPage: 30,
				Repositories: []GitHubRepository{
					{
						Name:  "adafruit",
						Owner: "adafruit",
						Repo:  "Adafruit_CircuitPython_Bundle",
					},
					{
						Name:        "community",
						Owner:       "adafruit",
						Repo:        "CircuitPython_Community_Bundle",
						TitleSuffix: " (community)",
					},
				},
			},
			Git: GitConfig{
				Timeout: time.Minute * 10,
			},
		},
		Credentials: credentials.Config{
			FilePath:    "credentials.yml",
			TokenEnvVar: "GITHUB_TOKEN",
		},
		Jobs: JobsConfig{
			BufferSize:  50,
			MaxNumber:   4,
			JHInterval:  500000,
			PJHInterval: 300000000000,
			MaxAge:      3600000000000,
		},
		HttpLocalOnly: true,
		UseUTC:        true,
	}
	err := sb_config_hdl.Load(&cfg, nil, nil, nil, path)
	return &cfg, err
}
