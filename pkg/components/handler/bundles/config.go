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

type Config struct {
	CacheRoot       string   `json:"cache_root" env_var:"BUNDLES_CACHE_ROOT"`
	VersionPrefixes []string `json:"version_prefixes"`
}

var DefaultVersionPrefixes = []string{"adafruit-circuitpython-bundle-", "circuitpython-community-bundle-"}
