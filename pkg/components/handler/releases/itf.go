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

package releases

import (
	"context"
	"iter"

	"github.com/SENERGY-Platform/bundle-manager/pkg/models/release"
)

// Source lists releases of one remote bundle repository and fetches their raw content.
type Source interface {
	Name() string
	// Title returns the snapshot title of a release.
	Title(rel release.Release) string
	// Releases yields releases newest first, fetching further pages on demand.
	// Each call starts from the first page.
	Releases(ctx context.Context) iter.Seq2[release.Release, error]
	Get(ctx context.Context, tagName string) (release.Release, error)
	Fetch(ctx context.Context, rel release.Release, dstDir string, progress release.ProgressFunc) error
}
