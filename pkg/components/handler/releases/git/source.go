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

package git

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/SENERGY-Platform/bundle-manager/pkg/models/release"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

// Source treats every tag of a git repository as a release.
type Source struct {
	name        string
	url         string
	titlePrefix string
	timeout     time.Duration
}

func New(name, url, titlePrefix string, timeout time.Duration) *Source {
	return &Source{
		name:        name,
		url:         url,
		titlePrefix: titlePrefix,
		timeout:     timeout,
	}
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Title(rel release.Release) string {
	return strings.TrimSpace(s.titlePrefix + " " + rel.TagName)
}

func (s *Source) Releases(ctx context.Context) iter.Seq2[release.Release, error] {
	return func(yield func(release.Release, error) bool) {
		refs, err := s.listRefs(ctx)
		if err != nil {
			yield(release.Release{}, err)
			return
		}
		for _, rel := range tagReleases(refs, s.url) {
			if !yield(rel, nil) {
				return
			}
		}
	}
}

func (s *Source) Get(ctx context.Context, tagName string) (release.Release, error) {
	refs, err := s.listRefs(ctx)
	if err != nil {
		return release.Release{}, err
	}
	for _, rel := range tagReleases(refs, s.url) {
		if rel.TagName == tagName {
			return rel, nil
		}
	}
	return release.Release{}, fmt.Errorf("tag '%s' not found in '%s'", tagName, s.url)
}

// Fetch performs a shallow clone of the release tag into dstDir and removes the git metadata.
func (s *Source) Fetch(ctx context.Context, rel release.Release, dstDir string, progress release.ProgressFunc) error {
	ctxWt, cf := context.WithTimeout(ctx, s.timeout)
	defer cf()
	progress(0, 1, fmt.Sprintf("Cloning %s ...", rel.TagName))
	_, err := git.PlainCloneContext(ctxWt, dstDir, false, &git.CloneOptions{
		URL:               s.url,
		ReferenceName:     plumbing.NewTagReferenceName(rel.TagName),
		SingleBranch:      true,
		Depth:             1,
		RecurseSubmodules: git.NoRecurseSubmodules,
		Tags:              git.NoTags,
	})
	if err != nil {
		return err
	}
	progress(1, 1, "Cloned "+rel.TagName)
	return os.RemoveAll(filepath.Join(dstDir, ".git"))
}

func (s *Source) listRefs(ctx context.Context) ([]*plumbing.Reference, error) {
	ctxWt, cf := context.WithTimeout(ctx, s.timeout)
	defer cf()
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{s.url},
	})
	refs, err := remote.ListContext(ctxWt, &git.ListOptions{})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("listing tags of '%s' timed out", s.url)
		}
		return nil, err
	}
	return refs, nil
}

// tagReleases turns tag references into releases, newest tag name first.
func tagReleases(refs []*plumbing.Reference, url string) []release.Release {
	var releases []release.Release
	for _, ref := range refs {
		if !ref.Name().IsTag() {
			continue
		}
		tag := ref.Name().Short()
		if strings.HasSuffix(tag, "^{}") {
			continue
		}
		releases = append(releases, release.Release{
			TagName: tag,
			Name:    tag,
			URL:     url,
		})
	}
	slices.SortStableFunc(releases, func(a, b release.Release) int {
		return strings.Compare(b.TagName, a.TagName)
	})
	return releases
}
