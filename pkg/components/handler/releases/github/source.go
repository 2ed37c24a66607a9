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

package github

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/archive"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/sanitize"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/release"
)

type Source struct {
	name        string
	client      *Client
	owner       string
	repo        string
	titleSuffix string
	perPage     int
}

func New(name string, client *Client, owner, repo, titleSuffix string, perPage int) *Source {
	return &Source{
		name:        name,
		client:      client,
		owner:       owner,
		repo:        repo,
		titleSuffix: titleSuffix,
		perPage:     perPage,
	}
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Title(rel release.Release) string {
	title := rel.Name
	if title == "" {
		title = rel.TagName
	}
	return title + s.titleSuffix
}

func (s *Source) Releases(ctx context.Context) iter.Seq2[release.Release, error] {
	return func(yield func(release.Release, error) bool) {
		pageURL, err := s.client.ReleasesURL(s.owner, s.repo, s.perPage)
		if err != nil {
			yield(release.Release{}, err)
			return
		}
		for pageURL != "" {
			page, next, err := s.client.GetReleases(ctx, pageURL)
			if err != nil {
				yield(release.Release{}, err)
				return
			}
			for _, r := range page {
				if r.Draft {
					continue
				}
				if !yield(newRelease(r), nil) {
					return
				}
			}
			pageURL = next
		}
	}
}

func (s *Source) Get(ctx context.Context, tagName string) (release.Release, error) {
	r, err := s.client.GetReleaseByTag(ctx, s.owner, s.repo, tagName)
	if err != nil {
		return release.Release{}, err
	}
	return newRelease(r), nil
}

// Fetch downloads all assets of a release into dstDir. Zip and tar.gz assets are extracted,
// other assets are stored under their sanitized name.
func (s *Source) Fetch(ctx context.Context, rel release.Release, dstDir string, progress release.ProgressFunc) error {
	for _, asset := range rel.Assets {
		var err error
		switch {
		case strings.HasSuffix(asset.Name, ".zip"):
			err = s.fetchZip(ctx, asset, dstDir, progress)
		case strings.HasSuffix(asset.Name, ".tar.gz"), strings.HasSuffix(asset.Name, ".tgz"):
			err = s.fetchTarGz(ctx, asset, dstDir, progress)
		default:
			err = s.fetchFile(ctx, asset, dstDir, progress)
		}
		if err != nil {
			return fmt.Errorf("asset '%s': %w", asset.Name, err)
		}
	}
	return nil
}

func (s *Source) fetchZip(ctx context.Context, asset release.Asset, dstDir string, progress release.ProgressFunc) error {
	rc, size, err := s.client.Download(ctx, asset.URL)
	if err != nil {
		return err
	}
	defer rc.Close()
	tmpFile, err := os.CreateTemp(dstDir, ".download_*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())
	_, err = io.Copy(tmpFile, newProgressReader(rc, size, "Downloading ZIP file", progress))
	if cErr := tmpFile.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		return err
	}
	progress(1, 1, "Extracting ZIP file...")
	_, err = archive.ExtractZip(tmpFile.Name(), dstDir)
	return err
}

func (s *Source) fetchTarGz(ctx context.Context, asset release.Asset, dstDir string, progress release.ProgressFunc) error {
	rc, size, err := s.client.Download(ctx, asset.URL)
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = archive.ExtractTarGz(newProgressReader(rc, size, "Downloading archive", progress), dstDir)
	return err
}

func (s *Source) fetchFile(ctx context.Context, asset release.Asset, dstDir string, progress release.ProgressFunc) error {
	rc, size, err := s.client.Download(ctx, asset.URL)
	if err != nil {
		return err
	}
	defer rc.Close()
	file, err := os.OpenFile(filepath.Join(dstDir, sanitize.FileName(assetFileName(asset))), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0664)
	if err != nil {
		return err
	}
	_, err = io.Copy(file, newProgressReader(rc, size, "Downloading file", progress))
	if cErr := file.Close(); err == nil {
		err = cErr
	}
	return err
}

func assetFileName(asset release.Asset) string {
	if asset.Name != "" {
		return asset.Name
	}
	return path.Base(asset.URL)
}

func newRelease(r Release) release.Release {
	rel := release.Release{
		ID:        r.ID,
		TagName:   r.TagName,
		Name:      r.Name,
		URL:       r.HtmlUrl,
		Published: r.PublishedAt,
	}
	for _, a := range r.Assets {
		rel.Assets = append(rel.Assets, release.Asset{
			Name:        a.Name,
			URL:         a.BrowserDownloadUrl,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}
	return rel
}

type progressReader struct {
	r        io.Reader
	total    int64
	done     int64
	status   string
	progress release.ProgressFunc
}

func newProgressReader(r io.Reader, total int64, status string, progress release.ProgressFunc) *progressReader {
	if total < 0 {
		total = 0
	}
	return &progressReader{r: r, total: total, status: status, progress: progress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		p.progress(p.done, p.total, fmt.Sprintf("%s - %s / %s", p.status, bytefmt.ByteSize(uint64(p.done)), bytefmt.ByteSize(uint64(p.total))))
	}
	return n, err
}
