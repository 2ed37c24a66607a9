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

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/jobs"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/release"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/slog_attr"
)

func (s *Service) GetReleaseSources() []string {
	return s.releasesHdl.Sources()
}

func (s *Service) GetReleases(ctx context.Context, source string, limit int) ([]release.Release, error) {
	metaStr := fmt.Sprintf("get releases (source=%s limit=%d)", source, limit)
	src, err := s.releasesHdl.Source(source)
	if err != nil {
		return nil, newServiceErr(metaStr, err)
	}
	releases, err := s.releasesHdl.List(ctx, src, limit)
	if err != nil {
		return nil, newServiceErr(metaStr, err)
	}
	return releases, nil
}

// DownloadRelease fetches a release into the bundle cache and re-indexes the cache afterwards.
func (s *Service) DownloadRelease(source, tagName string) (string, error) {
	metaStr := fmt.Sprintf("download release (source=%s tag_name=%s)", source, tagName)
	if tagName == "" {
		return "", newServiceErr(metaStr, models_error.NewInvalidInputError(errors.New("missing tag name")))
	}
	src, err := s.releasesHdl.Source(source)
	if err != nil {
		return "", newServiceErr(metaStr, err)
	}
	if err = s.bundlesMu.TryRLock(); err != nil {
		return "", newServiceErr(metaStr, err)
	}
	jID, err := s.jobsHdl.Create(metaStr, func(ctx context.Context, cf context.CancelFunc) error {
		defer cf()
		err := func() error {
			defer s.bundlesMu.RUnlock()
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, err := src.Get(ctx, tagName)
			if err != nil {
				return err
			}
			dir, err := s.releasesHdl.Download(ctx, src, rel, func(done, total int64, status string) {
				jobs.ReportProgress(ctx, done, total, status)
			})
			if err != nil {
				return err
			}
			logger.Info("release downloaded", slog_attr.SourceKey, source, slog_attr.TagKey, tagName, slog_attr.DirNameKey, dir)
			return nil
		}()
		if err != nil {
			return newServiceErr(metaStr, err)
		}
		if err = s.bundlesMu.TryLock("index bundles"); err != nil {
			logger.Warn("skipping index after download", slog_attr.ErrorKey, err)
			return nil
		}
		defer s.bundlesMu.Unlock()
		if err = s.indexBundles(context.WithoutCancel(ctx)); err != nil {
			return newServiceErr(metaStr, err)
		}
		return nil
	})
	if err != nil {
		s.bundlesMu.RUnlock()
		return "", newServiceErr(metaStr, err)
	}
	return jID, nil
}
