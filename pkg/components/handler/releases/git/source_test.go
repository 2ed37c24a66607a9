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
	"reflect"
	"testing"

	"github.com/SENERGY-Platform/bundle-manager/pkg/models/release"
	"github.com/go-git/go-git/v5/plumbing"
)

func Test_tagReleases(t *testing.T) {
	hash := plumbing.NewHash("0123456789abcdef0123456789abcdef01234567")
	refs := []*plumbing.Reference{
		plumbing.NewHashReference(plumbing.NewBranchReferenceName("main"), hash),
		plumbing.NewHashReference(plumbing.NewTagReferenceName("20240101"), hash),
		plumbing.NewHashReference(plumbing.NewTagReferenceName("20240301"), hash),
		plumbing.NewHashReference(plumbing.NewTagReferenceName("20240201"), hash),
		plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main")),
	}
	releases := tagReleases(refs, "https://example.com/bundle.git")
	var tags []string
	for _, rel := range releases {
		tags = append(tags, rel.TagName)
	}
	if !reflect.DeepEqual(tags, []string{"20240301", "20240201", "20240101"}) {
		t.Errorf("unexpected tags %v", tags)
	}
	if releases[0].URL != "https://example.com/bundle.git" {
		t.Errorf("unexpected url %s", releases[0].URL)
	}
}

func TestSource_Title(t *testing.T) {
	s := New("git", "https://example.com/bundle.git", "Example Bundle", 0)
	if title := s.Title(release.Release{TagName: "1.0.0"}); title != "Example Bundle 1.0.0" {
		t.Errorf("unexpected title %s", title)
	}
	s = New("git", "https://example.com/bundle.git", "", 0)
	if title := s.Title(release.Release{TagName: "1.0.0"}); title != "1.0.0" {
		t.Errorf("unexpected title %s", title)
	}
}
