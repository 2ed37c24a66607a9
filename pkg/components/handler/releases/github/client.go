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
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	acceptHeaderKey       = "Accept"
	authHeaderKey         = "Authorization"
	gitHubApiVerHeaderKey = "X-GitHub-Api-Version"
	gitHubJsonMediaType   = "application/vnd.github+json"
	gitHubApiVer          = "2022-11-28"
	linkHeaderKey         = "Link"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type TokenProvider interface {
	Token() (string, bool)
}

type Client struct {
	httpClient HTTPClient
	baseURL    string
	tokens     TokenProvider
}

func NewClient(httpClient HTTPClient, baseUrl string, tokens TokenProvider) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseUrl,
		tokens:     tokens,
	}
}

type Release struct {
	ID          int64     `json:"id"`
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	HtmlUrl     string    `json:"html_url"`
	Draft       bool      `json:"draft"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []Asset   `json:"assets"`
}

type Asset struct {
	Name               string `json:"name"`
	ContentType        string `json:"content_type"`
	Size               int64  `json:"size"`
	BrowserDownloadUrl string `json:"browser_download_url"`
}

func (c *Client) ReleasesURL(owner, repo string, perPage int) (string, error) {
	u, err := url.JoinPath(c.baseURL, "repos", owner, repo, "releases")
	if err != nil {
		return "", err
	}
	if perPage > 0 {
		u += "?per_page=" + strconv.Itoa(perPage)
	}
	return u, nil
}

// GetReleases fetches one page of releases and returns the URL of the next page, if any.
func (c *Client) GetReleases(ctx context.Context, pageURL string) ([]Release, string, error) {
	res, err := c.get(ctx, pageURL, gitHubJsonMediaType)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()
	var releases []Release
	if err = json.NewDecoder(res.Body).Decode(&releases); err != nil {
		return nil, "", err
	}
	return releases, nextLink(res.Header.Get(linkHeaderKey)), nil
}

func (c *Client) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (Release, error) {
	u, err := url.JoinPath(c.baseURL, "repos", owner, repo, "releases", "tags", tag)
	if err != nil {
		return Release{}, err
	}
	res, err := c.get(ctx, u, gitHubJsonMediaType)
	if err != nil {
		return Release{}, err
	}
	defer res.Body.Close()
	var rel Release
	if err = json.NewDecoder(res.Body).Decode(&rel); err != nil {
		return Release{}, err
	}
	return rel, nil
}

// Download returns the body of an asset and its length, -1 if unknown.
func (c *Client) Download(ctx context.Context, assetURL string) (io.ReadCloser, int64, error) {
	res, err := c.get(ctx, assetURL, "application/octet-stream")
	if err != nil {
		return nil, 0, err
	}
	return res.Body, res.ContentLength, nil
}

func (c *Client) get(ctx context.Context, u, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(acceptHeaderKey, accept)
	if strings.HasPrefix(u, c.baseURL) {
		req.Header.Set(gitHubApiVerHeaderKey, gitHubApiVer)
		if c.tokens != nil {
			if token, ok := c.tokens.Token(); ok {
				req.Header.Set(authHeaderKey, "Bearer "+token)
			}
		}
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 400 {
		defer res.Body.Close()
		b, err := io.ReadAll(res.Body)
		if err != nil || len(b) == 0 {
			return nil, NewResponseError(res.StatusCode, res.Status)
		}
		return nil, NewResponseError(res.StatusCode, string(b))
	}
	return res, nil
}

// nextLink extracts the rel="next" target of a Link header.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range segments[1:] {
			param = strings.ReplaceAll(strings.TrimSpace(param), " ", "")
			if param == `rel="next"` || param == "rel=next" {
				return target[1 : len(target)-1]
			}
		}
	}
	return ""
}
