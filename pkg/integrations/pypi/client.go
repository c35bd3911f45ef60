package pypi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/depman/pkg/httputil"
	"github.com/matzehuels/depman/pkg/integrations"
	"github.com/matzehuels/depman/pkg/requirements"
)

// DefaultBaseURL is the JSON API root of the public index.
const DefaultBaseURL = "https://pypi.org/pypi"

// PackageInfo is the subset of PyPI project metadata depman uses.
//
// RequiresDist holds the raw dependency declarations of the described
// release, markers included; filtering is left to the caller. ReleaseDate is
// the upload time of the first file of that release, nil when PyPI lists no
// files.
type PackageInfo struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Summary      string            `json:"summary,omitempty"`
	License      string            `json:"license,omitempty"`
	Author       string            `json:"author,omitempty"`
	ReleaseDate  *time.Time        `json:"release_date,omitempty"`
	RequiresDist []string          `json:"requires_dist,omitempty"`
	ProjectURLs  map[string]string `json:"project_urls,omitempty"`
	HomePage     string            `json:"home_page,omitempty"`
	ProjectURL   string            `json:"project_url,omitempty"`
	PackageURL   string            `json:"package_url,omitempty"`
	DownloadURL  string            `json:"download_url,omitempty"`
}

// Client reads package metadata from the PyPI JSON API. It is safe for
// concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a PyPI client. cache may be nil to disable caching; an
// empty baseURL selects [DefaultBaseURL].
func NewClient(cache *httputil.Cache, baseURL, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	var headers map[string]string
	if userAgent != "" {
		headers = map[string]string{"User-Agent": userAgent}
	}
	return &Client{
		Client:  integrations.NewClient("pypi", cache, headers),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// FetchPackage returns metadata for the latest release of name. The name is
// normalized before the request and before keying the cache. refresh
// bypasses the cache.
//
// A missing project yields an error wrapping [integrations.ErrNotFound].
func (c *Client) FetchPackage(ctx context.Context, name string, refresh bool) (*PackageInfo, error) {
	name = requirements.Normalize(name)

	var info PackageInfo
	err := c.Cached(ctx, name, refresh, &info, func() error {
		return c.fetch(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, url.PathEscape(name)), name, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// FetchRelease is [Client.FetchPackage] for a specific version.
func (c *Client) FetchRelease(ctx context.Context, name, version string, refresh bool) (*PackageInfo, error) {
	name = requirements.Normalize(name)
	version = strings.TrimSpace(version)

	var info PackageInfo
	err := c.Cached(ctx, name+"@"+version, refresh, &info, func() error {
		u := fmt.Sprintf("%s/%s/%s/json", c.baseURL, url.PathEscape(name), url.PathEscape(version))
		return c.fetch(ctx, u, name+" "+version, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, u, what string, info *PackageInfo) error {
	var data apiResponse
	if err := c.Get(ctx, u, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s", err, what)
		}
		return err
	}

	urls := make(map[string]string, len(data.Info.ProjectURLs))
	for k, v := range data.Info.ProjectURLs {
		if s, ok := v.(string); ok && s != "" {
			urls[k] = s
		}
	}

	*info = PackageInfo{
		Name:         data.Info.Name,
		Version:      data.Info.Version,
		Summary:      data.Info.Summary,
		License:      extractLicenseType(data.Info.License, data.Info.Classifiers),
		Author:       data.Info.Author,
		ReleaseDate:  data.releaseDate(),
		RequiresDist: data.Info.RequiresDist,
		ProjectURLs:  urls,
		HomePage:     data.Info.HomePage,
		ProjectURL:   data.Info.ProjectURL,
		PackageURL:   data.Info.PackageURL,
		DownloadURL:  data.Info.DownloadURL,
	}
	return nil
}

type apiResponse struct {
	Info     apiInfo              `json:"info"`
	Releases map[string][]apiFile `json:"releases"`
	URLs     []apiFile            `json:"urls"`
}

type apiInfo struct {
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	Summary      string         `json:"summary"`
	License      string         `json:"license"`
	Classifiers  []string       `json:"classifiers"`
	RequiresDist []string       `json:"requires_dist"`
	ProjectURLs  map[string]any `json:"project_urls"`
	HomePage     string         `json:"home_page"`
	ProjectURL   string         `json:"project_url"`
	PackageURL   string         `json:"package_url"`
	DownloadURL  string         `json:"download_url"`
	Author       string         `json:"author"`
}

type apiFile struct {
	UploadTime string `json:"upload_time_iso_8601"`
}

// releaseDate prefers the release listing for the current version and falls
// back to the files of the response itself (the only listing on
// version-specific endpoints).
func (r *apiResponse) releaseDate() *time.Time {
	if files := r.Releases[r.Info.Version]; len(files) > 0 {
		if t, ok := parseUploadTime(files[0].UploadTime); ok {
			return &t
		}
	}
	if len(r.URLs) > 0 {
		if t, ok := parseUploadTime(r.URLs[0].UploadTime); ok {
			return &t
		}
	}
	return nil
}

func parseUploadTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// extractLicenseType shortens PyPI license data to a label. A license
// classifier wins ("License :: OSI Approved :: MIT License" gives
// "MIT License"); otherwise a short license field is used as is, or the
// first line of a long one.
func extractLicenseType(license string, classifiers []string) string {
	for _, c := range classifiers {
		if strings.HasPrefix(c, "License :: ") {
			parts := strings.Split(c, " :: ")
			if len(parts) >= 3 {
				return parts[len(parts)-1]
			}
		}
	}

	license = strings.TrimSpace(license)
	if license != "" && len(license) < 100 && !strings.Contains(license, "\n") {
		return license
	}
	if license != "" {
		firstLine := strings.TrimSpace(strings.Split(license, "\n")[0])
		if len(firstLine) < 50 {
			return firstLine
		}
	}
	return ""
}
