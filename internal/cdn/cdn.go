// Package cdn builds public URLs for stored images.
package cdn

import (
	"errors"
	"net/url"
	"strings"
)

// DefaultJSDelivrBase is the jsDelivr GitHub mirror.
const DefaultJSDelivrBase = "https://cdn.jsdelivr.net/gh"

// ErrInvalidInput is returned when a URL component is empty.
var ErrInvalidInput = errors.New("cdn: owner, repo, folder and file name are required")

// Build returns base/owner/repo/folder/fileName, with ?v=version appended
// when version is non-empty. The version query is what makes the mirror
// fetch fresh bytes after an overwrite.
func Build(base, owner, repo, folder, fileName, version string) (string, error) {
	folder = strings.Trim(folder, "/")
	if owner == "" || repo == "" || folder == "" || fileName == "" {
		return "", ErrInvalidInput
	}
	if base == "" {
		base = DefaultJSDelivrBase
	}
	u := strings.TrimRight(base, "/") + "/" + owner + "/" + repo + "/" + folder + "/" + url.PathEscape(fileName)
	return withVersion(u, version), nil
}

// JSDelivr builds URLs for one GitHub repository folder.
type JSDelivr struct {
	Base   string
	Owner  string
	Repo   string
	Folder string
}

// URL implements the image URL builder.
func (j JSDelivr) URL(fileName, version string) (string, error) {
	return Build(j.Base, j.Owner, j.Repo, j.Folder, fileName, version)
}

// Prefix builds URLs under a plain public base, e.g. a public-read bucket:
// base/folder/fileName.
type Prefix struct {
	Base   string
	Folder string
}

// URL implements the image URL builder.
func (p Prefix) URL(fileName, version string) (string, error) {
	folder := strings.Trim(p.Folder, "/")
	if p.Base == "" || folder == "" || fileName == "" {
		return "", ErrInvalidInput
	}
	u := strings.TrimRight(p.Base, "/") + "/" + folder + "/" + url.PathEscape(fileName)
	return withVersion(u, version), nil
}

func withVersion(u, version string) string {
	if version == "" {
		return u
	}
	return u + "?v=" + url.QueryEscape(version)
}
