// Package update checks GitHub releases for a newer codeguardian build.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	semver "github.com/blang/semver/v4"
)

// Repo is the GitHub slug releases are published under.
const Repo = "codeguardian/codeguardian"

const latestURL = "https://api.github.com/repos/" + Repo + "/releases/latest"

// Checker looks up the latest release. The zero value queries GitHub.
type Checker struct {
	URL    string
	Client *http.Client
}

func (c Checker) latest(ctx context.Context) (string, error) {
	url := c.URL
	if url == "" {
		url = latestURL
	}
	hc := c.Client
	if hc == nil {
		hc = &http.Client{Timeout: 2 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "codeguardian-updater")
	resp, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release lookup: HTTP %d", resp.StatusCode)
	}
	var obj struct {
		TagName string `json:"tag_name"`
		Name    string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return "", err
	}
	v := obj.TagName
	if v == "" {
		v = obj.Name
	}
	return normalize(v), nil
}

// Check returns the latest version and whether it is newer than current.
// It is a no-op in CI. Unparseable versions never count as newer.
func (c Checker) Check(ctx context.Context, current string) (string, bool, error) {
	if os.Getenv("CI") != "" {
		return "", false, nil
	}
	latest, err := c.latest(ctx)
	if err != nil {
		return "", false, err
	}
	return latest, Newer(latest, current), nil
}

// Newer reports whether candidate is a higher semantic version than current.
func Newer(candidate, current string) bool {
	a, err := semver.ParseTolerant(normalize(candidate))
	if err != nil {
		return false
	}
	b, err := semver.ParseTolerant(normalize(current))
	if err != nil {
		return false
	}
	return a.GT(b)
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	return strings.TrimPrefix(v, "v")
}
