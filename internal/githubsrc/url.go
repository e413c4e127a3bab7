// Package githubsrc resolves GitHub issue and file URLs to their
// content so chat answers can ground themselves in the actual source.
package githubsrc

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Kind distinguishes the resource types a chat can be anchored to.
type Kind string

const (
	KindFile  Kind = "file"
	KindIssue Kind = "issue"
)

// Resource is a parsed GitHub URL.
type Resource struct {
	Owner  string
	Repo   string
	Kind   Kind
	Number int    // issue number, KindIssue only
	Ref    string // branch, tag, or commit, KindFile only
	Path   string // path within the repo, KindFile only
}

// ParseURL accepts the two URL shapes the chat UI allows:
//
//	https://github.com/{owner}/{repo}/blob/{ref}/{path...}
//	https://github.com/{owner}/{repo}/issues/{number}
func ParseURL(raw string) (Resource, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Resource{}, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Host != "github.com" && u.Host != "www.github.com" {
		return Resource{}, fmt.Errorf("not a github.com URL: %q", raw)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 {
		return Resource{}, fmt.Errorf("unsupported GitHub URL: %q", raw)
	}

	res := Resource{Owner: parts[0], Repo: parts[1]}
	switch parts[2] {
	case "blob":
		if len(parts) < 5 {
			return Resource{}, fmt.Errorf("file URL is missing a path: %q", raw)
		}
		res.Kind = KindFile
		res.Ref = parts[3]
		res.Path = strings.Join(parts[4:], "/")
	case "issues":
		n, err := strconv.Atoi(parts[3])
		if err != nil || n <= 0 {
			return Resource{}, fmt.Errorf("invalid issue number in %q", raw)
		}
		res.Kind = KindIssue
		res.Number = n
	default:
		return Resource{}, fmt.Errorf("unsupported GitHub URL: %q (only file and issue links work)", raw)
	}
	return res, nil
}

// String renders the canonical URL for the resource.
func (r Resource) String() string {
	switch r.Kind {
	case KindIssue:
		return fmt.Sprintf("https://github.com/%s/%s/issues/%d", r.Owner, r.Repo, r.Number)
	default:
		return fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", r.Owner, r.Repo, r.Ref, r.Path)
	}
}
