package types

import (
	"fmt"
	"net/url"
	"strings"
)

// PostRef identifies a post by author and permlink.
type PostRef struct {
	Author   string `json:"author"`
	Permlink string `json:"permlink"`
}

func (p PostRef) String() string {
	return "@" + p.Author + "/" + p.Permlink
}

// ParsePostURL accepts full front-end URLs such as
// https://steemit.com/tag/@author/permlink as well as bare @author/permlink.
func ParsePostURL(raw string) (PostRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PostRef{}, fmt.Errorf("%w: empty url", ErrInvalidInput)
	}
	path := raw
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return PostRef{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if u.Host == "" {
			return PostRef{}, fmt.Errorf("%w: missing host in %q", ErrInvalidInput, raw)
		}
		path = u.Path
	} else if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	at := strings.LastIndex(path, "@")
	if at < 0 {
		return PostRef{}, fmt.Errorf("%w: no @author in %q", ErrInvalidInput, raw)
	}
	parts := strings.Split(path[at+1:], "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return PostRef{}, fmt.Errorf("%w: expected @author/permlink in %q", ErrInvalidInput, raw)
	}
	return PostRef{
		Author:   strings.ToLower(parts[0]),
		Permlink: parts[1],
	}, nil
}
