package backend

import (
	"fmt"
	"net/url"
	"strings"
)

// ParsedURL is the decomposed form of a backend URL, e.g.
// "s3://my-bucket/tenants/acme" becomes Scheme="s3", Host="my-bucket",
// Path="tenants/acme".
type ParsedURL struct {
	Scheme string
	Host   string
	Path   string
	Query  url.Values
}

// ParseURL parses a backend URL of the form "scheme://host/path?query".
// file URLs are the one exception: "file:///abs/path" and plain filesystem
// paths both resolve with Host="" and the full path in Path.
func ParseURL(raw string) (ParsedURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ParsedURL{}, fmt.Errorf("parse backend url %q: %w", raw, err)
	}
	if u.Scheme == "" {
		return ParsedURL{Scheme: "file", Path: raw}, nil
	}
	p := ParsedURL{Scheme: u.Scheme, Host: u.Host, Query: u.Query()}
	switch u.Scheme {
	case "file":
		p.Path = u.Path
		if p.Path == "" {
			p.Path = u.Opaque
		}
	default:
		p.Path = strings.TrimPrefix(u.Path, "/")
	}
	return p, nil
}

func joinKey(base, relativePath string) string {
	base = strings.Trim(base, "/")
	relativePath = strings.TrimPrefix(relativePath, "/")
	if base == "" {
		return relativePath
	}
	return base + "/" + relativePath
}
