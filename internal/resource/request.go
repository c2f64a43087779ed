package resource

import (
	"fmt"
	"net/url"
	"path"
)

// Scheme is the URI scheme served by the resolver.
const Scheme = "res"

// Request is a parsed resource URI. It is derived per call and never stored.
type Request struct {
	Scheme string
	Host   string
	Path   string
}

// ParseRequest splits a res:// URI into its host and path segments.
func ParseRequest(uri string) (Request, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Request{}, fmt.Errorf("invalid resource uri %q: %w", uri, err)
	}
	return Request{
		Scheme: u.Scheme,
		Host:   u.Hostname(),
		Path:   u.Path,
	}, nil
}

// VirtualPath joins host and path into a cleaned, rooted path. The host is a
// path prefix, so res://ui/index.html and res:///ui/index.html name the same
// file. Cleaning against "/" means ".." can never climb above the root.
func (r Request) VirtualPath() string {
	return path.Clean("/" + r.Host + "/" + r.Path)
}

// String returns the request as a URI.
func (r Request) String() string {
	scheme := r.Scheme
	if scheme == "" {
		scheme = Scheme
	}
	return scheme + "://" + r.Host + r.Path
}
