package engine

import (
	"net/url"
	"strings"
)

// URI identifies a model. Only file URIs are produced by this package.
type URI struct {
	Scheme string
	Path   string
}

// FileURI returns the file URI for path. Paths are made absolute by
// prefixing a single '/' when missing; no other normalization happens.
func FileURI(path string) URI {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return URI{Scheme: "file", Path: path}
}

// ParseURI parses a URI string such as "file:///src/index.ts".
func ParseURI(s string) (URI, error) {
	u, err := url.Parse(s)
	if err != nil {
		return URI{}, err
	}
	if u.Scheme == "" {
		return FileURI(u.Path), nil
	}
	return URI{Scheme: u.Scheme, Path: u.Path}, nil
}

// String returns the URI in its string form.
func (u URI) String() string {
	return (&url.URL{Scheme: u.Scheme, Path: u.Path}).String()
}

// Matches reports whether path addresses this URI, with or without a
// leading '/'.
func (u URI) Matches(path string) bool {
	return u.Path == path || u.Path == "/"+path
}
