package content

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Link is an optional outbound URL. The zero value is an absent link.
type Link struct {
	url string
}

// NewLink returns a link for raw. Empty and placeholder ("#") values yield an
// absent link.
func NewLink(raw string) Link {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "#" {
		return Link{}
	}
	return Link{url: raw}
}

// Get returns the URL and whether the link is present.
func (l Link) Get() (string, bool) { return l.url, l.url != "" }

// Present reports whether the link points somewhere.
func (l Link) Present() bool { return l.url != "" }

// URL returns the target, or "" for an absent link.
func (l Link) URL() string { return l.url }

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Link) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*l = NewLink(raw)
	return nil
}

// MarshalYAML implements yaml.Marshaler. Absent links encode as null.
func (l Link) MarshalYAML() (any, error) {
	if !l.Present() {
		return nil, nil
	}
	return l.url, nil
}
