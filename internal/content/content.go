// Package content holds the read-only data tables of the site: owner copy,
// projects, skills and mentorship entries. The table is embedded as YAML and
// decoded once per process.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Zachkp/showcase/internal/carousel"
	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var siteYAML []byte

// ErrUnknownProject is returned by Site.Project for an unknown id.
var ErrUnknownProject = errors.New("content: unknown project")

// Links are the optional outbound targets of a project.
type Links struct {
	GitHub Link `yaml:"github"`
	Live   Link `yaml:"live"`
}

// Any reports whether at least one link is present.
func (l Links) Any() bool { return l.GitHub.Present() || l.Live.Present() }

// Project is one card of the showcase grid.
type Project struct {
	ID       string           `yaml:"id"`
	Title    string           `yaml:"title"`
	Images   []carousel.Image `yaml:"images"`
	Timeline string           `yaml:"timeline"`
	Problem  string           `yaml:"problem"`
	Solution string           `yaml:"solution"`
	Tech     []string         `yaml:"tech"`
	Impact   string           `yaml:"impact"`
	Lessons  string           `yaml:"lessons"`
	Hook     string           `yaml:"hook"`
	CTA      string           `yaml:"cta"`
	Links    Links            `yaml:"links"`
}

// Highlight is one tile of the about grid.
type Highlight struct {
	Icon  string `yaml:"icon"`
	Label string `yaml:"label"`
	Desc  string `yaml:"desc"`
}

// Mentorship is one entry of the mentorship section.
type Mentorship struct {
	Icon  string `yaml:"icon"`
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// NavItem is an in-page anchor.
type NavItem struct {
	Name   string `yaml:"name"`
	Anchor string `yaml:"anchor"`
}

// Social is a profile link shown in the hero and footer.
type Social struct {
	Name  string `yaml:"name"`
	Icon  string `yaml:"icon"`
	Label string `yaml:"label"`
	Link  Link   `yaml:"link"`
}

// Delays are the skeleton hold times of each block kind.
type Delays struct {
	Hero       time.Duration `yaml:"hero"`
	Project    time.Duration `yaml:"project"`
	Mentorship time.Duration `yaml:"mentorship"`
}

// Site is the whole data table.
type Site struct {
	Owner           string         `yaml:"owner"`
	Role            string         `yaml:"role"`
	Tagline         string         `yaml:"tagline"`
	Portrait        carousel.Image `yaml:"portrait"`
	Status          string         `yaml:"status"`
	HeroLines       []string       `yaml:"hero_lines"`
	AboutTitle      string         `yaml:"about_title"`
	About           []string       `yaml:"about"`
	Quote           string         `yaml:"quote"`
	Highlights      []Highlight    `yaml:"highlights"`
	Skills          []string       `yaml:"skills"`
	ProjectsTitle   string         `yaml:"projects_title"`
	ProjectsBlurb   string         `yaml:"projects_blurb"`
	ProjectsMore    Link           `yaml:"projects_more"`
	Projects        []Project      `yaml:"projects"`
	MentorshipTitle string         `yaml:"mentorship_title"`
	MentorshipBlurb string         `yaml:"mentorship_blurb"`
	MentorshipImage carousel.Image `yaml:"mentorship_image"`
	Mentorships     []Mentorship   `yaml:"mentorships"`
	ContactTitle    string         `yaml:"contact_title"`
	ContactPitch    string         `yaml:"contact_pitch"`
	Footer          string         `yaml:"footer"`
	Nav             []NavItem      `yaml:"nav"`
	Socials         []Social       `yaml:"socials"`
	Delays          Delays         `yaml:"delays"`
}

// Parse decodes and validates a data table.
func Parse(data []byte) (*Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("decode site: %w", err)
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}
	return &site, nil
}

var loadEmbedded = sync.OnceValues(func() (*Site, error) {
	return Parse(siteYAML)
})

// Load returns the embedded data table. It is decoded on first use and shared
// afterwards; callers must treat it as read-only.
func Load() (*Site, error) { return loadEmbedded() }

// MustLoad is Load for process start-up.
func MustLoad() *Site {
	site, err := Load()
	if err != nil {
		panic(err)
	}
	return site
}

// Validate checks the invariants the views rely on: at least one hero line,
// unique project ids and at least one image per project.
func (s *Site) Validate() error {
	if len(s.HeroLines) == 0 {
		return errors.New("content: at least one hero line is required")
	}
	seen := make(map[string]struct{}, len(s.Projects))
	for i, p := range s.Projects {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return fmt.Errorf("content: project %d has no id", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("content: duplicate project id %q", id)
		}
		seen[id] = struct{}{}
		if len(p.Images) == 0 {
			return fmt.Errorf("content: project %q has no images", id)
		}
		for j, img := range p.Images {
			if strings.TrimSpace(img.URL) == "" {
				return fmt.Errorf("content: project %q image %d has no url", id, j)
			}
		}
	}
	return nil
}

// Project looks a project up by id.
func (s *Site) Project(id string) (Project, error) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, nil
		}
	}
	return Project{}, fmt.Errorf("%w: %q", ErrUnknownProject, id)
}

// MarqueeSkills returns the skills twice in a row so the scrolling strip
// loops without a visible seam.
func (s *Site) MarqueeSkills() []string {
	out := make([]string, 0, 2*len(s.Skills))
	out = append(out, s.Skills...)
	return append(out, s.Skills...)
}

// PresentSocials returns only the socials with a link.
func (s *Site) PresentSocials() []Social {
	var out []Social
	for _, soc := range s.Socials {
		if soc.Link.Present() {
			out = append(out, soc)
		}
	}
	return out
}
