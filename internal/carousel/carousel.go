// Package carousel holds the per-card image stepping state.
package carousel

// Image describes one slide of a project card.
type Image struct {
	URL     string `yaml:"url" json:"url"`
	Alt     string `yaml:"alt" json:"alt"`
	Caption string `yaml:"caption,omitempty" json:"caption,omitempty"`
}

// Indicator is the render state of one indicator dot.
type Indicator struct {
	Index  int
	Active bool
}

// Carousel is a cyclic index over a fixed list of images. A Carousel is owned
// by a single card and is not safe for concurrent use.
type Carousel struct {
	items []Image
	index int
}

// New returns a carousel positioned on the first image. The slice is copied so
// later changes by the caller never reach the carousel.
func New(items []Image) *Carousel {
	return &Carousel{items: append([]Image(nil), items...)}
}

// Len returns the number of images.
func (c *Carousel) Len() int { return len(c.items) }

// Index returns the current position.
func (c *Carousel) Index() int { return c.index }

// HasControls reports whether prev/next buttons and indicators should render.
func (c *Carousel) HasControls() bool { return len(c.items) > 1 }

// Next advances one image, wrapping from last to first.
func (c *Carousel) Next() {
	if !c.HasControls() {
		return
	}
	c.index = (c.index + 1) % len(c.items)
}

// Previous steps back one image, wrapping from first to last.
func (c *Carousel) Previous() {
	if !c.HasControls() {
		return
	}
	n := len(c.items)
	c.index = (c.index - 1 + n) % n
}

// JumpTo moves directly to index i. It reports false and leaves the position
// unchanged when i is out of range.
func (c *Carousel) JumpTo(i int) bool {
	if i < 0 || i >= len(c.items) {
		return false
	}
	c.index = i
	return true
}

// Restore positions the carousel on an index carried in from outside, e.g. a
// fragment request. Any integer is accepted and normalised modulo Len.
func (c *Carousel) Restore(i int) {
	n := len(c.items)
	if n == 0 {
		return
	}
	c.index = ((i % n) + n) % n
}

// Current returns the image at the current position. ok is false only when
// the carousel has no images.
func (c *Carousel) Current() (img Image, ok bool) {
	if len(c.items) == 0 {
		return Image{}, false
	}
	return c.items[c.index], true
}

// Indicators returns one dot per image with the current one marked active.
// It returns nil when controls are hidden.
func (c *Carousel) Indicators() []Indicator {
	if !c.HasControls() {
		return nil
	}
	dots := make([]Indicator, len(c.items))
	for i := range dots {
		dots[i] = Indicator{Index: i, Active: i == c.index}
	}
	return dots
}
