package web

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/Zachkp/showcase/internal/carousel"
	"github.com/Zachkp/showcase/internal/content"
	"github.com/Zachkp/showcase/internal/view"
	"github.com/gin-gonic/gin"
)

var templateFuncs = template.FuncMap{
	"projectBlock": view.ProjectBlock,
}

// carouselView is the render state of one card's carousel.
type carouselView struct {
	ProjectID   string
	Title       string
	Index       int
	Len         int
	Image       carousel.Image
	HasControls bool
	Indicators  []carousel.Indicator
}

func newCarouselView(p content.Project, c *carousel.Carousel) carouselView {
	img, _ := c.Current()
	return carouselView{
		ProjectID:   p.ID,
		Title:       p.Title,
		Index:       c.Index(),
		Len:         c.Len(),
		Image:       img,
		HasControls: c.HasControls(),
		Indicators:  c.Indicators(),
	}
}

type cardView struct {
	Project  content.Project
	Delay    int64
	Carousel carouselView
}

type blockView struct {
	Key   string
	Delay int64
}

func (s *Server) blockDelay(key string) int64 {
	for _, b := range s.blocks {
		if b.Key == key {
			return b.Delay.Milliseconds()
		}
	}
	return 0
}

func (s *Server) handleIndex(c *gin.Context) {
	cards := make([]cardView, 0, len(s.site.Projects))
	for _, p := range s.site.Projects {
		cards = append(cards, cardView{
			Project:  p,
			Delay:    s.blockDelay(view.ProjectBlock(p.ID)),
			Carousel: newCarouselView(p, carousel.New(p.Images)),
		})
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"site":       s.site,
		"socials":    s.site.PresentSocials(),
		"marquee":    s.site.MarqueeSkills(),
		"cards":      cards,
		"hero":       blockView{Key: view.HeroBlock, Delay: s.blockDelay(view.HeroBlock)},
		"mentorship": blockView{Key: view.MentorshipBlock, Delay: s.blockDelay(view.MentorshipBlock)},
	})
}

// handleCarousel steps a card's carousel. The current index travels with the
// request, so the server keeps no per-viewer state:
//
//	GET /projects/:id/carousel?index=1&step=next|prev|jump&to=2
func (s *Server) handleCarousel(c *gin.Context) {
	project, err := s.site.Project(c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	index, err := strconv.Atoi(c.DefaultQuery("index", "0"))
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	car := carousel.New(project.Images)
	car.Restore(index)

	switch c.Query("step") {
	case "":
	case "next":
		car.Next()
	case "prev":
		car.Previous()
	case "jump":
		to, err := strconv.Atoi(c.Query("to"))
		if err != nil || !car.JumpTo(to) {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
	default:
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	c.HTML(http.StatusOK, "carousel.html", newCarouselView(project, car))
}

func (s *Server) handlePrivacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacy.html", gin.H{
		"title":     "Privacy Policy",
		"analytics": s.store != nil,
		"retention": s.cfg.VisitorRetention.String(),
	})
}
