package web

import (
	"net/http"

	"github.com/Zachkp/showcase/internal/reveal"
	"github.com/Zachkp/showcase/internal/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const viewIDKey = "view_id"

// handleLive is the event stream of one mounted page. It owns a view.Page for
// as long as the client stays connected; the page, its gates and the hero
// sequencer are torn down as soon as the client goes away.
func (s *Server) handleLive(c *gin.Context) {
	page := view.Open(s.blocks, s.site.HeroLines,
		view.WithClock(s.clock),
		view.WithLogger(s.logger),
	)
	defer page.Close()
	c.Set(viewIDKey, page.ID)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("mount", gin.H{"view": page.ID})
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-page.Events():
			if !ok {
				return
			}
			c.SSEvent(string(ev.Kind), s.eventPayload(ev))
			c.Writer.Flush()
		}
	}
}

// revealPayload is the wire form of a hero step. Visible is the state of Line
// alone; Lines carries every line so a client can apply the step as a whole.
type revealPayload struct {
	Cycle   int    `json:"cycle"`
	Phase   string `json:"phase"`
	Line    int    `json:"line"`
	Visible bool   `json:"visible"`
	Lines   []bool `json:"lines"`
}

func newRevealPayload(ev reveal.Event) revealPayload {
	p := revealPayload{
		Cycle: ev.Cycle,
		Phase: ev.Phase.String(),
		Line:  ev.Line,
		Lines: ev.Visible,
	}
	if ev.Line >= 0 && ev.Line < len(ev.Visible) {
		p.Visible = ev.Visible[ev.Line]
	}
	return p
}

func (s *Server) eventPayload(ev view.Event) any {
	switch ev.Kind {
	case view.EventReady:
		return gin.H{"block": ev.Block}
	case view.EventReveal:
		return newRevealPayload(ev.Reveal)
	default:
		s.logger.Warn("unknown page event", zap.String("kind", string(ev.Kind)))
		return gin.H{}
	}
}
