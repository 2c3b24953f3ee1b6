package web

import (
	"bytes"
	"net/http"

	"github.com/Zachkp/showcase/internal/contact"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Contact form endpoint - returns just the modal HTML
func (s *Server) handleContactForm(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.html", gin.H{
		"title": "Let's Connect",
		"intro": "Turn your process into automated reality.",
	})
}

// handleContact runs the simulated submission and streams each state of the
// modal as a server-sent event. Nothing is delivered anywhere.
func (s *Server) handleContact(c *gin.Context) {
	var msg contact.Message
	if err := c.ShouldBind(&msg); err != nil {
		_ = c.Error(err)
		c.HTML(http.StatusUnprocessableEntity, "contact-error.html", gin.H{
			"error": "Please fill in your name, a valid email and a message.",
		})
		return
	}

	success, err := s.renderFragment("contact-success.html", gin.H{
		"success": "I'll get back to you shortly.",
	})
	if err != nil {
		_ = c.Error(err)
		c.HTML(http.StatusInternalServerError, "contact-error.html", gin.H{
			"error": "Sorry, there was an error. Please try again later.",
		})
		return
	}

	sim := contact.NewSimulator(
		contact.WithClock(s.clock),
		contact.WithDelays(s.cfg.ContactSubmit, s.cfg.ContactSuccess),
		contact.WithLogger(s.logger),
	)

	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
	err = sim.Submit(c.Request.Context(), msg, func(tr contact.Transition) {
		payload := gin.H{"state": tr.State.String(), "at_ms": tr.At.Milliseconds()}
		if tr.State == contact.Success {
			payload["html"] = success
		}
		c.SSEvent("contact", payload)
		c.Writer.Flush()
	})
	if err != nil && c.Request.Context().Err() == nil {
		s.logger.Error("contact simulation failed", zap.Error(err))
	}
}

func (s *Server) renderFragment(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
