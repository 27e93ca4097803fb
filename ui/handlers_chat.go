package ui

import (
	"net/http"

	"heartdash/internal/errors"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Question string `json:"question"`
}

// handleChat answers a question about the dataset
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	answer, err := s.c.Chat.Ask(c.Request.Context(), req.Question)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}
