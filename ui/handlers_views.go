package ui

import (
	"net/http"

	"heartdash/domain/heart"
	"heartdash/internal/errors"
	"heartdash/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type saveViewRequest struct {
	Name      string          `json:"name"`
	Selection heart.Selection `json:"selection"`
}

func (s *Server) handleListViews(c *gin.Context) {
	views, err := s.c.Views.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if views == nil {
		views = []*models.View{}
	}
	c.JSON(http.StatusOK, gin.H{"views": views})
}

func (s *Server) handleSaveView(c *gin.Context) {
	var req saveViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	view, err := models.NewView(req.Name, req.Selection)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.c.Views.Save(c.Request.Context(), view); err != nil {
		respondError(c, err)
		return
	}
	logger.Info("saved view %q (%s)", view.Name, view.ID)
	c.JSON(http.StatusCreated, view)
}

func (s *Server) handleGetView(c *gin.Context) {
	id, ok := viewID(c)
	if !ok {
		return
	}
	view, err := s.c.Views.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleDeleteView(c *gin.Context) {
	id, ok := viewID(c)
	if !ok {
		return
	}
	if err := s.c.Views.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func viewID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInput("malformed view id"))
		return uuid.Nil, false
	}
	return id, true
}
