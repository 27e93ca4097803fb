package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"heartdash/adapters/excel"
	"heartdash/domain/heart"
	"heartdash/internal/dashboard"
	"heartdash/internal/errors"
	"heartdash/internal/figure"
	"heartdash/internal/reactive"
	"heartdash/internal/render"

	"github.com/gin-gonic/gin"
)

// selection parses the query string, writing the error response on failure
func selection(c *gin.Context) (heart.Selection, bool) {
	sel, err := heart.ParseSelection(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return sel, false
	}
	return sel, true
}

func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, selectorOptions(s.c))
}

// inputsRequest carries changed component values, keyed "component-id.property"
type inputsRequest struct {
	SessionID string         `json:"session_id"`
	Changed   map[string]any `json:"changed"`
}

// handleInputs applies the changed inputs to the session and returns every
// output the reactive graph updated. An empty change set runs every callback,
// which is what the page does on first load.
func (s *Server) handleInputs(c *gin.Context) {
	var req inputsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	known := map[reactive.Prop]bool{}
	for _, p := range s.c.Registry.Inputs() {
		known[p] = true
	}
	changes := reactive.State{}
	changed := make([]reactive.Prop, 0, len(req.Changed))
	for key, v := range req.Changed {
		prop := reactive.Prop(key)
		if !known[prop] {
			respondError(c, errors.InvalidInput(fmt.Sprintf("unknown input %q", key)))
			return
		}
		changes[prop] = v
		changed = append(changed, prop)
	}

	sess := s.c.Sessions.GetOrCreate(req.SessionID)
	var updates reactive.State
	err := sess.Update(func(state reactive.State) (reactive.State, error) {
		for k, v := range changes {
			state[k] = v
		}
		var err error
		if len(changed) == 0 {
			updates, err = s.c.Registry.DispatchAll(c.Request.Context(), state)
		} else {
			updates, err = s.c.Registry.Dispatch(c.Request.Context(), state, changed...)
		}
		if err != nil {
			return nil, err
		}
		merged := changes.Clone()
		for k, v := range updates {
			merged[k] = v
		}
		return merged, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"outputs":    dashboard.ClientUpdates(updates),
	})
}

func (s *Server) handleMap(c *gin.Context) {
	sel, ok := selection(c)
	if !ok {
		return
	}
	view, err := s.c.Dashboard.Map(sel)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleTooltip(c *gin.Context) {
	sel, ok := selection(c)
	if !ok {
		return
	}
	code := strings.ToUpper(strings.TrimSpace(c.Query("code")))
	if code == "" {
		respondError(c, errors.InvalidInput("code is required"))
		return
	}
	tip := s.c.Dashboard.Tooltip(code, sel)
	c.JSON(http.StatusOK, gin.H{"show": !tip.Empty(), "tooltip": tip})
}

func (s *Server) handleGeoEco(c *gin.Context) {
	sel, ok := selection(c)
	if !ok {
		return
	}
	panels, err := s.c.Dashboard.GeoEco(c.Request.Context(), sel)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, panels)
}

func (s *Server) handleHealthcare(c *gin.Context) {
	sel, ok := selection(c)
	if !ok {
		return
	}
	panels, err := s.c.Dashboard.Healthcare(c.Request.Context(), sel)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, panels)
}

func (s *Server) handleTrends(c *gin.Context) {
	sel, ok := selection(c)
	if !ok {
		return
	}
	view, err := s.c.Dashboard.Trends(sel)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleInsightList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"insights": figure.InsightNames()})
}

func (s *Server) handleInsight(c *gin.Context) {
	fig, err := s.c.Dashboard.Insight(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fig)
}

func (s *Server) handleProfile(c *gin.Context) {
	c.JSON(http.StatusOK, s.c.Profiler.ProfileFrame(s.c.Filter.Dataset().Frame))
}

// handleExport streams the selection's filtered rows as a workbook
func (s *Server) handleExport(c *gin.Context) {
	sel, ok := selection(c)
	if !ok {
		return
	}
	df, err := s.c.Dashboard.Export(sel)
	if err != nil {
		respondError(c, err)
		return
	}

	w := excel.NewWriter()
	defer w.Close()
	if err := w.WriteFrame(df, "Data"); err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		respondError(c, errors.Wrap(err, "failed to write workbook"))
		return
	}

	filename := fmt.Sprintf("heartdash-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// handleChart renders /charts/<name>.<svg|png>
func (s *Server) handleChart(c *gin.Context) {
	file := c.Param("file")
	ext := path.Ext(file)
	format, err := render.ParseFormat(ext)
	if err != nil {
		respondError(c, err)
		return
	}
	sel, ok := selection(c)
	if !ok {
		return
	}

	opts := render.DefaultOptions()
	opts.Format = format
	var buf bytes.Buffer
	if err := s.c.Dashboard.RenderChart(&buf, strings.TrimSuffix(file, ext), sel, opts); err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) handleHealth(c *gin.Context) {
	ds := s.c.Filter.Dataset()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"source":   ds.Source,
		"rows":     ds.Frame.Len(),
		"sessions": s.c.Sessions.Len(),
		"chat":     s.c.Chat.Enabled(),
	})
}
