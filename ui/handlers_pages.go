package ui

import (
	"html/template"

	"heartdash/domain/heart"
	"heartdash/internal/dashboard"
	"heartdash/internal/errors"
	"heartdash/internal/figure"
	"heartdash/internal/profiling"

	"github.com/gin-gonic/gin"
)

// layoutData feeds layout.html
type layoutData struct {
	Options   options
	Selection heart.Selection
	Tabs      []string
	ActiveTab string
	Source    string
	Rows      int
}

// tabData feeds the tabs/*.html fragments
type tabData struct {
	Tab       string
	Intro     template.HTML
	Overview  *profiling.Overview
	Insights  []string
	Selection heart.Selection
	Charts    []string
}

func (s *Server) handleIndex(c *gin.Context) {
	ds := s.c.Filter.Dataset()
	s.renderTemplate(c, "layout.html", layoutData{
		Options:   selectorOptions(s.c),
		Selection: heart.DefaultSelection(),
		Tabs:      dashboard.Tabs,
		ActiveTab: dashboard.Tabs[0],
		Source:    ds.Source,
		Rows:      ds.Frame.Len(),
	})
}

// handleTab renders one tab's fragment
func (s *Server) handleTab(c *gin.Context) {
	tab := c.Param("tab")
	if _, ok := dashboard.TabLabels[tab]; !ok {
		respondError(c, errors.NotFound("tab "+tab))
		return
	}

	data := tabData{Tab: tab, Selection: heart.DefaultSelection()}
	switch tab {
	case "intro":
		overview := s.c.Profiler.ProfileFrame(s.c.Filter.Dataset().Frame)
		data.Intro = s.intro
		data.Overview = &overview
	case "insights":
		data.Insights = figure.InsightNames()
	case "trends":
		data.Charts = dashboard.ChartNames
	}
	s.renderTemplate(c, "tabs/"+tab+".html", data)
}
