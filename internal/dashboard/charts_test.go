package dashboard

import (
	"bytes"
	"testing"

	"heartdash/internal/errors"
	"heartdash/internal/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEveryChart(t *testing.T) {
	d := newTestDashboard(t)
	for _, name := range ChartNames {
		var buf bytes.Buffer
		require.NoError(t, d.RenderChart(&buf, name, europe(), render.DefaultOptions()), name)
		assert.Contains(t, buf.String(), "<svg", name)
	}
}

func TestRenderChartErrors(t *testing.T) {
	d := newTestDashboard(t)
	var buf bytes.Buffer

	err := d.RenderChart(&buf, "pie", europe(), render.DefaultOptions())
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	sel := europe()
	sel.Metric = "Bogus"
	err = d.RenderChart(&buf, "gdp", sel, render.DefaultOptions())
	assert.Equal(t, errors.CodeUnknownMetric, errors.GetCode(err))
	assert.Zero(t, buf.Len())
}
