package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/okian/fuelsense/internal/domain/analytics"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// dashboardHandler renders the analytics charts as a standalone page.
type dashboardHandler struct {
	deps AnalyticsDependencies
}

func newDashboardHandler(deps AnalyticsDependencies) *dashboardHandler {
	return &dashboardHandler{deps: deps}
}

// HandleDashboard handles GET /dashboard requests.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.dashboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsPrefix)
	page.PageTitle = "FuelSense Analytics"
	page.AddCharts(trendCharts(h.deps.Analytics(r.Context()))...)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, "render_error", WrapKind(op, ErrRender, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// trendCharts builds one line chart per series plus a bar chart of each
// series' mean and first-to-last change.
func trendCharts(report analytics.Report) []components.Charter {
	out := make([]components.Charter, 0, len(report.Series)+1)
	for _, s := range report.Series {
		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "360px", AssetsHost: echartsAssetsPrefix}),
			charts.WithTitleOpts(opts.Title{Title: s.Name, Subtitle: s.Unit}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		)
		data := make([]opts.LineData, 0, len(s.Values))
		for _, v := range s.Values {
			data = append(data, opts.LineData{Value: v})
		}
		line.SetXAxis(report.Months).
			AddSeries(s.Name, data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		out = append(out, line)
	}

	if len(report.Summary) > 0 {
		names := make([]string, 0, len(report.Summary))
		mean := make([]opts.BarData, 0, len(report.Summary))
		change := make([]opts.BarData, 0, len(report.Summary))
		for _, s := range report.Summary {
			names = append(names, s.Name)
			mean = append(mean, opts.BarData{Value: fmt.Sprintf("%.2f", s.Mean)})
			change = append(change, opts.BarData{Value: fmt.Sprintf("%.2f", s.Change)})
		}
		bar := charts.NewBar()
		bar.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "360px", AssetsHost: echartsAssetsPrefix}),
			charts.WithTitleOpts(opts.Title{Title: "Period Summary", Subtitle: "mean and first-to-last change"}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		)
		bar.SetXAxis(names).
			AddSeries("mean", mean, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"})).
			AddSeries("change", change)
		out = append(out, bar)
	}
	return out
}
