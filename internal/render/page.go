package render

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"BoltWatch.dashboard/internal/models"
)

var funcMap = template.FuncMap{
	"fmtValue": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"fmtTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format("Jan 2 15:04:05")
	},
	"stateColor": func(state models.FetchState) string {
		switch state {
		case models.FetchLoaded:
			return "#16a34a"
		case models.FetchFetching:
			return "#f59e0b"
		case models.FetchFailed:
			return "#dc2626"
		default:
			return "#6b7280"
		}
	},
}

var pageTmpl = template.Must(template.New("page").Funcs(funcMap).Parse(pageHTML))

// PageData feeds the dashboard template.
type PageData struct {
	View  models.DashboardView
	Title string
	Chart template.HTML
}

// Page writes the full dashboard HTML for view.
func Page(w io.Writer, view models.DashboardView) error {
	data := PageData{
		View:  view,
		Title: ChartTitle(view.Floor),
		// LineChart escapes every piece of text it writes.
		Chart: template.HTML(LineChart(view.Floor, view.Series)),
	}
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering dashboard: %w", err)
	}
	return nil
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  body { margin: 0; font-family: "Helvetica Neue", Arial, sans-serif; color: #111; }
  .bar { display: flex; flex-wrap: wrap; gap: 4px; margin: 8px; align-items: center; }
  .bar a, .bar span { padding: 6px 12px; border-radius: 4px; text-decoration: none; }
  .floors a { color: #3b82f6; }
  .floors a.active { color: #000; font-weight: bold; }
  .pager { background: #dbeafe; }
  .pager a { color: #111; background: #dbeafe; }
  .pager a:hover, .pager a.active { background: #93c5fd; font-weight: bold; }
  .status { font-size: 12px; color: #444; }
  .status b { color: #fff; padding: 2px 6px; border-radius: 3px; }
  .chart { display: flex; justify-content: center; }
  .chart svg { max-width: 100%; height: auto; }
  .tables { display: flex; width: 100%; height: 30vh; }
  .tables > div { width: 25%; overflow-y: auto; }
  table { width: 100%; border-collapse: collapse; }
  th, td { border: 1px solid #ccc; padding: 6px 12px; text-align: right; }
  tr.selected td { background: #fca5a5; font-weight: bold; }
</style>
</head>
<body>
<nav class="bar floors">
  {{- range .View.Floors}}
  <a href="/?floor={{.}}"{{if eq . $.View.Floor}} class="active"{{end}}>floor{{.}}</a>
  {{- end}}
  <span class="status">
    bolt <b style="background:{{stateColor .View.Bolt.State}}">{{.View.Bolt.State}}</b>
    diff <b style="background:{{stateColor .View.Diff.State}}">{{.View.Diff.State}}</b>
    {{- if or .View.Bolt.Stale .View.Diff.Stale}} showing previous data{{end}}
  </span>
</nav>
<nav class="bar pager">
  {{- range .View.Pager}}
  {{- if .Ellipsis}}
  <span>{{.}}</span>
  {{- else}}
  <a href="/?floor={{$.View.Floor}}&num={{.Number}}"{{if eq .Number $.View.Selected}} class="active"{{end}}>{{.Number}}</a>
  {{- end}}
  {{- end}}
</nav>
<div class="chart">{{.Chart}}</div>
<div class="tables">
  {{- range .View.Tables}}
  <div>
    <table>
      <thead><tr><th>Num</th><th>Ref</th><th>Las</th><th>Diff</th></tr></thead>
      <tbody>
      {{- range .}}
        <tr{{if .Selected}} class="selected"{{end}}><td>{{.Num}}</td><td>{{fmtValue .Ref}}</td><td>{{fmtValue .Las}}</td><td>{{fmtValue .Diff}}</td></tr>
      {{- end}}
      </tbody>
    </table>
  </div>
  {{- end}}
</div>
{{- with .View.Bolt.Error}}<p class="status">bolt: {{.}} ({{fmtTime $.View.Bolt.UpdatedAt}})</p>{{end}}
{{- with .View.Diff.Error}}<p class="status">diff: {{.}} ({{fmtTime $.View.Diff.UpdatedAt}})</p>{{end}}
</body>
</html>
`
