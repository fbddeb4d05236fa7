package render

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"BoltWatch.dashboard/internal/models"
)

const (
	chartWidth   = 960
	chartHeight  = 420
	marginLeft   = 64
	marginRight  = 64
	marginTop    = 56
	marginBottom = 56
	yTicks       = 5
	maxXLabels   = 10

	distanceColor    = "rgba(75, 192, 192, 1)"
	temperatureColor = "rgba(255, 99, 132, 1)"
)

// ChartTitle is the heading drawn above the chart for a floor.
func ChartTitle(floor int) string {
	return fmt.Sprintf("Floor %d - Distance and Temperature", floor)
}

// ChartLabels returns the x axis label of every reading: its local date, or
// "..." when the reading has no timestamp.
func ChartLabels(series []models.Reading) []string {
	labels := make([]string, len(series))
	for i, r := range series {
		t := r.Time()
		if t.IsZero() {
			labels[i] = models.EllipsisToken
			continue
		}
		labels[i] = t.Local().Format("2006-01-02")
	}
	return labels
}

// axis maps a value range onto the vertical pixel range of the plot.
type axis struct {
	min, max float64
}

func newAxis(values []float64) axis {
	if len(values) == 0 {
		return axis{0, 1}
	}
	a := axis{math.Inf(1), math.Inf(-1)}
	for _, v := range values {
		a.min = math.Min(a.min, v)
		a.max = math.Max(a.max, v)
	}
	if a.min == a.max {
		a.min--
		a.max++
	}
	return a
}

func (a axis) y(v float64) float64 {
	plot := float64(chartHeight - marginTop - marginBottom)
	return float64(chartHeight-marginBottom) - (v-a.min)/(a.max-a.min)*plot
}

// xPos spreads n points evenly across the plot, like a category scale.
func xPos(i, n int) float64 {
	plot := float64(chartWidth - marginLeft - marginRight)
	if n <= 1 {
		return float64(marginLeft) + plot/2
	}
	return float64(marginLeft) + float64(i)*plot/float64(n-1)
}

// LineChart draws the sampled series as an SVG with distance on the left
// axis and temperature on the right axis.
func LineChart(floor int, series []models.Reading) []byte {
	distances := make([]float64, len(series))
	temps := make([]float64, len(series))
	for i, r := range series {
		distances[i] = r.Distance
		temps[i] = r.Temperature
	}
	left, right := newAxis(distances), newAxis(temps)
	labels := ChartLabels(series)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\" font-family=\"sans-serif\" font-size=\"11\">\n",
		chartWidth, chartHeight, chartWidth, chartHeight)
	fmt.Fprintf(&buf, "<rect width=\"%d\" height=\"%d\" fill=\"white\"/>\n", chartWidth, chartHeight)
	fmt.Fprintf(&buf, "<text class=\"title\" x=\"%d\" y=\"20\" text-anchor=\"middle\" font-size=\"14\" font-weight=\"bold\">%s</text>\n",
		chartWidth/2, html.EscapeString(ChartTitle(floor)))

	// Legend
	fmt.Fprintf(&buf, "<g font-size=\"12\"><rect x=\"%d\" y=\"30\" width=\"24\" height=\"8\" fill=\"%s\"/><text x=\"%d\" y=\"38\">Distance</text>", chartWidth/2-110, distanceColor, chartWidth/2-80)
	fmt.Fprintf(&buf, "<rect x=\"%d\" y=\"30\" width=\"24\" height=\"8\" fill=\"%s\"/><text x=\"%d\" y=\"38\">Temperature</text></g>\n", chartWidth/2+10, temperatureColor, chartWidth/2+40)

	// Grid and y ticks, both axes share the horizontal lines.
	buf.WriteString("<g stroke=\"#ddd\" stroke-width=\"1\">\n")
	for i := 0; i <= yTicks; i++ {
		v := left.min + float64(i)*(left.max-left.min)/yTicks
		y := left.y(v)
		fmt.Fprintf(&buf, "<line x1=\"%d\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\"/>\n", marginLeft, y, chartWidth-marginRight, y)
	}
	buf.WriteString("</g>\n<g fill=\"#444\">\n")
	for i := 0; i <= yTicks; i++ {
		lv := left.min + float64(i)*(left.max-left.min)/yTicks
		rv := right.min + float64(i)*(right.max-right.min)/yTicks
		y := left.y(lv)
		fmt.Fprintf(&buf, "<text x=\"%d\" y=\"%.1f\" text-anchor=\"end\">%s</text>\n", marginLeft-6, y+4, formatTick(lv))
		fmt.Fprintf(&buf, "<text x=\"%d\" y=\"%.1f\">%s</text>\n", chartWidth-marginRight+6, y+4, formatTick(rv))
	}
	fmt.Fprintf(&buf, "<text x=\"14\" y=\"%d\" transform=\"rotate(-90 14 %d)\" text-anchor=\"middle\">Distance</text>\n", chartHeight/2, chartHeight/2)
	fmt.Fprintf(&buf, "<text x=\"%d\" y=\"%d\" transform=\"rotate(90 %d %d)\" text-anchor=\"middle\">Temperature</text>\n", chartWidth-14, chartHeight/2, chartWidth-14, chartHeight/2)
	fmt.Fprintf(&buf, "<text x=\"%d\" y=\"%d\" text-anchor=\"middle\">Date</text>\n", chartWidth/2, chartHeight-8)

	// X labels, thinned out so they do not overlap.
	step := 1
	if len(labels) > maxXLabels {
		step = int(math.Ceil(float64(len(labels)) / maxXLabels))
	}
	for i := 0; i < len(labels); i += step {
		fmt.Fprintf(&buf, "<text x=\"%.1f\" y=\"%d\" text-anchor=\"middle\">%s</text>\n",
			xPos(i, len(labels)), chartHeight-marginBottom+18, html.EscapeString(labels[i]))
	}
	buf.WriteString("</g>\n")

	if len(series) == 0 {
		fmt.Fprintf(&buf, "<text x=\"%d\" y=\"%d\" text-anchor=\"middle\" fill=\"#888\">No data</text>\n", chartWidth/2, chartHeight/2)
	} else {
		writeLine(&buf, "distance", distanceColor, distances, left)
		writeLine(&buf, "temperature", temperatureColor, temps, right)
	}

	buf.WriteString("</svg>")
	return buf.Bytes()
}

func writeLine(buf *bytes.Buffer, name, color string, values []float64, a axis) {
	fmt.Fprintf(buf, "<polyline class=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" points=\"", name, color)
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(buf, "%.1f,%.1f", xPos(i, len(values)), a.y(v))
	}
	buf.WriteString("\"/>\n")
	fmt.Fprintf(buf, "<g fill=\"%s\">\n", color)
	for i, v := range values {
		fmt.Fprintf(buf, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"2.5\"/>\n", xPos(i, len(values)), a.y(v))
	}
	buf.WriteString("</g>\n")
}

func formatTick(v float64) string {
	if math.Abs(v) >= 100 || v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
