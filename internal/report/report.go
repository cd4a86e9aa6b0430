// Package report renders completed analysis results to tabular formats. It
// only formats values the core already computed; durations and impact are
// never recomputed here.
package report

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"github.com/lmr105/supply-interruption-service/internal/analysis"
	"github.com/lmr105/supply-interruption-service/internal/domain"
)

// InSupplyAllTimes is the sentinel rendered for a property group with no
// interruptions.
const InSupplyAllTimes = "In supply all times"

// Ongoing marks an outage or interruption still open at the end of the
// series, whose duration is a lower bound.
const Ongoing = "(ongoing)"

const timestampFormat = "2006-01-02 15:04:05"

// InterruptionRow is one line of the per-group interruption table.
type InterruptionRow struct {
	Height   float64
	Count    int
	Lost     string
	Regained string
	Duration string

	// Highlight marks rows whose raw duration reaches the reporting
	// minimum; the HTML renderer paints them yellow.
	Highlight bool
	Ongoing   bool
}

// OutageRow is one line of the aggregated ("true") outage table.
type OutageRow struct {
	Height     float64
	Count      int
	Lost       string
	Regained   string
	Cumulative string
	Impact     string
	Cost       string
	Ongoing    bool
}

// Report is the fully formatted output of one analysis run.
type Report struct {
	RunID         string
	AnalyzedAt    time.Time
	WindowStart   time.Time
	WindowEnd     time.Time
	Interruptions []InterruptionRow
	Outages       []OutageRow
	TotalImpact   string
	ImpactPerHour string
	TotalCost     string
	HasCost       bool
}

// FormatDuration renders a duration as HH:MM:SS; hours may exceed 24.
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// Build formats an analysis result into report rows.
func Build(result *analysis.Result) *Report {
	rep := &Report{
		RunID:       result.RunID,
		AnalyzedAt:  result.AnalyzedAt,
		WindowStart: result.WindowStart,
		WindowEnd:   result.WindowEnd,
		HasCost:     result.Parameters.UnitCost > 0,
	}

	for _, g := range result.Groups {
		rep.Interruptions = append(rep.Interruptions, groupRows(g, result.Parameters.Thresholds)...)
	}
	for _, o := range result.Outages {
		rep.Outages = append(rep.Outages, outageRow(o, rep.HasCost))
	}

	rep.TotalImpact = formatImpact(result.TotalImpact)
	rep.ImpactPerHour = formatImpact(result.ImpactPerHour)
	if rep.HasCost {
		rep.TotalCost = fmt.Sprintf("%.2f", result.TotalCost)
	}
	return rep
}

func groupRows(g analysis.GroupResult, th domain.Thresholds) []InterruptionRow {
	if g.AlwaysInSupply {
		return []InterruptionRow{{
			Height: g.Group.Height,
			Count:  g.Group.Count,
			Lost:   InSupplyAllTimes,
		}}
	}

	rows := make([]InterruptionRow, 0, len(g.Interruptions))
	for _, e := range g.Interruptions {
		rows = append(rows, InterruptionRow{
			Height:    g.Group.Height,
			Count:     g.Group.Count,
			Lost:      e.LostAt.Format(timestampFormat),
			Regained:  e.RegainedAt.Format(timestampFormat),
			Duration:  FormatDuration(e.Duration),
			Highlight: e.Duration >= th.MinDuration,
			Ongoing:   e.Open,
		})
	}
	return rows
}

func outageRow(o domain.AggregatedOutage, hasCost bool) OutageRow {
	row := OutageRow{
		Height:     o.Height,
		Count:      o.Count,
		Lost:       o.LostAt.Format(timestampFormat),
		Regained:   o.RegainedAt.Format(timestampFormat),
		Cumulative: FormatDuration(o.Cumulative),
		Impact:     formatImpact(o.Impact),
		Ongoing:    o.Open,
	}
	if hasCost {
		row.Cost = fmt.Sprintf("%.2f", o.Cost)
	}
	return row
}

func formatImpact(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}

func formatHeight(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// WriteCSV writes both tables as one CSV document: the interruption table,
// a blank line, then the aggregated outage table.
func WriteCSV(w io.Writer, rep *Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Property Height (m)", "Count", "Lost Supply", "Regained Supply", "Duration"}); err != nil {
		return err
	}
	for _, r := range rep.Interruptions {
		regained := r.Regained
		if r.Ongoing {
			regained += " " + Ongoing
		}
		if err := cw.Write([]string{formatHeight(r.Height), strconv.Itoa(r.Count), r.Lost, regained, r.Duration}); err != nil {
			return err
		}
	}

	if err := cw.Write([]string{}); err != nil {
		return err
	}

	outageHeader := []string{"Property Height (m)", "Count", "Lost Supply", "Regained Supply", "Cumulative Duration", "Impact"}
	if rep.HasCost {
		outageHeader = append(outageHeader, "Cost")
	}
	if err := cw.Write(outageHeader); err != nil {
		return err
	}
	for _, r := range rep.Outages {
		regained := r.Regained
		if r.Ongoing {
			regained += " " + Ongoing
		}
		row := []string{formatHeight(r.Height), strconv.Itoa(r.Count), r.Lost, regained, r.Cumulative, r.Impact}
		if rep.HasCost {
			row = append(row, r.Cost)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	totals := []string{"", "", "", "", "Total", rep.TotalImpact}
	if rep.HasCost {
		totals = append(totals, rep.TotalCost)
	}
	if err := cw.Write(totals); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Supply Interruption Report</title>
<style>
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #999; padding: 4px 10px; text-align: left; }
tr.highlight { background-color: yellow; }
</style>
</head>
<body>
<h1>Supply Interruption Report</h1>
<p>Run {{.RunID}} &mdash; window {{.WindowStart.Format "2006-01-02 15:04:05"}} to {{.WindowEnd.Format "2006-01-02 15:04:05"}}</p>

<h2>Supply Interruptions</h2>
<table>
<tr><th>Property Height (m)</th><th>Count</th><th>Lost Supply</th><th>Regained Supply</th><th>Duration</th></tr>
{{range .Interruptions}}<tr{{if .Highlight}} class="highlight"{{end}}><td>{{.Height}}</td><td>{{.Count}}</td><td>{{.Lost}}</td><td>{{.Regained}}{{if .Ongoing}} (ongoing){{end}}</td><td>{{.Duration}}</td></tr>
{{end}}</table>

<h2>True Outages</h2>
<table>
<tr><th>Property Height (m)</th><th>Count</th><th>Lost Supply</th><th>Regained Supply</th><th>Cumulative Duration</th><th>Impact</th>{{if .HasCost}}<th>Cost</th>{{end}}</tr>
{{range .Outages}}<tr><td>{{.Height}}</td><td>{{.Count}}</td><td>{{.Lost}}</td><td>{{.Regained}}{{if .Ongoing}} (ongoing){{end}}</td><td>{{.Cumulative}}</td><td>{{.Impact}}</td>{{if $.HasCost}}<td>{{.Cost}}</td>{{end}}</tr>
{{end}}<tr><td colspan="5">Total</td><td>{{.TotalImpact}}</td>{{if .HasCost}}<td>{{.TotalCost}}</td>{{end}}</tr>
</table>

<p>Impact per observation hour: {{.ImpactPerHour}}</p>
</body>
</html>
`))

// WriteHTML renders the report as a standalone HTML document. Interruption
// rows at or over the reporting minimum are highlighted, matching the
// styling of the original spreadsheet output.
func WriteHTML(w io.Writer, rep *Report) error {
	return htmlTemplate.Execute(w, rep)
}
