// Package chart renders analysis charts server side for clients that can't
// draw them, such as the CLI or an e-mail digest.
package chart

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/fleveque/market-radar/internal/model"
)

const (
	shareWidth  = 640
	shareHeight = 640
)

// ErrNoPlayers is returned when an analysis has no players to plot.
var ErrNoPlayers = errors.New("analysis has no players to chart")

// palette cycles for players beyond its length.
var palette = []drawing.Color{
	drawing.ColorFromHex("2563eb"),
	drawing.ColorFromHex("16a34a"),
	drawing.ColorFromHex("f59e0b"),
	drawing.ColorFromHex("dc2626"),
	drawing.ColorFromHex("7c3aed"),
	drawing.ColorFromHex("0891b2"),
	drawing.ColorFromHex("db2777"),
}

// RenderSharePie renders the market-share series of analysis as a PNG pie
// chart. Slices follow MarketAnalysis.ShareSeries, largest first.
func RenderSharePie(analysis *model.MarketAnalysis) ([]byte, error) {
	series := analysis.ShareSeries()
	if len(series) == 0 {
		return nil, ErrNoPlayers
	}

	values := make([]chart.Value, len(series))
	for i, s := range series {
		values[i] = chart.Value{
			Label: shareLabel(s),
			Value: s.Value,
			Style: chart.Style{FillColor: palette[i%len(palette)]},
		}
	}

	pie := chart.PieChart{
		Title:  analysis.Segment,
		Width:  shareWidth,
		Height: shareHeight,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering share chart: %w", err)
	}
	return buf.Bytes(), nil
}

// shareLabel names the slice and its share, or "n/a" for a placeholder slice.
func shareLabel(s model.ShareSlice) string {
	if !s.Estimated {
		return s.Name + " (n/a)"
	}
	return fmt.Sprintf("%s (%.0f%%)", s.Name, s.Value)
}
