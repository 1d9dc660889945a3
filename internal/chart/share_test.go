package chart

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fleveque/market-radar/internal/model"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func TestRenderSharePie(t *testing.T) {
	analysis := &model.MarketAnalysis{
		Segment: "Gaming Laptops",
		Players: []model.CompetitorProfile{
			{Name: "Lenovo", MarketShareEst: 26, Category: model.CategoryLeader},
			{Name: "ASUS", MarketShareEst: 21, Category: model.CategoryLeader},
			{Name: "Razer", Category: model.CategoryNiche},
		},
	}

	img, err := RenderSharePie(analysis)
	if err != nil {
		t.Fatalf("rendering: %v", err)
	}
	if !bytes.HasPrefix(img, pngSignature) {
		t.Errorf("expected PNG output, got % x", img[:min(8, len(img))])
	}
}

func TestRenderSharePie_NoPlayers(t *testing.T) {
	_, err := RenderSharePie(&model.MarketAnalysis{Segment: "Empty"})
	if !errors.Is(err, ErrNoPlayers) {
		t.Errorf("expected ErrNoPlayers, got %v", err)
	}
}

func TestShareLabel(t *testing.T) {
	tests := []struct {
		slice model.ShareSlice
		want  string
	}{
		{model.ShareSlice{Name: "Lenovo", Value: 26, Estimated: true}, "Lenovo (26%)"},
		{model.ShareSlice{Name: "Razer", Value: 1, Estimated: false}, "Razer (n/a)"},
		{model.ShareSlice{Name: "Tiny", Value: 1, Estimated: true}, "Tiny (1%)"},
	}

	for _, tt := range tests {
		if got := shareLabel(tt.slice); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestShareLabel_FromAnalysis(t *testing.T) {
	analysis := &model.MarketAnalysis{
		Players: []model.CompetitorProfile{
			{Name: "Lenovo", MarketShareEst: 26},
			{Name: "Razer"},
		},
	}

	var labels []string
	for _, s := range analysis.ShareSeries() {
		labels = append(labels, shareLabel(s))
	}
	if len(labels) != 2 || labels[0] != "Lenovo (26%)" || labels[1] != "Razer (n/a)" {
		t.Errorf("unexpected labels %v", labels)
	}
}
