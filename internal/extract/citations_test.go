package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fleveque/market-radar/internal/llm"
	"github.com/fleveque/market-radar/internal/model"
)

func TestMapCitations_DropsIncompleteRecords(t *testing.T) {
	raw := []llm.Citation{
		{URI: "u1", Title: ""},
		{URI: "", Title: "t2"},
		{URI: "u3", Title: "t3"},
	}

	got := MapCitations(raw)
	want := []model.CitationSource{{URI: "u3", Title: "t3"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("citations mismatch (-want +got):\n%s", diff)
	}
}

func TestMapCitations_KeepsOrder(t *testing.T) {
	raw := []llm.Citation{
		{URI: "https://b.example", Title: "B"},
		{URI: "  ", Title: "blank uri"},
		{URI: "https://a.example", Title: "A"},
	}

	got := MapCitations(raw)
	want := []model.CitationSource{
		{URI: "https://b.example", Title: "B"},
		{URI: "https://a.example", Title: "A"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("citations mismatch (-want +got):\n%s", diff)
	}
}

func TestMapCitations_Empty(t *testing.T) {
	got := MapCitations(nil)
	if got == nil {
		t.Fatal("expected a non-nil empty slice")
	}
	if len(got) != 0 {
		t.Errorf("expected no citations, got %d", len(got))
	}
}
