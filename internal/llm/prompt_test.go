package llm

import (
	"strings"
	"testing"

	"github.com/fleveque/market-radar/internal/model"
)

func mustQuery(t *testing.T, raw string) model.MarketSegmentQuery {
	t.Helper()
	q, err := model.NewMarketSegmentQuery(raw)
	if err != nil {
		t.Fatalf("building query %q: %v", raw, err)
	}
	return q
}

func TestBuildAnalysisPrompt_Deterministic(t *testing.T) {
	q := mustQuery(t, "Gaming Laptops")
	first := BuildAnalysisPrompt(q)
	second := BuildAnalysisPrompt(q)
	if first != second {
		t.Error("expected identical prompts for the same segment")
	}
}

func TestBuildAnalysisPrompt_ContainsSegmentOnce(t *testing.T) {
	segments := []string{
		"Gaming Laptops",
		"Global Computer Workstation Market",
		"Enterprise NAS Appliances (EMEA)",
		"Édition numérique 日本",
	}
	for _, s := range segments {
		prompt := BuildAnalysisPrompt(mustQuery(t, s))
		if n := strings.Count(prompt, s); n != 1 {
			t.Errorf("segment %q: expected exactly 1 occurrence, got %d", s, n)
		}
	}
}

// Segments made of words the template itself uses ("segment", "JSON") occur
// more than once in the text, so the embedding is checked structurally: the
// prompt equals the template with a single placeholder substituted.
func TestBuildAnalysisPrompt_EmbedsSegmentOnce(t *testing.T) {
	const placeholder = "\x00SEGMENT\x00"
	template := BuildAnalysisPrompt(mustQuery(t, placeholder))
	if n := strings.Count(template, placeholder); n != 1 {
		t.Fatalf("expected the segment slot exactly once, got %d", n)
	}

	for _, s := range []string{"segment", "JSON", "Market", "json", "Leader", `"quoted"`, "Gaming Laptops"} {
		want := strings.Replace(template, placeholder, s, 1)
		if got := BuildAnalysisPrompt(mustQuery(t, s)); got != want {
			t.Errorf("segment %q: prompt is not the template with one substitution", s)
		}
		if !strings.Contains(BuildAnalysisPrompt(mustQuery(t, s)), `segment: "`+s+`".`) {
			t.Errorf("segment %q: expected the quoted embedding", s)
		}
	}
}

func TestBuildAnalysisPrompt_DescribesSchema(t *testing.T) {
	prompt := BuildAnalysisPrompt(mustQuery(t, "Gaming Laptops"))

	for _, want := range []string{
		"```json",
		"5-7 key players",
		"Search the web",
		`"segment"`, `"summary"`, `"analysisDate"`, `"players"`, `"trends"`,
		`"marketShareEst"`, `"category"`, `"strengths"`, `"recentMoves"`,
		`"impact"`, `"description"`, `"totalMarketValueEst"`,
		`"Leader" | "Challenger" | "Niche"`,
		`"High" | "Medium" | "Low"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
}
