package extract

import (
	"strings"

	"github.com/fleveque/market-radar/internal/llm"
	"github.com/fleveque/market-radar/internal/model"
)

// MapCitations keeps, in order, the grounding records that have both a URI
// and a title. Incomplete records are dropped silently: grounding metadata is
// best-effort and never fails an analysis.
func MapCitations(raw []llm.Citation) []model.CitationSource {
	sources := make([]model.CitationSource, 0, len(raw))
	for _, c := range raw {
		uri := strings.TrimSpace(c.URI)
		title := strings.TrimSpace(c.Title)
		if uri == "" || title == "" {
			continue
		}
		sources = append(sources, model.CitationSource{Title: title, URI: uri})
	}
	return sources
}
