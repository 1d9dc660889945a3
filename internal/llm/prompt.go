package llm

import (
	"fmt"

	"github.com/fleveque/market-radar/internal/model"
)

// BuildAnalysisPrompt creates the user prompt for a market analysis.
// The segment text appears exactly once and nothing time-dependent is
// embedded, so the same segment always yields byte-identical output.
func BuildAnalysisPrompt(q model.MarketSegmentQuery) string {
	return fmt.Sprintf(`Analyze the current global market specifically focusing on this segment: "%s".

I need a detailed competitive landscape analysis.
Identify the top 5-7 key players in the segment above.

Search the web to get the most recent market share data, revenue estimates, and strategic news from the current and previous calendar year.

Return the response as a valid JSON object wrapped in a markdown code block labeled json (`+"```json ... ```"+`).
The JSON structure must match this schema:
{
  "segment": "The segment name exactly as given above",
  "totalMarketValueEst": "Estimate of total market value (e.g. $50B)",
  "summary": "A 2-3 sentence executive summary of the current state of this market segment.",
  "analysisDate": "Current Month Year",
  "players": [
    {
      "name": "Company Name",
      "marketShareEst": 30, // Number representing percentage (0-100)
      "category": "%s" | "%s" | "%s",
      "strengths": ["Strength 1", "Strength 2"],
      "recentMoves": "One sentence about recent products or strategies."
    }
  ],
  "trends": [
    {
      "trend": "Name of trend (e.g. AI Integration)",
      "impact": "%s" | "%s" | "%s",
      "description": "Short description of the trend."
    }
  ]
}

Every field above is required except totalMarketValueEst and marketShareEst.
Ensure the data is realistic and based on the search results.`,
		q.String(),
		model.CategoryLeader, model.CategoryChallenger, model.CategoryNiche,
		model.ImpactHigh, model.ImpactMedium, model.ImpactLow,
	)
}
