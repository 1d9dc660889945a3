package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient implements the Client interface using Gemini with Google Search
// grounding. Search-grounded replies carry the consulted web pages in the
// candidate's grounding metadata.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new Gemini-backed analysis client.
func NewGeminiClient(ctx context.Context, apiKey string, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) ProviderName() string { return "gemini" }
func (g *GeminiClient) ModelName() string    { return g.model }

func (g *GeminiClient) Generate(ctx context.Context, req Request) (*Reply, error) {
	// responseMimeType can't be combined with the search tool, so the JSON
	// shape is enforced through the prompt alone.
	var config *genai.GenerateContentConfig
	if req.Grounded {
		config = &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), config)
	if err != nil {
		return nil, generationError(g, fmt.Errorf("gemini API call: %w", err))
	}

	reply, err := replyFromGemini(result)
	if err != nil {
		return nil, generationError(g, err)
	}
	return reply, nil
}

// replyFromGemini concatenates the first candidate's text parts and collects
// its web grounding chunks. A candidate with no text yields an empty reply,
// which the extractor rejects as invalid JSON.
func replyFromGemini(result *genai.GenerateContentResponse) (*Reply, error) {
	if result == nil {
		return nil, errors.New("gemini returned no response")
	}
	if len(result.Candidates) == 0 {
		if fb := result.PromptFeedback; fb != nil && fb.BlockReason != "" {
			return nil, fmt.Errorf("prompt blocked: %s", fb.BlockReason)
		}
		return nil, errors.New("gemini returned no candidates")
	}

	candidate := result.Candidates[0]
	reply := &Reply{}

	if candidate.Content != nil {
		var sb strings.Builder
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
		reply.Text = sb.String()
	}

	if md := candidate.GroundingMetadata; md != nil {
		for _, chunk := range md.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			reply.Citations = append(reply.Citations, Citation{
				URI:   chunk.Web.URI,
				Title: chunk.Web.Title,
			})
		}
	}

	return reply, nil
}
