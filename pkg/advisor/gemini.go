package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/forgevyn/zenzero/internal/config"
	"github.com/forgevyn/zenzero/pkg/budget"
	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

var ErrEmptyResponse = errors.New("model returned no content")

// GeminiClient asks Gemini models for budget advice through the Gemini API.
type GeminiClient struct {
	models    *genai.Models
	fastModel string
	proModel  string
}

// NewGeminiClient builds a client from the advisor configuration. A non-empty BaseUrl replaces
// the public Gemini API endpoint.
func NewGeminiClient(ctx context.Context, cfg config.Advisor) (*GeminiClient, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.ApiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseUrl != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseUrl}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{
		models:    client.Models,
		fastModel: cfg.FastModel,
		proModel:  cfg.ProModel,
	}, nil
}

type allocationJSON struct {
	Income    float64 `json:"income"`
	Bills     float64 `json:"bills"`
	Savings   float64 `json:"savings"`
	Spendable float64 `json:"spendable"`
	Total     float64 `json:"total"`
}

type reallocationResponse struct {
	NewAllocations *allocationJSON `json:"newAllocations"`
	Explanation    string          `json:"explanation"`
}

type reviewResponse struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Advice     string   `json:"advice"`
}

type goalResponse struct {
	SuggestedName   string  `json:"suggestedName"`
	SuggestedAmount float64 `json:"suggestedAmount"`
	Reasoning       string  `json:"reasoning"`
}

func numberSchema() *genai.Schema { return &genai.Schema{Type: genai.TypeNumber} }

func stringSchema() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

var reallocationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"newAllocations": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"bills":     numberSchema(),
				"income":    numberSchema(),
				"savings":   numberSchema(),
				"spendable": numberSchema(),
				"total":     numberSchema(),
			},
			Required: []string{"bills", "income", "savings", "spendable", "total"},
		},
		"explanation": stringSchema(),
	},
	Required: []string{"newAllocations", "explanation"},
}

var reviewSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"strengths":  {Type: genai.TypeArray, Items: stringSchema()},
		"weaknesses": {Type: genai.TypeArray, Items: stringSchema()},
		"advice":     stringSchema(),
	},
	Required: []string{"strengths", "weaknesses", "advice"},
}

var goalSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"suggestedName":   stringSchema(),
		"suggestedAmount": numberSchema(),
		"reasoning":       stringSchema(),
	},
	Required: []string{"suggestedName", "suggestedAmount", "reasoning"},
}

func (c *GeminiClient) Reallocate(ctx context.Context, req budget.ReallocationRequest) (budget.AllocationSuggestion, error) {
	var resp reallocationResponse
	if err := c.generate(ctx, c.fastModel, reallocationPrompt(req), reallocationSchema, &resp); err != nil {
		return budget.AllocationSuggestion{}, err
	}
	if resp.NewAllocations == nil {
		return budget.AllocationSuggestion{}, fmt.Errorf("%w: newAllocations missing", ErrEmptyResponse)
	}
	return budget.AllocationSuggestion{
		Allocations: budget.Allocation(*resp.NewAllocations),
		Explanation: resp.Explanation,
	}, nil
}

func (c *GeminiClient) WeeklyReview(ctx context.Context, req budget.ReviewRequest) (budget.WeeklyReview, error) {
	var resp reviewResponse
	if err := c.generate(ctx, c.fastModel, reviewPrompt(req), reviewSchema, &resp); err != nil {
		return budget.WeeklyReview{}, err
	}
	return budget.WeeklyReview(resp), nil
}

func (c *GeminiClient) SuggestGoal(ctx context.Context, req budget.GoalRequest) (budget.GoalSuggestion, error) {
	var resp goalResponse
	if err := c.generate(ctx, c.proModel, goalPrompt(req), goalSchema, &resp); err != nil {
		return budget.GoalSuggestion{}, err
	}
	return budget.GoalSuggestion{
		Name:      resp.SuggestedName,
		Amount:    resp.SuggestedAmount,
		Reasoning: resp.Reasoning,
	}, nil
}

// generate sends one prompt and decodes the text of the first candidate into target. Unknown
// fields in the model output are rejected.
func (c *GeminiClient) generate(ctx context.Context, model string, prompt string, schema *genai.Schema, target any) error {
	generationConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	log.Debugf("requesting advice from %s", model)
	response, err := c.models.GenerateContent(ctx, modelName(model), genai.Text(prompt), generationConfig)
	if err != nil {
		return fmt.Errorf("generate content with %s: %w", model, err)
	}

	text := firstCandidateText(response)
	if text == "" {
		return ErrEmptyResponse
	}
	decoder := json.NewDecoder(bytes.NewReader([]byte(text)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("decode %s response: %w", model, err)
	}
	return nil
}

func modelName(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

func firstCandidateText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}
	var text strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	return text.String()
}
