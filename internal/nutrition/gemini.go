package nutrition

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/sakif/caloriesnap/internal/model"
)

const (
	TextModel  = "gemini-2.5-flash"
	ImageModel = "gemini-2.5-flash-lite"
)

const textPrompt = `I ate "%s".
Identify the food items and estimate the calories and macros.
If the quantity is not specified, assume a standard serving.

Return a JSON array with this exact structure (no markdown, just raw JSON):
[
  {
    "food_name": "Food Name",
    "calories": number,
    "protein": number,
    "carbs": number,
    "fats": number
  }
]`

const imagePrompt = `Identify the food in this image and estimate the calories. ` +
	`Return ONLY a JSON object: { "food_name": string, "calories": number, "protein": number, ` +
	`"carbs": number, "fats": number, "confidence": "High" | "Medium" | "Low" }. ` +
	`Do not include markdown formatting or backticks.`

// Generator is the slice of the Gemini client the estimator needs.
// *genai.Models satisfies it; tests use a fake.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Estimator asks a Gemini model for nutrition estimates.
// A nil generator means no API key was configured.
type Estimator struct {
	gen    Generator
	logger *slog.Logger
}

// NewGeminiEstimator connects to the Gemini API. An empty apiKey is not an
// error: the estimator is created unconfigured and every call fails with
// ErrNotConfigured, which keeps the rest of the server usable.
func NewGeminiEstimator(ctx context.Context, apiKey string, logger *slog.Logger) (*Estimator, error) {
	if apiKey == "" {
		logger.Warn("GEMINI_API_KEY is not set; AI estimates are disabled")
		return &Estimator{logger: logger}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("nutrition/gemini: creating client: %w", err)
	}
	return NewEstimator(client.Models, logger), nil
}

func NewEstimator(gen Generator, logger *slog.Logger) *Estimator {
	return &Estimator{gen: gen, logger: logger}
}

// EstimateText identifies the foods in a free-text description like
// "two eggs and toast" and estimates each one.
func (e *Estimator) EstimateText(ctx context.Context, query string) Outcome {
	query = strings.TrimSpace(query)
	if query == "" {
		return Outcome{Items: []model.FoodItem{}}
	}
	if e.gen == nil {
		return failed(ErrNotConfigured)
	}

	resp, err := e.gen.GenerateContent(ctx, TextModel, genai.Text(fmt.Sprintf(textPrompt, query)), nil)
	if err != nil {
		e.logger.Warn("gemini text estimate failed", slog.String("error", err.Error()))
		return failed(fmt.Errorf("nutrition/gemini: generating: %w", err))
	}

	items, err := parseItems(resp.Text())
	if err != nil {
		e.logger.Warn("gemini returned unparseable text", slog.String("error", err.Error()))
		return failed(err)
	}
	return Outcome{Items: items}
}

// EstimateImage analyses one JPEG photo, given as base64 with or without a
// "data:image/jpeg;base64," prefix.
func (e *Estimator) EstimateImage(ctx context.Context, image string) ImageOutcome {
	if e.gen == nil {
		return ImageOutcome{Err: ErrNotConfigured}
	}

	data, err := decodeImage(image)
	if err != nil {
		return ImageOutcome{Err: err}
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(imagePrompt),
			genai.NewPartFromBytes(data, "image/jpeg"),
		}, genai.RoleUser),
	}

	resp, err := e.gen.GenerateContent(ctx, ImageModel, contents, nil)
	if err != nil {
		e.logger.Warn("gemini image analysis failed", slog.String("error", err.Error()))
		return ImageOutcome{Err: fmt.Errorf("nutrition/gemini: generating: %w", err)}
	}

	item, err := parseObject(resp.Text())
	if err != nil {
		e.logger.Warn("gemini returned unparseable analysis", slog.String("error", err.Error()))
		return ImageOutcome{Err: err}
	}
	return ImageOutcome{Item: item}
}

// parseItems strips markdown fences and decodes a JSON array of items.
func parseItems(text string) ([]model.FoodItem, error) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, "```", ""))

	var items []model.FoodItem
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("nutrition/gemini: decoding items: %w", err)
	}
	if items == nil {
		items = []model.FoodItem{}
	}
	return items, nil
}

// parseObject decodes the first {...} in text. The model sometimes wraps
// its answer in prose.
func parseObject(text string) (*model.FoodItem, error) {
	start := strings.Index(text, "{")
	if start < 0 {
		return nil, errors.New("nutrition/gemini: no JSON found in response")
	}
	end := strings.Index(text[start:], "}")
	if end < 0 {
		return nil, errors.New("nutrition/gemini: no JSON found in response")
	}

	var item model.FoodItem
	if err := json.Unmarshal([]byte(text[start:start+end+1]), &item); err != nil {
		return nil, fmt.Errorf("nutrition/gemini: decoding item: %w", err)
	}
	item.Confidence = confidenceLabel(item.Confidence)
	return &item, nil
}

// confidenceLabel maps the model's answer onto the known labels regardless
// of case. Anything else is passed through as written.
func confidenceLabel(s string) string {
	for _, label := range []string{model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow} {
		if strings.EqualFold(strings.TrimSpace(s), label) {
			return label
		}
	}
	return s
}

func decodeImage(image string) ([]byte, error) {
	image = strings.TrimSpace(image)
	if _, payload, ok := strings.Cut(image, ","); ok {
		image = payload
	}
	if image == "" {
		return nil, errors.New("nutrition/gemini: image is empty")
	}

	data, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return nil, fmt.Errorf("nutrition/gemini: decoding base64 image: %w", err)
	}
	return data, nil
}
