package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/caloriesnap/internal/model"
)

const (
	// DefaultOpenFoodFactsURL is the India mirror, which answers faster for the
	// products this app's users search for.
	DefaultOpenFoodFactsURL = "https://in.openfoodfacts.org/cgi/search.pl"

	// OpenFoodFacts asks every client to identify itself.
	userAgent = "CalorieSnap-PersonalProject/1.0 (contact@example.com)"

	searchPageSize = 20
	searchTimeout  = 15 * time.Second
)

// OpenFoodFacts searches the public product database.
type OpenFoodFacts struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewOpenFoodFacts returns a client for baseURL (DefaultOpenFoodFactsURL when empty).
func NewOpenFoodFacts(baseURL string, logger *slog.Logger) *OpenFoodFacts {
	if baseURL == "" {
		baseURL = DefaultOpenFoodFactsURL
	}
	return &OpenFoodFacts{
		baseURL: baseURL,
		client:  &http.Client{Timeout: searchTimeout},
		logger:  logger,
	}
}

type offResponse struct {
	Products []offProduct `json:"products"`
}

type offProduct struct {
	ProductName string                    `json:"product_name"`
	Nutriments  map[string]flexibleNumber `json:"nutriments"`
}

// flexibleNumber accepts both 12.5 and "12.5"; the database has both.
type flexibleNumber float64

func (n *flexibleNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Non-numeric nutriment fields (units, labels) are ignored.
		*n = 0
		return nil
	}
	*n = flexibleNumber(f)
	return nil
}

// Search looks query up and maps each product to a per-100g FoodItem.
// Products without a calorie value are dropped.
func (o *OpenFoodFacts) Search(ctx context.Context, query string) Outcome {
	query = strings.TrimSpace(query)
	if query == "" {
		return Outcome{Items: []model.FoodItem{}}
	}

	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(searchPageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return failed(fmt.Errorf("nutrition/off: building request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.Warn("openfoodfacts search failed", slog.String("error", err.Error()))
		return failed(fmt.Errorf("nutrition/off: searching %q: %w", query, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		o.logger.Warn("openfoodfacts returned an error status", slog.Int("status", resp.StatusCode))
		return failed(fmt.Errorf("nutrition/off: search returned status %d", resp.StatusCode))
	}

	var body offResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return failed(fmt.Errorf("nutrition/off: decoding response: %w", err))
	}

	items := make([]model.FoodItem, 0, len(body.Products))
	for _, p := range body.Products {
		item := p.toFoodItem()
		if item.Calories > 0 {
			items = append(items, item)
		}
	}
	return Outcome{Items: items}
}

func (p offProduct) toFoodItem() model.FoodItem {
	name := strings.TrimSpace(p.ProductName)
	if name == "" {
		name = "Unknown Food"
	}

	kcal := float64(p.Nutriments["energy-kcal_100g"])
	if kcal == 0 {
		kcal = float64(p.Nutriments["energy-kcal"])
	}

	return model.FoodItem{
		FoodName:   name,
		Calories:   math.Round(kcal),
		Protein:    rounded(p.Nutriments["proteins_100g"]),
		Carbs:      rounded(p.Nutriments["carbohydrates_100g"]),
		Fats:       rounded(p.Nutriments["fat_100g"]),
		Confidence: model.ConfidenceHigh,
	}
}

func rounded(n flexibleNumber) *float64 {
	v := math.Round(float64(n))
	return &v
}
