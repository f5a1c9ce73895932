package model

// Confidence labels attached to estimates. The AI may return other strings;
// these are the ones the lookup code produces itself.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// FoodItem is a nutrition estimate returned by search or AI analysis. It is
// never persisted; it only serves as a template for a Log.
type FoodItem struct {
	FoodName   string   `json:"food_name"`
	Calories   float64  `json:"calories"`
	Protein    *float64 `json:"protein,omitempty"`
	Carbs      *float64 `json:"carbs,omitempty"`
	Fats       *float64 `json:"fats,omitempty"`
	Confidence string   `json:"confidence,omitempty"`
}

// DailySummary is one row of the monthly aggregation: the calorie total and
// number of logs for a calendar date (YYYY-MM-DD).
type DailySummary struct {
	DateLog       string  `json:"date_log"`
	TotalCalories float64 `json:"total_calories"`
	LogCount      int     `json:"log_count"`
}
