package suggest

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/erazemk/datavault/internal/model"
)

// FieldSuggestion holds the item fields proposed for a product name.
type FieldSuggestion struct {
	Category      string  `json:"category"`
	Year          string  `json:"year"`
	PurchasePrice float64 `json:"purchasePrice"`
	PurchaseDate  string  `json:"purchaseDate"`
	CurrentValue  float64 `json:"currentValue"`
	Image         string  `json:"image"`
}

// ApplyTo merges the suggestion into d. String fields overwrite only when the
// suggestion is non-empty; the purchase date is normalised to dd/mm/yyyy.
func (s FieldSuggestion) ApplyTo(d *model.Draft) {
	if s.Category != "" {
		d.Category = s.Category
	}
	if s.Year != "" {
		d.Year = s.Year
	}
	d.PurchasePrice = s.PurchasePrice
	if s.PurchaseDate != "" {
		d.PurchaseDate = model.NormalizeDate(s.PurchaseDate)
	}
	d.CurrentValue = s.CurrentValue
	if s.Image != "" {
		d.Image = s.Image
	}
}

// Scale selects how estimation factors are expressed.
type Scale string

// Estimation scales.
const (
	ScaleNumeric Scale = "numeric"
	ScaleText    Scale = "text"
)

// ParseScale parses "numeric" or "text". Empty means numeric.
func ParseScale(s string) (Scale, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ScaleNumeric):
		return ScaleNumeric, true
	case string(ScaleText):
		return ScaleText, true
	}
	return "", false
}

// Factor is one estimation score. Score is set on the numeric scale, Text on
// the text scale.
type Factor struct {
	Score int    `json:"score,omitempty"`
	Text  string `json:"text,omitempty"`
}

// String returns the factor as shown to users.
func (f Factor) String() string {
	if f.Text != "" {
		return f.Text
	}
	return strings.Repeat("●", f.Score) + strings.Repeat("○", 10-f.Score)
}

// Estimation is the four-factor assessment of an item.
type Estimation struct {
	Scale        Scale  `json:"scale"`
	Rarity       Factor `json:"rarity"`
	MarketDemand Factor `json:"marketDemand"`
	Longevity    Factor `json:"longevity"`
	MarketTrends Factor `json:"marketTrends"`
}

// extractJSON returns the text between the first '{' and the last '}'.
func extractJSON(content string) (string, error) {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end < start {
		return "", malformed("no JSON object in %q", preview(content))
	}
	return content[start : end+1], nil
}

// object decodes the embedded JSON object into its raw fields.
func object(content string) (map[string]json.RawMessage, error) {
	raw, err := extractJSON(content)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, malformed("invalid JSON: %v", err)
	}
	return fields, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", malformed("missing field %q", name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", malformed("field %q must be a string", name)
	}
	return s, nil
}

func numberField(fields map[string]json.RawMessage, name string) (float64, error) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return 0, malformed("missing field %q", name)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, malformed("field %q must be a number", name)
	}
	return n, nil
}

// parseFieldSuggestion strictly decodes a field suggestion reply.
func parseFieldSuggestion(content string) (FieldSuggestion, error) {
	fields, err := object(content)
	if err != nil {
		return FieldSuggestion{}, err
	}

	var s FieldSuggestion
	if s.Category, err = stringField(fields, "category"); err != nil {
		return FieldSuggestion{}, err
	}
	if s.Year, err = stringField(fields, "year"); err != nil {
		return FieldSuggestion{}, err
	}
	if s.PurchasePrice, err = numberField(fields, "purchasePrice"); err != nil {
		return FieldSuggestion{}, err
	}
	if s.PurchaseDate, err = stringField(fields, "purchaseDate"); err != nil {
		return FieldSuggestion{}, err
	}
	if s.CurrentValue, err = numberField(fields, "currentValue"); err != nil {
		return FieldSuggestion{}, err
	}
	if s.Image, err = stringField(fields, "image"); err != nil {
		return FieldSuggestion{}, err
	}
	return s, nil
}

var factorNames = []string{"rarity", "marketDemand", "longevity", "marketTrends"}

// parseEstimation strictly decodes an estimation reply on the given scale.
func parseEstimation(content string, scale Scale) (Estimation, error) {
	fields, err := object(content)
	if err != nil {
		return Estimation{}, err
	}

	factors := make([]Factor, len(factorNames))
	for i, name := range factorNames {
		if scale == ScaleText {
			text, err := stringField(fields, name)
			if err != nil {
				return Estimation{}, err
			}
			factors[i] = Factor{Text: text}
			continue
		}

		n, err := numberField(fields, name)
		if err != nil {
			return Estimation{}, err
		}
		if n != float64(int(n)) || n < 1 || n > 10 {
			return Estimation{}, malformed("field %q must be an integer from 1 to 10, got %v", name, n)
		}
		factors[i] = Factor{Score: int(n)}
	}

	return Estimation{
		Scale:        scale,
		Rarity:       factors[0],
		MarketDemand: factors[1],
		Longevity:    factors[2],
		MarketTrends: factors[3],
	}, nil
}

// preview shortens s for error messages.
func preview(s string) string {
	const limit = 80
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
