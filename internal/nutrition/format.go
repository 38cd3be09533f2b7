package nutrition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rcliao/nutricoach/internal/model"
)

// PhotoReply renders a locally produced analysis the way the assistant would phrase it.
func PhotoReply(f *model.NutritionFact) string {
	var b strings.Builder
	b.WriteString("I analyzed the photo: ~")
	b.WriteString(formatNum(f.Calories))
	b.WriteString(" kcal, ")
	b.WriteString(formatNum(f.ProteinGrams))
	b.WriteString("g protein, ")
	b.WriteString(formatNum(f.CarbGrams))
	b.WriteString("g carbs.")
	if f.Summary != nil && *f.Summary != "" {
		b.WriteString(" ")
		b.WriteString(*f.Summary)
	}
	return b.String()
}

// Describe is a one-line rendering used for log descriptions and CLI output.
func Describe(f *model.NutritionFact) string {
	if f.IsEmpty() {
		return ""
	}
	parts := []string{}
	if f.Calories != nil {
		parts = append(parts, fmt.Sprintf("%s kcal", formatNum(f.Calories)))
	}
	if f.ProteinGrams != nil {
		parts = append(parts, fmt.Sprintf("%sg protein", formatNum(f.ProteinGrams)))
	}
	if f.CarbGrams != nil {
		parts = append(parts, fmt.Sprintf("%sg carbs", formatNum(f.CarbGrams)))
	}
	if f.FiberGrams != nil {
		parts = append(parts, fmt.Sprintf("%sg fiber", formatNum(f.FiberGrams)))
	}
	return strings.Join(parts, ", ")
}

func formatNum(p *float64) string {
	if p == nil {
		return "?"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
