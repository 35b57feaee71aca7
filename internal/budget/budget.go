package budget

import (
	"strings"
	"unicode/utf8"
)

// Estimate returns the local token estimate for s: its character count plus
// the number of ASCII spaces it contains. This is a cost-visibility proxy and
// deliberately not the provider's tokenizer; the formula must stay stable.
func Estimate(s string) int {
	return utf8.RuneCountInString(s) + strings.Count(s, " ")
}

// EstimateAll sums Estimate over each part.
func EstimateAll(parts ...string) int {
	total := 0
	for _, p := range parts {
		total += Estimate(p)
	}
	return total
}

// ModelContextTokens returns an estimated maximum context window for a given
// model name. Unknown models fall back to a sensible default.
func ModelContextTokens(modelName string) int {
	name := strings.ToLower(strings.TrimSpace(modelName))
	if name == "" {
		return 8192
	}
	if v, ok := knownModelMax[name]; ok {
		return v
	}
	switch {
	case strings.HasSuffix(name, "1m"):
		return 1_000_000
	case strings.HasSuffix(name, "200k"):
		return 200_000
	case strings.HasSuffix(name, "128k"):
		return 128_000
	case strings.HasSuffix(name, "32k"):
		return 32_768
	case strings.HasSuffix(name, "16k"):
		return 16_384
	case strings.Contains(name, "-mini"):
		return 128_000
	}
	return 8192
}

// RemainingContext computes the remaining input token budget given a model,
// a reservation for output generation and the estimated prompt tokens.
// The result is never negative.
func RemainingContext(modelName string, reservedForOutput int, promptTokens int) int {
	if reservedForOutput < 0 {
		reservedForOutput = 0
	}
	remaining := ModelContextTokens(modelName) - reservedForOutput - promptTokens
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FitsInContext reports whether the prompt still leaves room in the model's
// context window after reserving output tokens.
func FitsInContext(modelName string, reservedForOutput int, promptTokens int) bool {
	return RemainingContext(modelName, reservedForOutput, promptTokens) > 0
}

// knownModelMax contains rough context sizes for common model identifiers.
var knownModelMax = map[string]int{
	"gpt-4o":             128_000,
	"gpt-4o-mini":        128_000,
	"gpt-4-turbo":        128_000,
	"gpt-4-0125-preview": 128_000,
	"gpt-4":              8_192,
	"gpt-3.5-turbo":      16_384,
	"llama-3":            8_192,
	"llama-3.1":          128_000,
}
