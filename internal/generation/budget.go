package generation

import (
	"math"
	"strings"
)

// Budget is an output length range in tokens.
type Budget struct {
	Max int
	Min int
}

// AnswerBudget sizes a question answering reply from the prompt's token count.
func AnswerBudget(inputTokens int) int {
	return min(200, inputTokens/2+20)
}

// WindowBudget sizes the summary of a window of consecutive chunks.
func WindowBudget(inputTokens int) Budget {
	return Budget{
		Max: min(100, int(math.Floor(float64(inputTokens)*0.8))),
		Min: min(50, int(math.Floor(float64(inputTokens)*0.4))),
	}
}

// SummaryBudget sizes a summary from the word count of text, scaled and capped.
// The minimum is half the maximum but at least 20, and never above the maximum.
func SummaryBudget(text string, scale float64, limit int) Budget {
	words := len(strings.Fields(text))
	hi := min(limit, int(math.Floor(float64(words)*scale)))
	lo := max(hi/2, 20)
	return Budget{Max: hi, Min: min(lo, hi)}
}
