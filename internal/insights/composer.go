package insights

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// DefaultWindow is how many recent expense transactions feed one insight run.
const DefaultWindow = 50

// similarityThreshold separates an encouraging similarity insight from a
// cautionary one.
const similarityThreshold = 0.7

// TipGenerator produces one human-readable coaching sentence from a prompt.
// Implementations may be unavailable; the composer absorbs every failure.
type TipGenerator interface {
	GenerateTip(ctx context.Context, prompt string) (string, error)
}

// Composer runs the full insight pipeline for a user: recent expenses in,
// ordered insight list out. It holds no per-request state and is safe for
// concurrent use.
type Composer struct {
	expenses store.ExpenseReader
	coach    TipGenerator
	window   int
}

// NewComposer wires the pipeline. coach may be nil, which disables the
// generative headliner entirely. A non-positive window falls back to
// DefaultWindow.
func NewComposer(expenses store.ExpenseReader, coach TipGenerator, window int) *Composer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Composer{expenses: expenses, coach: coach, window: window}
}

// Compose returns the ordered insight list for the user. A storage failure is
// the only error that propagates; the no-data case and every generative-call
// failure shape the content of a successful result instead.
func (c *Composer) Compose(ctx context.Context, userID int64) ([]core.Insight, error) {
	txs, err := c.expenses.RecentExpenses(ctx, userID, c.window)
	if err != nil {
		return nil, fmt.Errorf("fetch recent expenses: %w", err)
	}

	if len(txs) == 0 {
		return []core.Insight{{
			Title:       "No Data",
			Description: "Add expenses to enable AI insights.",
			Kind:        core.InsightInfo,
		}}, nil
	}

	topKeyword, keywordCount := topKeyword(txs)

	vector := BuildCategoryVector(txs)
	topCategory := vector.TopCategory()
	score := CosineSimilarity(vector, idealProfile)

	var out []core.Insight

	// A keyword seen once is not a pattern.
	if keywordCount > 1 {
		out = append(out, core.Insight{
			Title:       "Habit Detected (NLP)",
			Description: fmt.Sprintf("Frequent spending on %q detected.", topKeyword),
			Kind:        core.InsightInfo,
			Reason:      "NLP Analysis",
		})
	}

	kind := core.InsightWarning
	if score > similarityThreshold {
		kind = core.InsightSuccess
	}
	out = append(out, core.Insight{
		Title:       "Saver Similarity",
		Description: fmt.Sprintf("Your spending matches %d%% with the Ideal Model.", roundPercent(score)),
		Kind:        kind,
		Reason:      "Cosine Similarity Vector",
	})

	if tip := c.fetchTip(ctx, topCategory, topKeyword, score); tip != "" {
		// The generative headliner always leads the list when present.
		out = append([]core.Insight{{
			Title:       "AI Coach",
			Description: tip,
			Kind:        core.InsightPurple,
			Reason:      "Generative AI",
		}}, out...)
	}

	slog.DebugContext(ctx, "Composed insights",
		log.FieldComponent, log.ComponentInsights,
		log.FieldUserID, userID,
		log.FieldInsights, len(out),
		log.FieldSimilarity, score,
		log.FieldKeyword, topKeyword)

	return out, nil
}

// fetchTip builds the advisor prompt and calls the generator. Any failure,
// including an unconfigured generator, degrades to an empty tip; nothing is
// retried and no error escapes.
func (c *Composer) fetchTip(ctx context.Context, topCategory, topKeyword string, score float64) string {
	if c.coach == nil {
		return ""
	}
	if topKeyword == "" {
		topKeyword = "None"
	}
	prompt := fmt.Sprintf(
		"Act as a financial advisor.\n"+
			"User Data:\n"+
			"- Top Spending Category: %s\n"+
			"- Frequent Keyword: %s\n"+
			"- Match with Ideal Saver Profile: %d%%\n\n"+
			"Give a ONE sentence punchy, encouraging financial tip based on this data. "+
			"Do not mention \"vectors\".",
		topCategory, topKeyword, roundPercent(score))

	tip, err := c.coach.GenerateTip(ctx, prompt)
	if err != nil {
		slog.WarnContext(ctx, "Generative tip unavailable, serving local insights only",
			log.FieldComponent, log.ComponentInsights,
			log.FieldError, err)
		return ""
	}
	return tip
}

// roundPercent renders a [0,1] score as a whole percentage. Half values round
// away from zero, not to even, so 70.5 becomes 71.
func roundPercent(score float64) int {
	return int(math.Round(score * 100))
}

// topKeyword accumulates word frequencies across all descriptions and picks
// the most frequent token. Ties break lexicographically so the choice is
// deterministic regardless of map iteration order.
func topKeyword(txs []core.Transaction) (string, int) {
	freq := make(map[string]int)
	for _, t := range txs {
		for _, w := range Tokenize(t.Description) {
			freq[w]++
		}
	}
	if len(freq) == 0 {
		return "", 0
	}

	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Strings(words)

	best := words[0]
	for _, w := range words[1:] {
		if freq[w] > freq[best] {
			best = w
		}
	}
	return best, freq[best]
}
