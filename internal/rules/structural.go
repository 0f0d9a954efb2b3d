package rules

import (
	"strings"
	"unicode"

	"github.com/sells-group/payee-cli/internal/match"
	"github.com/sells-group/payee-cli/internal/model"
)

// ParseStructure is the lightweight name-structure parser tier. It scores the
// token shape of a name without any gazetteer lookups and returns a
// Structural-tier result with its own confidence; callers decide whether that
// confidence clears their acceptance threshold. Returns false when the shape
// is too ambiguous to score at all.
func ParseStructure(name string) (model.ClassificationResult, bool) {
	folded := match.Fold(name)
	normalized := match.Normalize(name)
	if normalized == "" {
		return model.ClassificationResult{}, false
	}
	tokens := strings.Fields(normalized)

	// Numerals and joiners are strong commercial shape markers: "4 Seasons
	// Cleaning", "A & B Rentals", "Store #12".
	if strings.ContainsAny(folded, "&#") || containsDigit(normalized) {
		return model.NewClassificationResult(
			model.LabelBusiness, 84, model.TierStructural,
			"structural parse: numeral or commercial joiner present",
			"structure:commercial_marker",
		), true
	}

	// "Last, First" keeps its comma through folding.
	if strings.Contains(folded, ",") && lastCommaFirst.MatchString(folded) {
		return model.NewClassificationResult(
			model.LabelIndividual, 88, model.TierStructural,
			"structural parse: last-comma-first person form",
			"structure:last_comma_first",
		), true
	}

	switch len(tokens) {
	case 1:
		// A single token gives nothing to parse.
		return model.ClassificationResult{}, false
	case 2:
		if alphabeticTokens(tokens) && plausibleNameLengths(tokens) {
			return model.NewClassificationResult(
				model.LabelIndividual, 82, model.TierStructural,
				"structural parse: two-token person form",
				"structure:first_last",
			), true
		}
	case 3:
		if len(tokens[1]) == 1 && alphabeticTokens(tokens) {
			return model.NewClassificationResult(
				model.LabelIndividual, 86, model.TierStructural,
				"structural parse: first-middle-initial-last person form",
				"structure:middle_initial",
			), true
		}
		// Three full words lean commercial, but not firmly enough for the
		// default acceptance threshold.
		return model.NewClassificationResult(
			model.LabelBusiness, 62, model.TierStructural,
			"structural parse: three-word form, weakly commercial",
			"structure:multi_word",
		), true
	}

	// Four or more tokens: person names this long are rare.
	return model.NewClassificationResult(
		model.LabelBusiness, 83, model.TierStructural,
		"structural parse: four or more tokens",
		"structure:long_form",
	), true
}

// OfflineGuess is the degraded-mode heuristic used when no AI tier is
// available and the rule gate declined: a coarse word-count and punctuation
// call at fixed confidence.
func OfflineGuess(name string) model.ClassificationResult {
	normalized := match.Normalize(name)
	tokens := strings.Fields(normalized)

	label := model.LabelIndividual
	reason := "offline heuristic: short name without commercial markers"
	if len(tokens) >= 3 || strings.ContainsAny(normalized, "&#") || containsDigit(normalized) {
		label = model.LabelBusiness
		reason = "offline heuristic: long name or commercial markers"
	}
	return model.NewClassificationResult(label, 65, model.TierStructural, reason, "offline:word_count")
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func alphabeticTokens(tokens []string) bool {
	for _, tok := range tokens {
		for _, r := range tok {
			if !unicode.IsLetter(r) && r != '\'' && r != '-' {
				return false
			}
		}
	}
	return true
}

func plausibleNameLengths(tokens []string) bool {
	for _, tok := range tokens {
		if len(tok) < 2 || len(tok) > 14 {
			return false
		}
	}
	return true
}
