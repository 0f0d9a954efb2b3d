// Package rules implements the deterministic classification tiers: the rule
// gate's regex/gazetteer detectors and the lightweight structural parser.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sells-group/payee-cli/internal/match"
	"github.com/sells-group/payee-cli/internal/model"
)

const (
	businessConfidenceCap   = 99
	individualConfidenceCap = 97
	extraRuleBonus          = 5
)

type signalKind int

const (
	kindBusiness signalKind = iota
	kindIndividual
)

// signal is one detector hit: the rule identifier, which side it argues for,
// and the base confidence a lone hit of this kind carries.
type signal struct {
	rule string
	kind signalKind
	base int
}

// Structural name patterns operate on folded text (punctuation preserved).
var (
	lastCommaFirst = regexp.MustCompile(`^[A-Z][A-Z'\-]+,\s*[A-Z][A-Z'\-]+(\s+[A-Z]\.?)?$`)
	firstInitLast  = regexp.MustCompile(`^[A-Z][A-Z'\-]+\s+[A-Z]\.?\s+[A-Z][A-Z'\-]+$`)
)

// Evaluate runs the ordered detector set over a payee name. It returns a
// RuleBased classification and true when exactly one side fired, or a zero
// result and false when the gate declines (no signals, or conflicting
// signals). It never fails and is safe to call repeatedly with identical
// results.
func Evaluate(name string) (model.ClassificationResult, bool) {
	folded := match.Fold(name)
	normalized := match.Normalize(name)
	if normalized == "" {
		return model.ClassificationResult{}, false
	}
	tokens := rejoinInitialisms(strings.Fields(normalized))

	var signals []signal
	signals = append(signals, detectLegalSuffix(tokens)...)
	signals = append(signals, detectBusinessKeyword(tokens)...)
	signals = append(signals, detectGovernment(normalized, tokens)...)
	signals = append(signals, detectHonorific(tokens)...)
	signals = append(signals, detectGenerational(tokens)...)
	signals = append(signals, detectNameStructure(folded, tokens)...)
	signals = append(signals, detectNameGazetteer(tokens)...)

	var business, individual []signal
	for _, s := range signals {
		if s.kind == kindBusiness {
			business = append(business, s)
		} else {
			individual = append(individual, s)
		}
	}

	// Conflicting evidence is not a decision this tier is allowed to make.
	if len(business) > 0 && len(individual) > 0 {
		return model.ClassificationResult{}, false
	}
	if len(business) == 0 && len(individual) == 0 {
		return model.ClassificationResult{}, false
	}

	if len(business) > 0 {
		return decide(model.LabelBusiness, business, businessConfidenceCap), true
	}
	return decide(model.LabelIndividual, individual, individualConfidenceCap), true
}

// decide folds a one-sided signal list into a result: strongest base plus a
// small bonus per additional independent rule, capped.
func decide(label model.Label, signals []signal, ceiling int) model.ClassificationResult {
	base := 0
	rules := make([]string, 0, len(signals))
	for _, s := range signals {
		if s.base > base {
			base = s.base
		}
		rules = append(rules, s.rule)
	}

	confidence := base + extraRuleBonus*(len(signals)-1)
	if confidence > ceiling {
		confidence = ceiling
	}

	reasoning := fmt.Sprintf("matched %d deterministic rule(s): %s",
		len(rules), strings.Join(rules, ", "))
	return model.NewClassificationResult(label, confidence, model.TierRuleBased, reasoning, rules...)
}

// rejoinInitialisms merges runs of 2+ single-letter tokens so "L.L.C."
// (normalized to "L L C") is seen as "LLC".
func rejoinInitialisms(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if len(tokens[i]) == 1 {
			j := i
			for j < len(tokens) && len(tokens[j]) == 1 {
				j++
			}
			if j-i >= 2 {
				out = append(out, strings.Join(tokens[i:j], ""))
				i = j
				continue
			}
		}
		out = append(out, tokens[i])
		i++
	}
	return out
}

func detectLegalSuffix(tokens []string) []signal {
	var sigs []signal
	for _, tok := range tokens {
		if _, ok := legalSuffixSet[tok]; ok {
			sigs = append(sigs, signal{
				rule: "legal_suffix:" + tok,
				kind: kindBusiness,
				base: 90,
			})
		}
	}
	return sigs
}

func detectBusinessKeyword(tokens []string) []signal {
	var sigs []signal
	for _, tok := range tokens {
		if _, ok := businessWordSet[tok]; ok {
			sigs = append(sigs, signal{
				rule: "business_keyword:" + tok,
				kind: kindBusiness,
				base: 70,
			})
		}
	}
	return sigs
}

func detectGovernment(normalized string, tokens []string) []signal {
	var sigs []signal
	for _, prefix := range governmentPrefixes {
		if strings.HasPrefix(normalized, prefix+" ") || normalized == prefix {
			sigs = append(sigs, signal{
				rule: "government_phrase:" + prefix,
				kind: kindBusiness,
				base: 90,
			})
		}
	}
	for _, tok := range tokens {
		if _, ok := govWordSet[tok]; ok {
			sigs = append(sigs, signal{
				rule: "government_term:" + tok,
				kind: kindBusiness,
				base: 85,
			})
		}
	}
	return sigs
}

func detectHonorific(tokens []string) []signal {
	if len(tokens) < 2 {
		return nil
	}
	if _, ok := honorificSet[tokens[0]]; ok {
		return []signal{{
			rule: "honorific:" + tokens[0],
			kind: kindIndividual,
			base: 85,
		}}
	}
	return nil
}

func detectGenerational(tokens []string) []signal {
	if len(tokens) < 2 {
		return nil
	}
	last := tokens[len(tokens)-1]
	if _, ok := generationalSet[last]; ok {
		return []signal{{
			rule: "generational_suffix:" + last,
			kind: kindIndividual,
			base: 80,
		}}
	}
	return nil
}

func detectNameStructure(folded string, tokens []string) []signal {
	var sigs []signal
	if lastCommaFirst.MatchString(folded) {
		sigs = append(sigs, signal{
			rule: "name_structure:last_comma_first",
			kind: kindIndividual,
			base: 80,
		})
	}
	if firstInitLast.MatchString(folded) {
		sigs = append(sigs, signal{
			rule: "name_structure:first_initial_last",
			kind: kindIndividual,
			base: 80,
		})
	}

	// Plain "First Last" is too weak alone; require a gazetteer anchor.
	if len(tokens) == 2 {
		_, firstKnown := firstNameSet[tokens[0]]
		_, lastKnown := lastNameSet[tokens[1]]
		if firstKnown || lastKnown {
			sigs = append(sigs, signal{
				rule: "name_structure:first_last",
				kind: kindIndividual,
				base: 75,
			})
		}
	}
	return sigs
}

func detectNameGazetteer(tokens []string) []signal {
	var sigs []signal
	for _, tok := range tokens {
		if _, ok := firstNameSet[tok]; ok {
			sigs = append(sigs, signal{
				rule: "first_name:" + tok,
				kind: kindIndividual,
				base: 70,
			})
		}
		if _, ok := lastNameSet[tok]; ok {
			sigs = append(sigs, signal{
				rule: "last_name:" + tok,
				kind: kindIndividual,
				base: 70,
			})
		}
	}
	return sigs
}
