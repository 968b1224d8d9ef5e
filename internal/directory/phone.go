package directory

import "regexp"

// CandidateRule expands a digit string into alternate stored formats for one
// regional numbering quirk. Rules are additive: new quirks append to
// candidateRules without touching existing expansion logic.
type CandidateRule struct {
	Name    string
	Pattern *regexp.Regexp
	Expand  func(digits string) []string
}

// candidateRules holds the regional normalization rules applied in order.
//
// Argentine mobiles: the provider reports numbers as 54 9 XXXXXXXXXX, but
// dashboards frequently store them without the mobile indicator digit
// (54 XXXXXXXXXX), so both forms are queried.
var candidateRules = []CandidateRule{
	{
		Name:    "ar-mobile-indicator",
		Pattern: regexp.MustCompile(`^549\d{8,}$`),
		Expand: func(digits string) []string {
			return []string{"54" + digits[3:]}
		},
	},
}

// PhoneCandidates returns the ordered, distinct set of stored-format
// candidates for a raw digit string: the digits themselves, a plus-prefixed
// variant, and any regional-rule expansions (again with and without plus).
func PhoneCandidates(digits string) []string {
	if digits == "" {
		return nil
	}
	candidates := []string{digits, "+" + digits}
	for _, rule := range candidateRules {
		if !rule.Pattern.MatchString(digits) {
			continue
		}
		for _, alt := range rule.Expand(digits) {
			candidates = append(candidates, alt, "+"+alt)
		}
	}
	return dedup(candidates)
}

func dedup(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, s := range items {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}
	return result
}
