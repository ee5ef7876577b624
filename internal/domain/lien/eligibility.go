package lien

import "strings"

// improvementKeywords are trade terms that mark work as a property
// improvement. Matching is a case-insensitive substring test.
var improvementKeywords = []string{
	"install", "repair", "replace", "construction", "remodel", "renovation",
	"electrical", "plumbing", "hvac", "roofing", "flooring", "drywall",
	"painting", "framing", "foundation", "siding", "window", "door",
	"concrete", "masonry", "landscaping", "excavation", "insulation",
	"cabinet", "countertop", "tile", "deck", "fence", "gutter", "paving",
	"demolition", "carpentry", "build", "welding", "grading",
}

// EligibilityInput is the subset of invoice data the classifier needs.
type EligibilityInput struct {
	HasPropertyAddress bool
	State              *string
	WorkDescription    *string
}

// IsEligible decides whether an invoice qualifies for lien treatment.
//
// It is false when the property address or state is missing. With a
// description present it is true only if the description names an
// improvement trade; with no (or a blank) description it is true, leaving
// the case to manual review rather than rejecting it.
func IsEligible(in EligibilityInput) bool {
	if !in.HasPropertyAddress || in.State == nil || strings.TrimSpace(*in.State) == "" {
		return false
	}
	if in.WorkDescription == nil || strings.TrimSpace(*in.WorkDescription) == "" {
		return true
	}
	return MatchesImprovementKeyword(*in.WorkDescription)
}

// MatchesImprovementKeyword reports whether desc mentions an improvement trade.
func MatchesImprovementKeyword(desc string) bool {
	lower := strings.ToLower(desc)
	for _, kw := range improvementKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ImprovementKeywords returns a copy of the keyword list.
func ImprovementKeywords() []string {
	out := make([]string, len(improvementKeywords))
	copy(out, improvementKeywords)
	return out
}

//Personal.AI order the ending
