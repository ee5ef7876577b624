package lien

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestIsEligible(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   EligibilityInput
		want bool
	}{
		{"consulting retainer", EligibilityInput{true, strPtr("TX"), strPtr("monthly consulting retainer")}, false},
		{"roof repair", EligibilityInput{true, strPtr("TX"), strPtr("Emergency ROOF Repair after storm")}, true},
		{"hvac upper case", EligibilityInput{true, strPtr("CA"), strPtr("HVAC service and duct work")}, true},
		{"no description", EligibilityInput{true, strPtr("CA"), nil}, true},
		{"blank description", EligibilityInput{true, strPtr("CA"), strPtr("   ")}, true},
		{"no address", EligibilityInput{false, strPtr("CA"), strPtr("kitchen remodel")}, false},
		{"no state", EligibilityInput{true, nil, strPtr("kitchen remodel")}, false},
		{"empty state", EligibilityInput{true, strPtr(""), strPtr("kitchen remodel")}, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, IsEligible(tc.in))
		})
	}
}

func TestIsEligible_FalseWithoutAddressOrStateRegardlessOfDescription(t *testing.T) {
	t.Parallel()

	for _, kw := range ImprovementKeywords() {
		desc := "full " + kw + " job"
		assert.False(t, IsEligible(EligibilityInput{false, strPtr("CA"), &desc}), kw)
		assert.False(t, IsEligible(EligibilityInput{true, nil, &desc}), kw)
		assert.True(t, IsEligible(EligibilityInput{true, strPtr("CA"), &desc}), kw)
	}
}

//Personal.AI order the ending
