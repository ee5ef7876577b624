package lien

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/LienPilot/pkg/types/common"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := common.ParseDate(s)
	require.NoError(t, err)
	return d
}

func datePtr(t *testing.T, s string) *time.Time {
	d := date(t, s)
	return &d
}

func TestCalculateAt_CaliforniaScenario(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(DefaultRuleTable())
	lc := calc.CalculateAt("CA", datePtr(t, "2025-01-01"), datePtr(t, "2025-01-31"), date(t, "2025-03-01"))

	require.NotNil(t, lc.PreliminaryNoticeDeadline)
	require.NotNil(t, lc.LienFilingDeadline)
	require.NotNil(t, lc.EnforcementDeadline)
	assert.Equal(t, "2025-01-21", common.FormatDate(*lc.PreliminaryNoticeDeadline))
	assert.Equal(t, "2025-05-01", common.FormatDate(*lc.LienFilingDeadline))
	assert.Equal(t, "2025-07-30", common.FormatDate(*lc.EnforcementDeadline))
	assert.Equal(t, 61, lc.DaysUntilFilingDeadline)
	assert.Equal(t, WarningGreen, lc.WarningLevel)
	assert.Equal(t, FilingOpen, lc.Status())
}

func TestCalculateAt_CaliforniaCloseToDeadline(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(DefaultRuleTable())
	lc := calc.CalculateAt("CA", datePtr(t, "2025-01-01"), datePtr(t, "2025-01-31"), date(t, "2025-04-25"))

	assert.Equal(t, 6, lc.DaysUntilFilingDeadline)
	assert.Equal(t, WarningRed, lc.WarningLevel)
	assert.Equal(t, FilingUrgent, lc.Status())
	assert.False(t, lc.DeadlinePassed())
}

func TestCalculateAt_UnknownStateBehavesLikeDefault(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(DefaultRuleTable())
	first, last, now := datePtr(t, "2025-02-01"), datePtr(t, "2025-02-10"), date(t, "2025-03-15")

	unknown := calc.CalculateAt("XX", first, last, now)
	def := calc.CalculateAt(DefaultStateKey, first, last, now)

	assert.True(t, unknown.UsesDefaultRule())
	assert.Equal(t, def.Rule, unknown.Rule)
	assert.Equal(t, def.LienFilingDeadline, unknown.LienFilingDeadline)
	assert.Equal(t, def.EnforcementDeadline, unknown.EnforcementDeadline)
	assert.Equal(t, def.DaysUntilFilingDeadline, unknown.DaysUntilFilingDeadline)
	assert.Equal(t, def.WarningLevel, unknown.WarningLevel)
	assert.Nil(t, unknown.PreliminaryNoticeDeadline)
	assert.Equal(t, "2025-05-11", common.FormatDate(*unknown.LienFilingDeadline))
}

func TestCalculateAt_MissingDates(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(DefaultRuleTable())

	t.Run("no dates", func(t *testing.T) {
		lc := calc.CalculateAt("CA", nil, nil, date(t, "2025-03-01"))
		assert.Nil(t, lc.PreliminaryNoticeDeadline)
		assert.Nil(t, lc.LienFilingDeadline)
		assert.Nil(t, lc.EnforcementDeadline)
		assert.Equal(t, 0, lc.DaysUntilFilingDeadline)
		assert.False(t, lc.HasFilingDeadline())
		assert.Equal(t, FilingUnknown, lc.Status())
	})

	t.Run("prelim not required", func(t *testing.T) {
		lc := calc.CalculateAt("NY", datePtr(t, "2025-01-01"), nil, date(t, "2025-03-01"))
		assert.Nil(t, lc.PreliminaryNoticeDeadline)
	})

	t.Run("first work only", func(t *testing.T) {
		lc := calc.CalculateAt("FL", datePtr(t, "2025-01-01"), nil, date(t, "2025-03-01"))
		require.NotNil(t, lc.PreliminaryNoticeDeadline)
		assert.Equal(t, "2025-02-15", common.FormatDate(*lc.PreliminaryNoticeDeadline))
		assert.Nil(t, lc.LienFilingDeadline)
	})
}

func TestCalculateAt_PassedDeadline(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(DefaultRuleTable())
	lc := calc.CalculateAt("CA", nil, datePtr(t, "2025-01-31"), date(t, "2025-05-04"))

	assert.Equal(t, -3, lc.DaysUntilFilingDeadline)
	assert.Equal(t, WarningRed, lc.WarningLevel)
	assert.True(t, lc.DeadlinePassed())
	assert.Equal(t, FilingPassed, lc.Status())
}

func TestCalculate_UsesInjectedClock(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 17, 30, 0, 0, time.UTC)
	calc := NewCalculator(nil, WithClock(func() time.Time { return now }))

	a := calc.Calculate("CA", datePtr(t, "2025-01-01"), datePtr(t, "2025-01-31"))
	b := calc.Calculate("CA", datePtr(t, "2025-01-01"), datePtr(t, "2025-01-31"))

	assert.Equal(t, a, b)
	assert.Equal(t, 61, a.DaysUntilFilingDeadline)
}

func TestClassifyWarning_Boundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		days int
		want WarningLevel
	}{
		{-100, WarningRed},
		{-1, WarningRed},
		{0, WarningRed},
		{14, WarningRed},
		{15, WarningYellow},
		{30, WarningYellow},
		{31, WarningGreen},
		{365, WarningGreen},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyWarning(tc.days), "days=%d", tc.days)
	}
}

func TestClassifyWarning_MonotonicAsDeadlineApproaches(t *testing.T) {
	t.Parallel()

	prev := ClassifyWarning(400).Severity()
	for days := 399; days >= -60; days-- {
		cur := ClassifyWarning(days).Severity()
		assert.GreaterOrEqual(t, cur, prev, "days=%d", days)
		prev = cur
	}
}

//Personal.AI order the ending
