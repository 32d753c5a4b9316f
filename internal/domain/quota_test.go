package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y, m, d int) Date {
	return Date{Year: y, Month: time.Month(m), Day: d}
}

func datePtr(y, m, d int) *Date {
	dt := date(y, m, d)
	return &dt
}

func TestEvaluateAIQuota_FreeAccountDeniedAfterLimit(t *testing.T) {
	today := date(2025, 3, 10)
	state := AIUsageState{}

	for i := 0; i < DailyAILimit; i++ {
		decision := EvaluateAIQuota(state, false, today)
		require.True(t, decision.Allowed, "call %d should be allowed", i+1)
		state = state.Record(today)
	}

	decision := EvaluateAIQuota(state, false, today)
	assert.False(t, decision.Allowed)
	n, ok := decision.Remaining.N()
	assert.True(t, ok)
	assert.Equal(t, 0, n)
	assert.Equal(t, DailyAILimit, decision.Used)
}

func TestEvaluateAIQuota_PremiumAlwaysAllowed(t *testing.T) {
	today := date(2025, 3, 10)

	tests := []struct {
		name  string
		state AIUsageState
	}{
		{"never used", AIUsageState{}},
		{"at limit", AIUsageState{UsedToday: DailyAILimit, LastReset: datePtr(2025, 3, 10)}},
		{"far over limit", AIUsageState{UsedToday: 9999, LastReset: datePtr(2025, 3, 10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := EvaluateAIQuota(tt.state, true, today)
			assert.True(t, decision.Allowed)
			assert.True(t, decision.Remaining.IsUnlimited())
		})
	}
}

func TestEvaluateAIQuota_Remaining(t *testing.T) {
	today := date(2025, 3, 10)

	tests := []struct {
		name        string
		state       AIUsageState
		wantAllowed bool
		wantRemain  int
	}{
		{"fresh account", AIUsageState{}, true, 15},
		{"five used today", AIUsageState{UsedToday: 5, LastReset: datePtr(2025, 3, 10)}, true, 10},
		{"fourteen used today", AIUsageState{UsedToday: 14, LastReset: datePtr(2025, 3, 10)}, true, 1},
		{"over limit clamps to zero", AIUsageState{UsedToday: 20, LastReset: datePtr(2025, 3, 10)}, false, 0},
		{"stale by one day", AIUsageState{UsedToday: 15, LastReset: datePtr(2025, 3, 9)}, true, 15},
		{"stale by two days", AIUsageState{UsedToday: 15, LastReset: datePtr(2025, 3, 8)}, true, 15},
		{"stale across year", AIUsageState{UsedToday: 15, LastReset: datePtr(2024, 12, 31)}, true, 15},
		{"reset date ahead of clock still counts", AIUsageState{UsedToday: 12, LastReset: datePtr(2025, 3, 11)}, true, 3},
		{"reset date ahead of clock at limit", AIUsageState{UsedToday: 15, LastReset: datePtr(2025, 3, 11)}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := EvaluateAIQuota(tt.state, false, today)
			assert.Equal(t, tt.wantAllowed, decision.Allowed)
			n, ok := decision.Remaining.N()
			require.True(t, ok)
			assert.Equal(t, tt.wantRemain, n)
		})
	}
}

func TestAIUsageState_Record(t *testing.T) {
	today := date(2025, 3, 10)

	t.Run("same day increments and keeps reset date", func(t *testing.T) {
		state := AIUsageState{UsedToday: 5, LastReset: datePtr(2025, 3, 10)}
		next := state.Record(today)
		assert.Equal(t, 6, next.UsedToday)
		assert.Equal(t, today, *next.LastReset)
	})

	t.Run("stale day resets to one", func(t *testing.T) {
		for _, last := range []*Date{datePtr(2025, 3, 9), datePtr(2025, 3, 8), nil} {
			state := AIUsageState{UsedToday: 15, LastReset: last}
			next := state.Record(today)
			assert.Equal(t, 1, next.UsedToday)
			assert.Equal(t, today, *next.LastReset)
		}
	})

	t.Run("does not mutate receiver", func(t *testing.T) {
		last := datePtr(2025, 3, 9)
		state := AIUsageState{UsedToday: 3, LastReset: last}
		_ = state.Record(today)
		assert.Equal(t, 3, state.UsedToday)
		assert.Equal(t, date(2025, 3, 9), *state.LastReset)
	})
}

func TestAIUsageState_RolloverMonotonic(t *testing.T) {
	// A clock that moved backwards must not rewind the reset date.
	state := AIUsageState{UsedToday: 4, LastReset: datePtr(2025, 3, 10)}
	next := state.Rollover(date(2025, 3, 9))
	assert.Equal(t, state, next)

	again := state.Rollover(date(2025, 3, 10))
	assert.Equal(t, state, again)
}

func TestEvaluateAIQuota_ClockBehindResetDate(t *testing.T) {
	today := date(2025, 3, 10)
	state := AIUsageState{UsedToday: 10, LastReset: datePtr(2025, 3, 11)}

	granted := 0
	for i := 0; i < 40; i++ {
		if !EvaluateAIQuota(state, false, today).Allowed {
			break
		}
		state = state.Record(today)
		granted++
	}

	assert.Equal(t, 5, granted)
	assert.Equal(t, DailyAILimit, state.UsedToday)
	assert.Equal(t, date(2025, 3, 11), *state.LastReset)
}

func TestEvaluateFeatureCap(t *testing.T) {
	tests := []struct {
		name    string
		kind    FeatureKind
		count   int
		premium bool
		want    bool
	}{
		{"document at cap", FeatureDocument, 10, false, false},
		{"document under cap", FeatureDocument, 9, false, true},
		{"document premium", FeatureDocument, 999, true, true},
		{"active goal at cap", FeatureActiveGoal, 3, false, false},
		{"active goal under cap", FeatureActiveGoal, 2, false, true},
		{"active goal premium", FeatureActiveGoal, 50, true, true},
		{"unknown kind uncapped", FeatureKind("habit"), 1000, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateFeatureCap(tt.kind, tt.count, tt.premium))
		})
	}
}

func TestAllowance(t *testing.T) {
	t.Run("limited floors at zero", func(t *testing.T) {
		n, ok := Limited(-3).N()
		assert.True(t, ok)
		assert.Equal(t, 0, n)
	})

	t.Run("consume", func(t *testing.T) {
		n, _ := Limited(2).Consume().N()
		assert.Equal(t, 1, n)
		n, _ = Limited(0).Consume().N()
		assert.Equal(t, 0, n)
		assert.True(t, Unlimited().Consume().IsUnlimited())
	})

	t.Run("json", func(t *testing.T) {
		body, err := json.Marshal(map[string]Allowance{"a": Unlimited(), "b": Limited(7)})
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":null,"b":7}`, string(body))

		var decoded struct {
			A Allowance `json:"a"`
			B Allowance `json:"b"`
		}
		require.NoError(t, json.Unmarshal(body, &decoded))
		assert.True(t, decoded.A.IsUnlimited())
		assert.Equal(t, Limited(7), decoded.B)
	})
}

func TestFeatureCapExceeded_Message(t *testing.T) {
	err := FeatureCapExceeded("document.create", FeatureDocument, 10, 10)
	assert.Equal(t, EFEATURECAP, ErrorCode(err))
	assert.Equal(t, "Document limit reached (10). Upgrade to Premium for unlimited documents.", err.Message)

	detail, ok := QuotaDetail(err)
	require.True(t, ok)
	assert.Equal(t, 10, detail.Limit)

	err = FeatureCapExceeded("goal.create", FeatureActiveGoal, 3, 3)
	assert.Equal(t, "Active goal limit reached (3). Upgrade to Premium for unlimited goals.", err.Message)
}

func TestQuotaExceeded(t *testing.T) {
	err := QuotaExceeded("entitlement.check_ai_quota", 15, 15)
	assert.Equal(t, EQUOTA, ErrorCode(err))
	assert.Contains(t, ErrorMessage(err), "Daily AI limit reached")

	detail, ok := QuotaDetail(err)
	require.True(t, ok)
	assert.Equal(t, "ai_response", detail.Kind)
	assert.Equal(t, 15, detail.Used)
}
