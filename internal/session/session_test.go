package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-backend/internal/audits"
	"audit-backend/internal/llm"
)

func sampleResult() audits.AnalysisResult {
	return audits.AnalysisResult{OverallScore: 64, MaturityLevel: audits.MaturityGrowthStage, Industry: "Retail"}
}

func TestHappyPathCycle(t *testing.T) {
	m := New()
	require.Equal(t, PhaseInput, m.Phase())

	ticket, in, err := m.Submit("example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", in.WebsiteURL)
	assert.Equal(t, PhaseProcessing, m.Phase())

	require.NoError(t, m.Succeed(ticket, sampleResult()))
	snap := m.Snapshot()
	assert.Equal(t, PhaseResults, snap.Phase)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 64.0, snap.Result.OverallScore)
	assert.False(t, snap.Unlocked)

	email, err := m.Unlock("  lead@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "lead@example.com", email)
	assert.True(t, m.Snapshot().Unlocked)
}

func TestResetClearsEverything(t *testing.T) {
	m := New()
	ticket, _, err := m.Submit("example.com")
	require.NoError(t, err)
	require.NoError(t, m.Succeed(ticket, sampleResult()))
	_, err = m.Unlock("lead@example.com")
	require.NoError(t, err)

	m.Reset()

	snap := m.Snapshot()
	assert.Equal(t, PhaseInput, snap.Phase)
	assert.Nil(t, snap.Input)
	assert.Nil(t, snap.Result)
	assert.Nil(t, snap.Banner)
	assert.Empty(t, snap.Email)
	assert.False(t, snap.Unlocked)

	// The cycle is re-entrant.
	_, _, err = m.Submit("other.example")
	require.NoError(t, err)
}

func TestFailReturnsToInputWithBanner(t *testing.T) {
	cases := []struct {
		err   error
		class audits.Classification
		title string
	}{
		{llm.NewError(llm.KindQuota, "QUOTA_EXCEEDED: 429", nil), audits.ClassQuota, "System Capacity Reached"},
		{llm.NewError(llm.KindConfig, llm.MissingKeyMessage, nil), audits.ClassAuth, "Configuration Error"},
		{errors.New("socket hang up"), audits.ClassGeneral, "Analysis Failed"},
	}
	for _, tc := range cases {
		m := New()
		ticket, _, err := m.Submit("example.com")
		require.NoError(t, err)

		require.NoError(t, m.Fail(ticket, tc.err))
		snap := m.Snapshot()
		assert.Equal(t, PhaseInput, snap.Phase)
		require.NotNil(t, snap.Banner)
		assert.Equal(t, tc.class, snap.Banner.Class)
		assert.Equal(t, tc.title, snap.Banner.Title)
		assert.Equal(t, tc.err.Error(), snap.Banner.Detail)
		assert.Nil(t, snap.Result)

		m.DismissError()
		assert.Nil(t, m.Snapshot().Banner)
	}
}

func TestQuotaBannerAsksToWait(t *testing.T) {
	b := NewBanner(errors.New("got 429"))
	assert.Contains(t, b.Message, "Please wait about 30 seconds and try again...")
}

func TestSubmitClearsPreviousBanner(t *testing.T) {
	m := New()
	ticket, _, _ := m.Submit("example.com")
	require.NoError(t, m.Fail(ticket, errors.New("boom")))
	require.NotNil(t, m.Snapshot().Banner)

	_, _, err := m.Submit("example.com")
	require.NoError(t, err)
	assert.Nil(t, m.Snapshot().Banner)
}

func TestInvalidTransitions(t *testing.T) {
	m := New()
	assert.ErrorIs(t, m.Succeed(0, sampleResult()), ErrInvalidTransition)
	_, err := m.Unlock("a@b.c")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	ticket, _, err := m.Submit("example.com")
	require.NoError(t, err)

	_, _, err = m.Submit("example.com")
	assert.ErrorIs(t, err, ErrInvalidTransition, "double submit is rejected")

	require.NoError(t, m.Succeed(ticket, sampleResult()))
	assert.ErrorIs(t, m.Fail(ticket, errors.New("late")), ErrInvalidTransition)
}

func TestSubmitRejectsBlankURL(t *testing.T) {
	m := New()
	_, _, err := m.Submit("   ")
	require.Error(t, err)
	assert.Equal(t, PhaseInput, m.Phase())
}

func TestResetMakesInFlightOutcomeStale(t *testing.T) {
	m := New()
	ticket, _, err := m.Submit("example.com")
	require.NoError(t, err)

	m.Reset()
	assert.ErrorIs(t, m.Succeed(ticket, sampleResult()), ErrStaleTicket)
	assert.ErrorIs(t, m.Fail(ticket, errors.New("late")), ErrStaleTicket)

	snap := m.Snapshot()
	assert.Equal(t, PhaseInput, snap.Phase)
	assert.Nil(t, snap.Result)
}

func TestUnlockRequiresAtSign(t *testing.T) {
	m := New()
	ticket, _, _ := m.Submit("example.com")
	require.NoError(t, m.Succeed(ticket, sampleResult()))

	_, err := m.Unlock("not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.False(t, m.Snapshot().Unlocked)
}

func TestSnapshotIsACopy(t *testing.T) {
	m := New()
	ticket, _, _ := m.Submit("example.com")
	require.NoError(t, m.Succeed(ticket, sampleResult()))

	snap := m.Snapshot()
	snap.Result.OverallScore = 1
	assert.Equal(t, 64.0, m.Snapshot().Result.OverallScore)
}
