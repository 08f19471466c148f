package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saathi/internal/eligibility"
)

func TestStageTable_Successor(t *testing.T) {
	table := NewStageTable(DefaultStages())

	expected := map[StageID]StageID{
		StageIntroduction:      StagePersonalDetails,
		StagePersonalDetails:   StageLoanPurpose,
		StageLoanPurpose:       StageLoanAmount,
		StageLoanAmount:        StageEmploymentDetails,
		StageEmploymentDetails: StageDocumentUpload,
		StageDocumentUpload:    StageEligibilityCheck,
		StageEligibilityCheck:  StageResult,
		StageResult:            StageEnd,
		StageEnd:               StageEnd,
	}
	for current, want := range expected {
		t.Run(string(current), func(t *testing.T) {
			_, next := table.Successor(current)
			assert.Equal(t, want, next.ID)
		})
	}

	t.Run("unknown stage falls through to end", func(t *testing.T) {
		from, next := table.Successor("somewhere_else")
		assert.Equal(t, StageEnd, next.ID)
		assert.Equal(t, PromptClosing, next.Prompt)
		assert.False(t, from.Evaluates)
	})

	t.Run("walking the table never revisits a stage before end", func(t *testing.T) {
		seen := map[StageID]bool{}
		current := table.First().ID
		for current != StageEnd {
			require.False(t, seen[current], "stage %s visited twice", current)
			seen[current] = true
			_, next := table.Successor(current)
			current = next.ID
		}
		assert.Len(t, seen, len(table.Order())-1)
	})

	t.Run("only eligibility check evaluates", func(t *testing.T) {
		for _, id := range table.Order() {
			stage, ok := table.Lookup(id)
			require.True(t, ok)
			assert.Equal(t, id == StageEligibilityCheck, stage.Evaluates, id)
		}
	})
}

func TestStageTable_DataDriven(t *testing.T) {
	table := NewStageTable([]Stage{
		{ID: "hello", Prompt: "hi", MediaKey: "hello", Next: "bye"},
		{ID: "bye", Prompt: "bye", MediaKey: "bye", Next: StageEnd},
	})

	assert.Equal(t, StageID("hello"), table.First().ID)
	_, next := table.Successor("hello")
	assert.Equal(t, StageID("bye"), next.ID)

	_, next = table.Successor("bye")
	assert.Equal(t, StageEnd, next.ID, "missing end descriptor still terminates")
}

func TestSession_Invariants(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("face reference is set once", func(t *testing.T) {
		s := NewSession("s1", now)
		assert.False(t, s.SetFaceReference(nil))
		assert.True(t, s.SetFaceReference(FaceDescriptor{0.1, 0.2}))
		assert.False(t, s.SetFaceReference(FaceDescriptor{0.9}))
		assert.Equal(t, FaceDescriptor{0.1, 0.2}, s.FaceReference)
	})

	t.Run("verdict is applied once", func(t *testing.T) {
		s := NewSession("s1", now)
		assert.True(t, s.ApplyVerdict(eligibility.Verdict{Status: eligibility.StatusRejected, Reason: "r"}))
		assert.False(t, s.ApplyVerdict(eligibility.Verdict{Status: eligibility.StatusApproved, Reason: "a"}))
		assert.Equal(t, eligibility.StatusRejected, s.LoanStatus)
	})

	t.Run("merge overwrites colliding keys", func(t *testing.T) {
		s := NewSession("s1", now)
		s.Record("income", 1000)
		s.Merge(map[string]any{"income": 25000, "name": "A"})
		assert.Equal(t, map[string]any{"income": 25000, "name": "A"}, s.UserData)
	})

	t.Run("clone is isolated", func(t *testing.T) {
		s := NewSession("s1", now)
		s.Record("a", 1)
		c := s.Clone()
		c.Record("b", 2)
		assert.NotContains(t, s.UserData, "b")
	})
}
