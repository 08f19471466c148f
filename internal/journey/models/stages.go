package models

import "saathi/internal/eligibility"

// StageID names a step in the guided journey.
type StageID string

const (
	StageIntroduction      StageID = "introduction"
	StagePersonalDetails   StageID = "personal_details"
	StageLoanPurpose       StageID = "loan_purpose"
	StageLoanAmount        StageID = "loan_amount"
	StageEmploymentDetails StageID = "employment_details"
	StageDocumentUpload    StageID = "document_upload"
	StageEligibilityCheck  StageID = "eligibility_check"
	StageResult            StageID = "result"
	StageEnd               StageID = "end"
)

// Stage describes how a stage is presented and where it leads.
// Prompt and MediaKey are what the applicant sees on arriving at ID.
type Stage struct {
	ID       StageID
	Prompt   string
	MediaKey string
	Next     StageID
	// Evaluates marks the stage whose exit computes the eligibility verdict;
	// arriving at Next then uses the verdict's reason and result media.
	Evaluates bool
}

const (
	PromptIntroduction = "Welcome to Loan Saathi. Let's get started with your loan application."
	PromptClosing      = "Thank you for using our Loan Saathi. Is there anything else I can help you with?"
)

// StageTable is the ordered journey definition.
type StageTable struct {
	order []StageID
	byID  map[StageID]Stage
}

// NewStageTable indexes an ordered descriptor list.
func NewStageTable(stages []Stage) *StageTable {
	t := &StageTable{byID: make(map[StageID]Stage, len(stages))}
	for _, s := range stages {
		t.order = append(t.order, s.ID)
		t.byID[s.ID] = s
	}
	return t
}

// DefaultStages is the loan application journey.
func DefaultStages() []Stage {
	return []Stage{
		{ID: StageIntroduction, Prompt: PromptIntroduction, MediaKey: "introduction", Next: StagePersonalDetails},
		{ID: StagePersonalDetails, Prompt: "Please tell me your full name, age, and contact details.", MediaKey: "personal_details", Next: StageLoanPurpose},
		{ID: StageLoanPurpose, Prompt: "What type of loan are you looking for and what's the purpose?", MediaKey: "loan_purpose", Next: StageLoanAmount},
		{ID: StageLoanAmount, Prompt: "How much loan amount are you looking for and what repayment period would you prefer?", MediaKey: "loan_amount", Next: StageEmploymentDetails},
		{ID: StageEmploymentDetails, Prompt: "Please share your employment details and monthly income.", MediaKey: "employment", Next: StageDocumentUpload},
		{ID: StageDocumentUpload, Prompt: "Now I'll need to verify your identity and income. Please upload your ID proof and income documents.", MediaKey: "documents", Next: StageEligibilityCheck},
		{ID: StageEligibilityCheck, Prompt: "Thank you for the documents. Let me check your loan eligibility.", MediaKey: "introduction", Next: StageResult, Evaluates: true},
		{ID: StageResult, MediaKey: "result", Next: StageEnd},
		{ID: StageEnd, Prompt: PromptClosing, MediaKey: "introduction", Next: StageEnd},
	}
}

// Lookup returns the descriptor for id.
func (t *StageTable) Lookup(id StageID) (Stage, bool) {
	s, ok := t.byID[id]
	return s, ok
}

// First is the stage a new journey starts at.
func (t *StageTable) First() Stage {
	return t.byID[t.order[0]]
}

// Successor returns the stage after current. Unknown stages lead to the end
// stage, which is its own successor.
func (t *StageTable) Successor(current StageID) (from Stage, next Stage) {
	from, ok := t.byID[current]
	if !ok {
		return Stage{ID: current, Next: StageEnd}, t.terminal()
	}
	next, ok = t.byID[from.Next]
	if !ok {
		return from, t.terminal()
	}
	return from, next
}

func (t *StageTable) terminal() Stage {
	if s, ok := t.byID[StageEnd]; ok {
		return s
	}
	return Stage{ID: StageEnd, Prompt: PromptClosing, MediaKey: "introduction", Next: StageEnd}
}

// Order returns the stage IDs in journey order.
func (t *StageTable) Order() []StageID {
	return append([]StageID(nil), t.order...)
}

// ResultMediaKey is the media key for a verdict branch.
func ResultMediaKey(status eligibility.Status) string {
	return "result_" + string(status)
}
