package session

import "time"

// Status tracks where a session sits in the analysis workflow.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusTranscribing Status = "transcribing"
	StatusAnalyzing    Status = "analyzing"
	StatusSynthesizing Status = "synthesizing"
	StatusReady        Status = "ready"
	StatusFailed       Status = "failed"
)

// Utterance is one diarized speaker turn.
type Utterance struct {
	Start   float64 `json:"start"` // sec
	End     float64 `json:"end"`   // sec
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

// Intent is the caller's primary reason for the call.
type Intent string

const (
	IntentBalanceInquiry          Intent = "BalanceInquiry"
	IntentTransactionHistory      Intent = "TransactionHistory"
	IntentFundTransfer            Intent = "FundTransfer"
	IntentLoanApplication         Intent = "LoanApplication"
	IntentLoanInquiry             Intent = "LoanInquiry"
	IntentCreditCardApplication   Intent = "CreditCardApplication"
	IntentCreditCardLimitIncrease Intent = "CreditCardLimitIncrease"
	IntentReportLostOrStolenCard  Intent = "ReportLostOrStolenCard"
	IntentDisputeTransaction      Intent = "DisputeTransaction"
	IntentAccountOpening          Intent = "AccountOpening"
	IntentAccountClosure          Intent = "AccountClosure"
	IntentUpdatePersonalInfo      Intent = "UpdatePersonalInformation"
	IntentTechnicalSupport        Intent = "TechnicalSupport"
	IntentGeneralInquiry          Intent = "GeneralInquiry"
)

// Intents is the closed category set, in classification-prompt order.
var Intents = []Intent{
	IntentBalanceInquiry,
	IntentTransactionHistory,
	IntentFundTransfer,
	IntentLoanApplication,
	IntentLoanInquiry,
	IntentCreditCardApplication,
	IntentCreditCardLimitIncrease,
	IntentReportLostOrStolenCard,
	IntentDisputeTransaction,
	IntentAccountOpening,
	IntentAccountClosure,
	IntentUpdatePersonalInfo,
	IntentTechnicalSupport,
	IntentGeneralInquiry,
}

// Valid reports whether i is one of the 14 categories.
func (i Intent) Valid() bool {
	for _, v := range Intents {
		if i == v {
			return true
		}
	}
	return false
}

// TimelineEntry is the sentiment verdict for one minute of the call.
type TimelineEntry struct {
	Minute       string  `json:"minute"` // "<n> to <n+1>"
	Label        string  `json:"label"`
	Score        float64 `json:"score"`
	MessageCount int     `json:"message_count"`
}

// SentimentResult holds the per-minute timeline plus its aggregate.
type SentimentResult struct {
	Overall      string          `json:"sentiment_overall"`
	OverallScore float64         `json:"overall_score"`
	Granularity  string          `json:"granularity"`
	Timeline     []TimelineEntry `json:"timeline"`
}

// RootCause is the diagnosed underlying problem. Raw carries the
// unparsed model text when the structured parse failed.
type RootCause struct {
	RootCause string `json:"root_cause"`
	Raw       string `json:"raw,omitempty"`
}

// Interaction actions.
const (
	ActionUserQuery     = "user_query"
	ActionAgentResponse = "agent_response"
)

// Interaction is one append-only audit-log row.
type Interaction struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID string    `gorm:"size:36;index" json:"-"`
	Action    string    `gorm:"size:16" json:"action"`
	Payload   string    `gorm:"type:text" json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the shared mutable record the pipeline stages write into.
// Each stage owns a disjoint set of fields.
type State struct {
	AudioPath      string           `gorm:"size:512" json:"audio_filepath"`
	Transcript     []Utterance      `gorm:"serializer:json;type:text" json:"transcript"`
	IsTranscribed  bool             `json:"is_audio_transcribed"`
	Intent         Intent           `gorm:"size:32" json:"intent_state"`
	Sentiment      *SentimentResult `gorm:"serializer:json;type:text" json:"sentiment_state"`
	RootCause      *RootCause       `gorm:"serializer:json;type:text" json:"root_cause_state"`
	AnalysisReport string           `gorm:"type:text" json:"analysis_report"`
	Status         Status           `gorm:"size:16" json:"status"`
}

// Analyzed reports whether all three parallel analyses have landed.
func (s *State) Analyzed() bool {
	return s.Intent != "" && s.Sentiment != nil && s.RootCause != nil
}

// Session is one analysis session: identity, state, and audit log.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Owner     string    `gorm:"size:64;index" json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	State State `gorm:"embedded" json:"state"`

	History []Interaction `gorm:"foreignKey:SessionID;references:ID" json:"interaction_history"`
}
