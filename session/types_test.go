package session

import "testing"

func TestIntent_Valid(t *testing.T) {
	if len(Intents) != 14 {
		t.Fatalf("category set = %d labels, want 14", len(Intents))
	}
	for _, i := range Intents {
		if !i.Valid() {
			t.Errorf("%s not valid", i)
		}
	}
	if Intent("SomethingElse").Valid() {
		t.Error("unknown label reported valid")
	}
	if Intent("").Valid() {
		t.Error("empty label reported valid")
	}
}

func TestState_Analyzed(t *testing.T) {
	var st State
	if st.Analyzed() {
		t.Error("empty state reported analyzed")
	}
	st.Intent = IntentGeneralInquiry
	st.Sentiment = &SentimentResult{}
	if st.Analyzed() {
		t.Error("analyzed without root cause")
	}
	st.RootCause = &RootCause{RootCause: "x"}
	if !st.Analyzed() {
		t.Error("fully populated state not analyzed")
	}
}
