package local

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dyslexiacare/screening/internal/infra/ai/prompt"
)

// Narrator is the offline ai.Client used when no API key is configured. It
// builds a schema-conformant report straight from the session payload.
type Narrator struct{}

func NewNarrator() *Narrator { return &Narrator{} }

func (Narrator) Narrate(_ context.Context, sessionJSON string) (string, error) {
	var sess struct {
		ID     string `json:"id"`
		Result struct {
			RiskLevel        string `json:"risk_level"`
			ScreeningSummary string `json:"screening_summary"`
		} `json:"result"`
	}
	// Tolerate partial payloads; the report degrades to empty fields.
	_ = json.Unmarshal([]byte(sessionJSON), &sess)

	return prompt.BuildLocalReport(sess.ID, strings.ToLower(sess.Result.RiskLevel), sess.Result.ScreeningSummary)
}
