package prompt

import (
	"encoding/json"
	"fmt"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are an educational specialist experienced in dyslexia screening. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Use lowercase risk values: low, moderate, high.
- You are given a screening session with per-modality results; do not diagnose, only describe indicator patterns and suggest supportive next steps.
- observations is an array of objects; include at least a modality, a finding, and a summary. Keep items concise.
- Never recommend medication or clinical treatment; refer to qualified professionals for assessment.

Schema (example with empty values):
{
  "session_id": "<string>",
  "risk_level": "<low|moderate|high>",
  "observations": [
    {
      "modality": "<text|handwriting|speech>",
      "finding": "<string>",
      "summary": "<string>",
      "recommendation": "<string>"
    }
  ],
  "guidance": "<string>"
}`
}

// GetUserPrompt builds a compact user message around the session payload.
func GetUserPrompt(sessionJSON string) string {
	return fmt.Sprintf("Write the narrative report JSON per schema for this screening session: %s", sessionJSON)
}

// Report is a sample structure that matches the schema used by the system prompt.
type Report struct {
	SessionID    string `json:"session_id"`
	RiskLevel    string `json:"risk_level"`
	Observations []struct {
		Modality       string `json:"modality"`
		Finding        string `json:"finding"`
		Summary        string `json:"summary"`
		Recommendation string `json:"recommendation"`
	} `json:"observations"`
	Guidance string `json:"guidance"`
}

// BuildLocalReport returns a minimal schema-conformant report without calling
// a model, used when no API key is configured.
func BuildLocalReport(sessionID, riskLevel, summary string) (string, error) {
	rep := Report{
		SessionID: sessionID,
		RiskLevel: riskLevel,
		Guidance:  summary,
	}
	b, err := json.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(b), nil
}
