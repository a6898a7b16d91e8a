package openai

import (
	"strings"
	"testing"
)

const validScorerJSON = `{
	"feedback": {
		"rating": {
			"technicalSkills": 8,
			"communication": 7,
			"problemSolving": 9,
			"experience": 6
		},
		"summary": "Strong candidate overall with good depth on system design.",
		"Recommendation": "Hire",
		"RecommendationMsg": "Recommended based on consistent performance."
	}
}`

func TestParseScorerResponse_Valid(t *testing.T) {
	scored, err := parseScorerResponse(validScorerJSON)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if scored.Rating.TechnicalSkills != 8 || scored.Rating.Experience != 6 {
		t.Errorf("ratings parsed wrong: %+v", scored.Rating)
	}
	if scored.Recommendation != "Hire" {
		t.Errorf("expected Hire, got %q", scored.Recommendation)
	}
}

func TestParseScorerResponse_JSONEmbeddedInProse(t *testing.T) {
	content := "Sure! Here is the requested analysis:\n\n" + validScorerJSON + "\n\nLet me know if you need more."

	scored, err := parseScorerResponse(content)
	if err != nil {
		t.Fatalf("parse failed for embedded JSON: %v", err)
	}
	if scored.Rating.ProblemSolving != 9 {
		t.Errorf("ratings parsed wrong: %+v", scored.Rating)
	}
}

func TestParseScorerResponse_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no JSON at all", "I cannot produce feedback right now."},
		{"broken JSON", `{"feedback": {"rating": }`},
		{"missing feedback envelope", `{"rating": {"technicalSkills": 8}}`},
		{
			"rating out of range",
			strings.Replace(validScorerJSON, `"technicalSkills": 8`, `"technicalSkills": 14`, 1),
		},
		{
			"rating missing defaults to zero",
			strings.Replace(validScorerJSON, `"technicalSkills": 8,`, "", 1),
		},
		{
			"empty summary",
			strings.Replace(validScorerJSON, "Strong candidate overall with good depth on system design.", "", 1),
		},
		{
			"unknown recommendation",
			strings.Replace(validScorerJSON, `"Recommendation": "Hire"`, `"Recommendation": "Maybe"`, 1),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseScorerResponse(tc.content); err == nil {
				t.Error("expected parse error, got nil")
			}
		})
	}
}
