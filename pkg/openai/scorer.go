package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const feedbackPrompt = `You are an expert technical interviewer analyzing an interview conversation. Please provide comprehensive feedback based on the following interview conversation:

{{conversation}}

EVALUATION CRITERIA:
Analyze the candidate's performance across these key areas:

1. Technical Skills (1-10): Assess knowledge depth, accuracy of technical responses, problem-solving approach, and understanding of concepts.
2. Communication (1-10): Evaluate clarity of expression, ability to explain complex topics, listening skills, and overall articulation.
3. Problem Solving (1-10): Rate logical thinking process, creativity in solutions, approach to challenges, and analytical skills.
4. Experience (1-10): Consider relevant background, practical knowledge application, past project discussion, and industry understanding.

PERFORMANCE SUMMARY:
Write a detailed 4-5 sentence summary covering overall performance highlights, specific strengths, areas for improvement, and notable responses.

RECOMMENDATION:
Provide one of: "Hire", "Further Review", or "Not Recommended", plus a detailed 2-3 sentence message explaining the decision.

IMPORTANT: Return response in valid JSON format only:

{
    "feedback": {
        "rating": {
            "technicalSkills": [score 1-10],
            "communication": [score 1-10],
            "problemSolving": [score 1-10],
            "experience": [score 1-10]
        },
        "summary": "[Detailed 4-5 sentence performance summary]",
        "Recommendation": "[Hire/Further Review/Not Recommended]",
        "RecommendationMsg": "[Detailed 2-3 sentence recommendation message]"
    }
}`

// ScoredFeedback is the wire shape the remote scorer must return.
// Any missing or out-of-range field makes the whole response unusable.
type ScoredFeedback struct {
	Rating struct {
		TechnicalSkills int `json:"technicalSkills"`
		Communication   int `json:"communication"`
		ProblemSolving  int `json:"problemSolving"`
		Experience      int `json:"experience"`
	} `json:"rating"`
	Summary           string `json:"summary"`
	Recommendation    string `json:"Recommendation"`
	RecommendationMsg string `json:"RecommendationMsg"`
}

type IScorer interface {
	ScoreConversation(ctx context.Context, conversation string) (*ScoredFeedback, error)
}

type scorerService struct {
	client *openai.Client
	model  string
}

func NewScorer() IScorer {
	apiKey := os.Getenv("SCORER_API_KEY")
	baseURL := os.Getenv("SCORER_BASE_URL")
	model := os.Getenv("SCORER_MODEL")

	if model == "" {
		model = "meta-llama/llama-3.1-8b-instruct:free"
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &scorerService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// ScoreConversation submits the transcript to the remote scorer. There is
// deliberately no client-side deadline here: a slow call is allowed to fail
// through the provider's own timeout, and the caller falls back locally on
// any error.
func (s *scorerService) ScoreConversation(ctx context.Context, conversation string) (*ScoredFeedback, error) {
	prompt := strings.Replace(feedbackPrompt, "{{conversation}}", conversation, 1)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.7,
			MaxTokens:   1000,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("scorer API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from scorer")
	}

	feedback, err := parseScorerResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return feedback, nil
}

func parseScorerResponse(content string) (*ScoredFeedback, error) {
	jsonStart := strings.Index(content, "{")
	jsonEnd := strings.LastIndex(content, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("no JSON found in scorer response")
	}

	var envelope struct {
		Feedback *ScoredFeedback `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(content[jsonStart:jsonEnd+1]), &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse scorer response: %w", err)
	}

	if envelope.Feedback == nil {
		return nil, fmt.Errorf("scorer response missing feedback object")
	}

	return envelope.Feedback, validateScoredFeedback(envelope.Feedback)
}

func validateScoredFeedback(f *ScoredFeedback) error {
	ratings := []int{
		f.Rating.TechnicalSkills,
		f.Rating.Communication,
		f.Rating.ProblemSolving,
		f.Rating.Experience,
	}
	for _, r := range ratings {
		if r < 1 || r > 10 {
			return fmt.Errorf("rating %d outside valid range", r)
		}
	}

	if f.Summary == "" {
		return fmt.Errorf("scorer response missing summary")
	}

	switch f.Recommendation {
	case "Hire", "Further Review", "Not Recommended":
	default:
		return fmt.Errorf("invalid recommendation %q", f.Recommendation)
	}

	return nil
}
