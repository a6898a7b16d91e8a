package feedbackService

import (
	"AIcruiter/internal/api/feedback"
	"AIcruiter/internal/entity"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
)

// ScoringConfig carries the heuristic scorer's constants. The defaults are
// the documented behavior; they are configurable but any override must keep
// the monotonicity: more matches and longer transcripts raise scores, more
// violations lower them.
type ScoringConfig struct {
	BaseScore float64

	TechWeight    float64
	CommWeight    float64
	ProblemWeight float64
	ExpWeight     float64

	LengthScaleTech    float64
	AvgResponseScale   float64
	ResponseCountScale float64
	LengthScaleExp     float64

	// Expected candidate responses per configured question; drives the
	// completion percentage.
	ResponsesPerQuestion int

	TabSwitchPenalty   float64
	ObjectPenalty      float64
	MinIntegrityFactor float64

	ShortTranscriptChars  int
	ShortTranscriptFactor float64

	TechnicalKeywords      []string
	CommunicationKeywords  []string
	ProblemSolvingKeywords []string
	ExperienceKeywords     []string
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BaseScore: 4,

		TechWeight:    0.8,
		CommWeight:    0.7,
		ProblemWeight: 0.9,
		ExpWeight:     0.8,

		LengthScaleTech:    1500,
		AvgResponseScale:   150,
		ResponseCountScale: 6,
		LengthScaleExp:     1200,

		ResponsesPerQuestion: 1,

		TabSwitchPenalty:   2,
		ObjectPenalty:      1.5,
		MinIntegrityFactor: 0.3,

		ShortTranscriptChars:  500,
		ShortTranscriptFactor: 0.7,

		TechnicalKeywords: []string{
			"algorithm", "database", "api", "framework", "code", "programming",
			"sql", "javascript", "python", "react", "node", "git", "testing", "debugging",
		},
		CommunicationKeywords: []string{
			"explain", "describe", "example", "experience", "project", "team",
			"collaboration", "presentation",
		},
		ProblemSolvingKeywords: []string{
			"solve", "approach", "strategy", "solution", "challenge", "optimize",
			"improve", "analyze",
		},
		ExperienceKeywords: []string{
			"worked", "developed", "built", "managed", "led", "implemented",
			"designed", "years",
		},
	}
}

// HeuristicScorer is the deterministic local fallback: identical transcript,
// violation counts, question count and seed always produce identical output.
type HeuristicScorer struct {
	cfg ScoringConfig

	mu  sync.Mutex
	rng *rand.Rand
}

func NewHeuristicScorer(cfg ScoringConfig, seed int64) *HeuristicScorer {
	return &HeuristicScorer{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

type heuristicAnalysis struct {
	techMatches        int
	commMatches        int
	problemMatches     int
	expMatches         int
	conversationLength int
	responseCount      int
	candidateResponses int
}

// Score runs the documented fallback formula over the transcript and
// violation counts.
func (h *HeuristicScorer) Score(req feedback.GenerateRequest) entity.FeedbackResult {
	conversation := Conversation(req.Transcript)
	analysis := h.analyze(conversation, req.Transcript)

	expected := req.QuestionCount * h.cfg.ResponsesPerQuestion
	if expected < 1 {
		expected = 1
	}
	completion := float64(analysis.candidateResponses) / float64(expected) * 100
	if completion > 100 {
		completion = 100
	}

	penalty := completionPenalty(completion)
	if analysis.conversationLength < h.cfg.ShortTranscriptChars {
		penalty *= h.cfg.ShortTranscriptFactor
	}

	avgResponseLength := float64(analysis.conversationLength) / math.Max(float64(analysis.responseCount), 1)

	raw := [4]float64{
		h.cfg.BaseScore + float64(analysis.techMatches)*h.cfg.TechWeight + float64(analysis.conversationLength)/h.cfg.LengthScaleTech,
		h.cfg.BaseScore + float64(analysis.commMatches)*h.cfg.CommWeight + avgResponseLength/h.cfg.AvgResponseScale,
		h.cfg.BaseScore + float64(analysis.problemMatches)*h.cfg.ProblemWeight + float64(analysis.responseCount)/h.cfg.ResponseCountScale,
		h.cfg.BaseScore + float64(analysis.expMatches)*h.cfg.ExpWeight + float64(analysis.conversationLength)/h.cfg.LengthScaleExp,
	}

	tabSwitches := req.ViolationCounts[entity.ViolationTabSwitch]
	objectViolations := 0
	for kind, count := range req.ViolationCounts {
		if kind != entity.ViolationTabSwitch {
			objectViolations += count
		}
	}

	integrityScore := 10 - h.cfg.TabSwitchPenalty*float64(tabSwitches) - h.cfg.ObjectPenalty*float64(objectViolations)
	if integrityScore < 0 {
		integrityScore = 0
	}

	integrityFactor := 1.0
	if tabSwitches+objectViolations > 0 {
		integrityFactor = math.Max(h.cfg.MinIntegrityFactor, integrityScore/10)
	}

	var scores [4]int
	h.mu.Lock()
	for i, r := range raw {
		score := clampScore(int(math.Round(r * penalty * integrityFactor)))
		score = clampScore(score + h.rng.Intn(3) - 1)
		scores[i] = score
	}
	h.mu.Unlock()

	ratings := entity.Ratings{
		TechnicalSkills: scores[0],
		Communication:   scores[1],
		ProblemSolving:  scores[2],
		Experience:      scores[3],
	}

	recommendation, recommendationMsg := recommend(ratings.Mean(), completion, analysis.candidateResponses, req.QuestionCount)

	violations := make(map[entity.ViolationKind]int, len(req.ViolationCounts))
	for k, v := range req.ViolationCounts {
		violations[k] = v
	}

	return entity.FeedbackResult{
		Ratings:               ratings,
		Summary:               buildSummary(completion, ratings, analysis),
		Recommendation:        recommendation,
		RecommendationMessage: recommendationMsg,
		CompletionPercentage:  completion,
		IntegrityViolations:   violations,
		IntegrityScore:        integrityScore,
		Source:                "heuristic",
	}
}

func (h *HeuristicScorer) analyze(conversation string, transcript []entity.TranscriptEntry) heuristicAnalysis {
	lower := strings.ToLower(conversation)

	candidateResponses := 0
	for _, e := range transcript {
		role := strings.ToLower(e.Role)
		if role == "user" || role == "candidate" {
			candidateResponses++
		}
	}

	return heuristicAnalysis{
		techMatches:        countMatches(lower, h.cfg.TechnicalKeywords),
		commMatches:        countMatches(lower, h.cfg.CommunicationKeywords),
		problemMatches:     countMatches(lower, h.cfg.ProblemSolvingKeywords),
		expMatches:         countMatches(lower, h.cfg.ExperienceKeywords),
		conversationLength: len(conversation),
		responseCount:      len(transcript),
		candidateResponses: candidateResponses,
	}
}

func countMatches(lower string, keywords []string) int {
	matches := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	return matches
}

// completionPenalty maps the completion percentage to the multiplier applied
// to every raw sub-score. Completion below 50% always penalizes.
func completionPenalty(completion float64) float64 {
	switch {
	case completion >= 75:
		return 1.0
	case completion >= 50:
		return 0.85
	case completion >= 30:
		return 0.6
	default:
		return 0.4
	}
}

func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

func recommend(mean, completion float64, candidateResponses, questionCount int) (entity.Recommendation, string) {
	switch {
	case completion < 50:
		return entity.RecommendationNotRecommended, fmt.Sprintf(
			"Interview was incomplete with limited engagement (%d responses to %d questions). Candidate needs to demonstrate better commitment and communication skills before being considered for this role.",
			candidateResponses, questionCount)
	case mean >= 8 && completion >= 80:
		return entity.RecommendationHire,
			"Strong candidate with excellent performance across key areas. Demonstrates the skills and experience needed to excel in this role. Highly recommended for hire."
	case mean >= 6.5 && completion >= 70:
		return entity.RecommendationHire,
			"Good candidate with solid performance in most areas. Shows potential for growth and would be a valuable addition to the team with proper onboarding."
	case mean >= 5 && completion >= 60:
		return entity.RecommendationFurtherReview,
			"Candidate shows potential but has areas that need development. Recommend additional technical assessment or interview to better evaluate fit for the role."
	default:
		return entity.RecommendationNotRecommended, fmt.Sprintf(
			"While the candidate has some positive qualities, the overall performance (completion rate: %.0f%%) indicates they need more experience and development before being ready for this position.",
			completion)
	}
}

// buildSummary concatenates template sentences chosen by the bracket each
// signal falls into, so the text varies with the input.
func buildSummary(completion float64, scores entity.Ratings, analysis heuristicAnalysis) string {
	var b strings.Builder

	switch {
	case completion < 25:
		b.WriteString("The candidate showed minimal engagement during the interview, providing very limited responses. ")
	case completion < 50:
		b.WriteString("The candidate had limited participation in the interview process, answering only some of the questions asked. ")
	case completion < 75:
		b.WriteString("The candidate participated moderately in the interview, though some questions received incomplete responses. ")
	default:
		b.WriteString("The candidate actively participated throughout the interview with comprehensive responses. ")
	}

	switch {
	case scores.TechnicalSkills >= 7 && analysis.techMatches >= 5:
		b.WriteString("Demonstrated strong technical expertise, discussing multiple technologies and concepts with confidence. ")
	case scores.TechnicalSkills >= 7:
		b.WriteString("Showed solid technical understanding with good grasp of fundamental concepts. ")
	case scores.TechnicalSkills >= 4:
		b.WriteString("Displayed basic technical knowledge, though some areas could benefit from deeper exploration. ")
	default:
		b.WriteString("Limited technical expertise was evident, indicating need for significant skill development. ")
	}

	switch {
	case analysis.conversationLength > 2000 && analysis.candidateResponses >= 6:
		b.WriteString("The interview featured detailed discussions with comprehensive responses, indicating strong communication abilities. ")
	case analysis.conversationLength > 1000 && analysis.candidateResponses >= 4:
		b.WriteString("Communication was adequate with reasonable detail in responses. ")
	case analysis.candidateResponses >= 2:
		b.WriteString("Responses were brief and could benefit from more detailed explanations. ")
	default:
		b.WriteString("Very limited communication with minimal responses provided throughout the interview. ")
	}

	switch {
	case analysis.problemMatches >= 3 && analysis.candidateResponses >= 4:
		b.WriteString("The candidate demonstrated analytical thinking and problem-solving approach throughout the discussion. ")
	case analysis.problemMatches >= 1 && analysis.candidateResponses >= 2:
		b.WriteString("Some problem-solving capabilities were evident, though more systematic thinking could be beneficial. ")
	default:
		b.WriteString("Limited evidence of structured problem-solving approach due to minimal engagement in the interview process. ")
	}

	switch {
	case analysis.expMatches >= 4 && analysis.candidateResponses >= 4:
		b.WriteString("Substantial relevant experience was evident through detailed project discussions and practical examples.")
	case analysis.expMatches >= 2 && analysis.candidateResponses >= 2:
		b.WriteString("Some relevant experience was demonstrated, though additional exposure would strengthen the profile.")
	default:
		b.WriteString("Limited practical experience was evident, possibly due to insufficient opportunity to showcase skills during the brief interview engagement.")
	}

	return b.String()
}
