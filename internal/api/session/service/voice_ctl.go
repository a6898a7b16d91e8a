package sessionService

import (
	"AIcruiter/internal/entity"
	"AIcruiter/pkg/voice"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type VoiceState uint8

const (
	VoiceUninitialized VoiceState = iota
	VoiceValidatingKey
	VoiceRequestingMicrophone
	VoiceStartingCall
	VoiceActive
	VoiceEnded
)

var voiceStateMap = map[VoiceState]string{
	VoiceUninitialized:        "uninitialized",
	VoiceValidatingKey:        "validating-key",
	VoiceRequestingMicrophone: "requesting-microphone",
	VoiceStartingCall:         "starting-call",
	VoiceActive:               "active",
	VoiceEnded:                "ended",
}

func (s VoiceState) String() string {
	return voiceStateMap[s]
}

// VoiceController owns the provider call lifecycle and pumps provider events
// into a single sink, so the session reducer sees them in arrival order.
type VoiceController struct {
	log    *logrus.Logger
	client voice.IVoice

	mu    sync.Mutex
	state VoiceState

	sink func(ev voice.Event)

	pumpOnce sync.Once
	stopOnce sync.Once
}

func NewVoiceController(log *logrus.Logger, client voice.IVoice, sink func(ev voice.Event)) *VoiceController {
	return &VoiceController{
		log:    log,
		client: client,
		state:  VoiceUninitialized,
		sink:   sink,
	}
}

func (v *VoiceController) State() VoiceState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *VoiceController) setState(s VoiceState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == VoiceEnded {
		return
	}
	v.state = s
}

// ValidateKey runs the pre-flight credential check. Failure is fatal and
// never retried automatically.
func (v *VoiceController) ValidateKey(ctx context.Context) error {
	v.setState(VoiceValidatingKey)

	if err := v.client.ValidateKey(ctx); err != nil {
		v.setState(VoiceEnded)
		return err
	}

	v.setState(VoiceRequestingMicrophone)
	return nil
}

// StartCall submits the assistant configuration once microphone access has
// been granted, then starts pumping provider events into the sink.
func (v *VoiceController) StartCall(ctx context.Context, cfg voice.AssistantConfig) error {
	v.mu.Lock()
	if v.state == VoiceEnded {
		v.mu.Unlock()
		return nil
	}
	if v.state != VoiceRequestingMicrophone {
		state := v.state
		v.mu.Unlock()
		return fmt.Errorf("cannot start call from state %s", state)
	}
	v.state = VoiceStartingCall
	v.mu.Unlock()

	if err := v.client.Start(ctx, cfg); err != nil {
		// Back to the pre-call state so a manual retry can attempt again.
		v.setState(VoiceRequestingMicrophone)
		return err
	}

	v.setState(VoiceActive)
	v.pumpOnce.Do(func() {
		go v.pump()
	})
	return nil
}

// ResetForRetry returns an errored call to the pre-call state so a manual
// retry can dial again. Only a starting or active call can be reset.
func (v *VoiceController) ResetForRetry() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != VoiceStartingCall && v.state != VoiceActive {
		return
	}
	v.state = VoiceRequestingMicrophone
}

// Stop terminates the provider call. Idempotent: stopping an already stopped
// controller is a no-op.
func (v *VoiceController) Stop() {
	v.stopOnce.Do(func() {
		v.mu.Lock()
		v.state = VoiceEnded
		v.mu.Unlock()
		v.client.Stop()
	})
}

func (v *VoiceController) pump() {
	for ev := range v.client.Events() {
		v.sink(ev)
	}
}

// BuildAssistantConfig assembles the voice provider start configuration. The
// system prompt embeds every configured question in order and instructs the
// agent to ask them one at a time.
func BuildAssistantConfig(jobPosition, candidateName string, questions entity.QuestionList) voice.AssistantConfig {
	if jobPosition == "" {
		jobPosition = "Software Developer"
	}
	if candidateName == "" {
		candidateName = "there"
	}

	questionLines := make([]string, 0, len(questions))
	firstQuestion := "Tell me about yourself."
	for i, q := range questions {
		questionLines = append(questionLines, fmt.Sprintf("%d. %s", i+1, q.Question))
		if i == 0 {
			firstQuestion = q.Question
		}
	}

	systemPrompt := fmt.Sprintf(`You are an AI interviewer conducting a professional interview for the position of %s.

IMPORTANT: You MUST start the conversation immediately by asking the first question. Do not wait for the candidate to speak first.

Your interview questions are:
%s

Interview Process:
1. Start with a brief greeting and immediately ask the first question
2. Listen to the candidate's response
3. Provide brief encouraging feedback ("Great answer!", "That's interesting", "Tell me more")
4. Move to the next question
5. Ask follow-up questions when appropriate
6. After covering the main questions, wrap up the interview

Guidelines:
- Keep responses short and conversational
- Be encouraging and professional
- Ask one question at a time
- Wait for responses before continuing
- Provide feedback on answers
- Keep the interview flowing naturally

Start the interview now by greeting the candidate and asking the first question immediately.`,
		jobPosition, strings.Join(questionLines, "\n"))

	return voice.AssistantConfig{
		Name: "AI Interviewer",
		FirstMessage: fmt.Sprintf(
			"Hello %s! Welcome to your %s interview. I'm excited to learn more about you. Let's get started with our first question: %s",
			candidateName, jobPosition, firstQuestion),
		Transcriber: voice.TranscriberConfig{
			Provider: "deepgram",
			Model:    "nova-2",
			Language: "en-US",
		},
		Voice: voice.VoiceSettings{
			Provider: "playht",
			VoiceID:  "jennifer",
		},
		Model: voice.ModelConfig{
			Provider: "openai",
			Model:    "gpt-4",
			Messages: []voice.ModelMessage{
				{Role: "system", Content: systemPrompt},
			},
			Temperature: 0.7,
			MaxTokens:   250,
		},
		EndCallMessage:        "Thank you for your time! The interview has been completed. Good luck!",
		RecordingEnabled:      false,
		SilenceTimeoutSeconds: 30,
		MaxDurationSeconds:    1800,
	}
}
