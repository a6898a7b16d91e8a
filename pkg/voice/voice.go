package voice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingAPIKey   = errors.New("voice provider API key is missing")
	ErrMalformedAPIKey = errors.New("voice provider API key appears malformed")
)

type EventType string

const (
	EventSpeechStart EventType = "speech-start"
	EventSpeechEnd   EventType = "speech-end"
	EventMessage     EventType = "message"
	EventCallStart   EventType = "call-start"
	EventCallEnd     EventType = "call-end"
	EventError       EventType = "error"
)

type Event struct {
	Type       EventType      `json:"type"`
	Role       string         `json:"role,omitempty"`
	Transcript string         `json:"transcript,omitempty"`
	Err        *ProviderError `json:"error,omitempty"`
}

// ProviderError carries whatever the provider put on its error event.
// An empty error object is valid input to Classify.
type ProviderError struct {
	Kind    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Kind
}

type TranscriberConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Language string `json:"language"`
}

type VoiceSettings struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voiceId"`
}

type ModelMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ModelConfig struct {
	Provider    string         `json:"provider"`
	Model       string         `json:"model"`
	Messages    []ModelMessage `json:"messages"`
	Temperature float32        `json:"temperature"`
	MaxTokens   int            `json:"maxTokens"`
}

type AssistantConfig struct {
	Name                  string            `json:"name"`
	FirstMessage          string            `json:"firstMessage"`
	Transcriber           TranscriberConfig `json:"transcriber"`
	Voice                 VoiceSettings     `json:"voice"`
	Model                 ModelConfig       `json:"model"`
	EndCallMessage        string            `json:"endCallMessage"`
	RecordingEnabled      bool              `json:"recordingEnabled"`
	SilenceTimeoutSeconds int               `json:"silenceTimeoutSeconds"`
	MaxDurationSeconds    int               `json:"maxDurationSeconds"`
}

type IVoice interface {
	ValidateKey(ctx context.Context) error
	Start(ctx context.Context, cfg AssistantConfig) error
	Events() <-chan Event
	Stop()
}

type client struct {
	apiKey       string
	wsURL        string
	baseURL      string
	conn         *websocket.Conn
	events       chan Event
	done         chan struct{}
	readDone     chan struct{}
	mu           sync.Mutex
	stopOnce     sync.Once
	stopped      bool
	writeTimeout time.Duration
	log          *logrus.Logger
}

func New(log *logrus.Logger) IVoice {
	return &client{
		apiKey:       os.Getenv("VOICE_PROVIDER_API_KEY"),
		wsURL:        os.Getenv("VOICE_PROVIDER_WS_URL"),
		baseURL:      os.Getenv("VOICE_PROVIDER_BASE_URL"),
		events:       make(chan Event, 64),
		done:         make(chan struct{}),
		writeTimeout: 5 * time.Second,
		log:          log,
	}
}

// ValidateKey is the only network call in this package with a client-side
// deadline: a short probe against the provider before any call is attempted.
func (c *client) ValidateKey(ctx context.Context) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	if len(c.apiKey) < 20 {
		return ErrMalformedAPIKey
	}
	if c.baseURL == "" {
		return nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/v1/account", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return &ProviderError{Kind: "network-error", Message: fmt.Sprintf("failed to reach voice provider: %v", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &ProviderError{Kind: "auth-error", Message: "Unauthorized: Invalid API key"}
	case resp.StatusCode == http.StatusPaymentRequired:
		return &ProviderError{Kind: "billing-error", Message: "Wallet Balance is insufficient. Purchase More Credits."}
	case resp.StatusCode >= 400:
		return &ProviderError{Message: fmt.Sprintf("provider returned status %d", resp.StatusCode)}
	}

	return nil
}

func (c *client) Start(ctx context.Context, cfg AssistantConfig) error {
	if c.wsURL == "" {
		return errors.New("VOICE_PROVIDER_WS_URL not configured")
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	conn, _, err := dialer.DialContext(ctx, c.wsURL, header)
	if err != nil {
		return &ProviderError{Kind: "network-error", Message: fmt.Sprintf("failed to connect to voice provider: %v", err)}
	}

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = conn
	c.mu.Unlock()

	if err := c.writeJSON(map[string]interface{}{
		"type":      "start",
		"assistant": cfg,
	}); err != nil {
		conn.Close()
		return &ProviderError{Kind: "start-method-error", Message: fmt.Sprintf("failed to start call: %v", err)}
	}

	readDone := make(chan struct{})
	c.mu.Lock()
	c.readDone = readDone
	c.mu.Unlock()

	go func() {
		defer close(readDone)
		c.readLoop(conn)
	}()

	return nil
}

func (c *client) Events() <-chan Event {
	return c.events
}

// Stop is idempotent. A best-effort end-of-call frame is sent before the
// connection is torn down, and the event channel is closed once the read
// loop has drained so consumers ranging over Events can exit.
func (c *client) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.stopped = true
		conn := c.conn
		c.conn = nil
		readDone := c.readDone
		c.mu.Unlock()

		if conn != nil {
			deadline := time.Now().Add(c.writeTimeout)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "call ended"), deadline)
			conn.Close()
		}
		close(c.done)

		// The read loop is the only sender; events may close only after
		// it has returned.
		go func() {
			if readDone != nil {
				<-readDone
			}
			close(c.events)
		}()
	})
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errors.New("voice provider connection not established")
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *client) readLoop(conn *websocket.Conn) {
	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			c.mu.Lock()
			stopped := c.stopped
			c.mu.Unlock()
			if stopped {
				return
			}

			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.emit(Event{Type: EventCallEnd})
				return
			}

			c.emit(Event{Type: EventError, Err: &ProviderError{
				Kind:    "network-error",
				Message: fmt.Sprintf("connection to voice provider lost: %v", err),
			}})
			return
		}

		c.emit(ev)
	}
}

// emit blocks rather than drops: transcript entries must arrive in order
// and none may be lost while the session is live.
func (c *client) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}
