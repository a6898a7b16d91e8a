package detector

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Prediction is one detection from the object-detection model service:
// a COCO-style class label and a confidence score.
type Prediction struct {
	Class string  `json:"class"`
	Score float64 `json:"score"`
}

type IDetector interface {
	Load() error
	Detect(frame []byte) ([]Prediction, error)
	IsLoaded() bool
	Close() error
}

type detectorClient struct {
	conn         *websocket.Conn
	mu           sync.Mutex
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
	log          *logrus.Logger
}

func New(log *logrus.Logger) IDetector {
	return &detectorClient{
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
		log:          log,
	}
}

// Load connects to the detection model service. It is called once before
// monitoring starts; a failure here is fatal for the session and is not
// retried automatically.
func (c *detectorClient) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	url := os.Getenv("DETECTOR_WS_URL")
	if url == "" {
		return fmt.Errorf("DETECTOR_WS_URL not configured")
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to detection service at %s: %w", url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
	})

	c.conn = conn
	go c.keepAlive()

	c.log.WithFields(logrus.Fields{
		"url": url,
	}).Info("Connected to detection model service")

	return nil
}

func (c *detectorClient) IsLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Detect submits a single camera frame and returns the model's predictions.
// Errors here are transient from the caller's point of view: the proctoring
// loop logs them and continues on the next tick.
func (c *detectorClient) Detect(frame []byte) ([]Prediction, error) {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("detection model not loaded")
	}

	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		c.conn = nil
		conn.Close()
		c.mu.Unlock()
		return nil, fmt.Errorf("error sending frame: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	c.mu.Unlock()

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.mu.Lock()
		c.conn = nil
		conn.Close()
		c.mu.Unlock()
		return nil, fmt.Errorf("error reading detection result: %w", err)
	}

	c.mu.Lock()
	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})
	c.mu.Unlock()

	var result struct {
		Predictions []Prediction `json:"predictions"`
	}
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling detection result: %w", err)
	}

	return result.Predictions, nil
}

func (c *detectorClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}

	return nil
}

func (c *detectorClient) keepAlive() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		conn := c.conn
		if conn == nil {
			c.mu.Unlock()
			return
		}

		if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout)); err != nil {
			c.log.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Detection service ping failed, marking connection as dead")
			c.conn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}

		c.mu.Unlock()
	}
}
