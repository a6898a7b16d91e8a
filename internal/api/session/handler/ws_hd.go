package sessionHandler

import (
	"AIcruiter/internal/api/session"
	sessionService "AIcruiter/internal/api/session/service"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
)

const (
	liveReadTimeout   = 60 * time.Second
	liveWriteTimeout  = 10 * time.Second
	heartbeatInterval = time.Minute
)

// handleLiveSession is the bidirectional channel for one candidate's browser:
// binary frames carry camera JPEGs for proctoring, text frames carry control
// messages (visibility, microphone status, cancel, retry). State changes are
// pushed back as they happen.
func (h *SessionHandler) handleLiveSession(c *websocket.Conn) {
	sessionID := c.Params("session_id")

	sess, err := h.sessionService.Attach(sessionID)
	if err != nil {
		_ = c.WriteJSON(map[string]string{"error": "session not found"})
		_ = c.Close()
		return
	}

	h.log.WithField("session_id", sessionID).Info("Live session websocket connected")
	defer h.log.WithField("session_id", sessionID).Info("Live session websocket disconnected")

	var writeMu sync.Mutex
	writeJSON := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := c.SetWriteDeadline(time.Now().Add(liveWriteTimeout)); err != nil {
			return err
		}
		return c.WriteJSON(v)
	}

	sess.SetNotifier(func(msg session.ServerMessage) {
		if err := writeJSON(msg); err != nil {
			h.log.WithField("session_id", sessionID).Warn("Failed to push session state")
		}
	})
	defer sess.SetNotifier(nil)

	// The browser going away mid-interview abandons it: every device loop
	// and the provider call must be released on this path too.
	defer sess.Teardown("Interview cancelled by user.")

	if err := writeJSON(session.ServerMessage{Type: "state", Snapshot: sess.Snapshot()}); err != nil {
		return
	}

	c.SetPingHandler(func(data string) error {
		return c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second))
	})

	// While the connection is open the candidate holds their registry slot.
	heartbeatDone := make(chan struct{})
	defer close(heartbeatDone)
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-heartbeatDone:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := h.sessionService.Heartbeat(ctx, sessionID); err != nil {
					h.log.WithField("session_id", sessionID).Warnf("Session heartbeat failed: %v", err)
				}
				cancel()
			}
		}
	}()

	for {
		if err := c.SetReadDeadline(time.Now().Add(liveReadTimeout)); err != nil {
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithField("session_id", sessionID).Warnf("Live session websocket error: %v", err)
			}
			break
		}

		switch messageType {
		case websocket.BinaryMessage:
			if err := h.utils.ValidateFrame(message); err != nil {
				continue
			}
			sess.SubmitFrame(message)

		case websocket.TextMessage:
			var msg session.ClientMessage
			if err := jsoniter.Unmarshal(message, &msg); err != nil {
				continue
			}
			h.dispatchClientMessage(sess, msg)
		}
	}
}

func (h *SessionHandler) dispatchClientMessage(sess *sessionService.Session, msg session.ClientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch msg.Type {
	case "mic_status":
		sess.HandleMicStatus(ctx, msg.MicGranted)
	case "visibility":
		sess.HandleVisibility(msg.Hidden)
	case "cancel":
		if msg.Confirm {
			_ = sess.Cancel(true)
		}
	case "retry":
		_ = sess.Retry(ctx)
	}
}
