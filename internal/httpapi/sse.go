package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/repolingo/repolingo/internal/chat"
	"github.com/repolingo/repolingo/internal/persistence"
	"github.com/repolingo/repolingo/internal/reveal"
)

// streamPollInterval is how often the stream checks the engine for a
// longer prefix. The engine paces itself; this only bounds event rate.
const streamPollInterval = 30 * time.Millisecond

type streamEvent struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// handleChatStream replays an assistant message as a reveal stream.
// By default the newest assistant message streams; ?message={id}
// selects an older one. Client disconnect cancels the engine.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request, chatID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	msgs, err := s.chats.History(r.Context(), userID(r), chatID)
	if err != nil {
		writeChatError(w, err)
		return
	}
	msg, ok := pickStreamMessage(msgs, r.URL.Query().Get("message"))
	if !ok {
		writeError(w, http.StatusNotFound, "no assistant message to stream")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	done := make(chan struct{})
	engine := reveal.NewEngine(reveal.WithOnComplete(func() { close(done) }))
	engine.Start(msg.Content)
	defer engine.Cancel()

	send := func(ev streamEvent) bool {
		payload, err := json.Marshal(ev)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	ticker := time.NewTicker(streamPollInterval)
	defer ticker.Stop()

	last := ""
	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			send(streamEvent{Text: msg.Content, Done: true})
			return
		case <-ticker.C:
			prefix := engine.VisiblePrefix()
			if prefix == last {
				continue
			}
			last = prefix
			if !send(streamEvent{Text: prefix}) {
				return
			}
		}
	}
}

// pickStreamMessage selects the message to stream: an explicit id when
// given, otherwise the newest assistant turn.
func pickStreamMessage(msgs []persistence.Message, wantID string) (persistence.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if wantID != "" {
			if msgs[i].ID == wantID {
				return msgs[i], true
			}
			continue
		}
		if msgs[i].Role == chat.RoleAssistant {
			return msgs[i], true
		}
	}
	return persistence.Message{}, false
}
