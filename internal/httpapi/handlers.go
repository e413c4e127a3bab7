package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/repolingo/repolingo/internal/chat"
	"github.com/repolingo/repolingo/internal/config"
	"github.com/repolingo/repolingo/internal/i18n"
	"github.com/repolingo/repolingo/internal/translate"
	"github.com/repolingo/repolingo/internal/vault"
	"github.com/repolingo/repolingo/pkg/icron"
	"github.com/repolingo/repolingo/pkg/log"
)

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
	SourceLanguage string `json:"sourceLanguage,omitempty"`
}

type translateResponse struct {
	Translated string `json:"translated"`
	Tier       string `json:"tier,omitempty"`
}

// handleTranslate is the single-string endpoint. Its failure contract
// is strict: resolution itself never errors (the pipeline bottoms out
// at the original text), and an unexpected panic yields 500 with an
// empty translation rather than a broken body.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Translate handler panicked: %v", rec)
			writeJSON(w, http.StatusInternalServerError, translateResponse{Translated: ""})
		}
	}()

	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		writeError(w, http.StatusBadRequest, "targetLanguage is required")
		return
	}

	creds, err := s.effectiveCredentials(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	res := s.resolver.Resolve(r.Context(), translate.Request{
		TextOrKey:      req.Text,
		TargetLanguage: req.TargetLanguage,
		SourceLanguage: req.SourceLanguage,
		Freeform:       !s.resolver.Table().IsKey(req.Text),
	}, s.backendsFor(creds))

	writeJSON(w, http.StatusOK, translateResponse{Translated: res.Text, Tier: string(res.Tier)})
}

type translateBatchRequest struct {
	TargetLanguage string            `json:"targetLanguage"`
	Content        map[string]string `json:"content"`
}

func (s *Server) handleTranslateBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req translateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		writeError(w, http.StatusBadRequest, "targetLanguage is required")
		return
	}
	if req.Content == nil {
		req.Content = s.resolver.Table().DefaultStrings()
	}

	creds, err := s.effectiveCredentials(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	got := s.resolver.ResolveBatch(r.Context(), req.TargetLanguage, req.Content, s.backendsFor(creds))
	writeJSON(w, http.StatusOK, map[string]any{"content": got})
}

type languageEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	codes := s.resolver.Table().Languages()
	ret := make([]languageEntry, 0, len(codes))
	for _, code := range codes {
		ret = append(ret, languageEntry{Code: code, Name: i18n.LanguageName(code)})
	}
	writeJSON(w, http.StatusOK, ret)
}

type createChatRequest struct {
	SourceURL string `json:"sourceUrl"`
	Mode      string `json:"mode"`
	Language  string `json:"language"`
}

func (s *Server) handleChats(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		chats, err := s.chats.ListChats(r.Context(), userID(r))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, chats)
	case http.MethodPost:
		var req createChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		created, err := s.chats.CreateChat(r.Context(), userID(r), req.SourceURL, req.Mode, req.Language)
		if err != nil {
			writeChatError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleChatSubroutes dispatches /api/chats/{id}[/messages|/ask|/stream].
func (s *Server) handleChatSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/chats/")
	chatID, sub, _ := strings.Cut(rest, "/")
	if chatID == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch sub {
	case "":
		s.handleChatByID(w, r, chatID)
	case "messages":
		s.handleChatMessages(w, r, chatID)
	case "ask":
		s.handleChatAsk(w, r, chatID)
	case "stream":
		s.handleChatStream(w, r, chatID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleChatByID(w http.ResponseWriter, r *http.Request, chatID string) {
	switch r.Method {
	case http.MethodGet:
		got, err := s.chats.GetChat(r.Context(), userID(r), chatID)
		if err != nil {
			writeChatError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, got)
	case http.MethodDelete:
		if err := s.chats.DeleteChat(r.Context(), userID(r), chatID); err != nil {
			writeChatError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleChatMessages(w http.ResponseWriter, r *http.Request, chatID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	msgs, err := s.chats.History(r.Context(), userID(r), chatID)
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleChatAsk(w http.ResponseWriter, r *http.Request, chatID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	user := userID(r)
	creds, err := s.effectiveCredentials(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	gen, err := chat.NewGenerator(s.providers(), creds)
	if err != nil {
		writeError(w, http.StatusPreconditionFailed, err.Error())
		return
	}

	answer, err := s.chats.Ask(r.Context(), user, chatID, req.Question, gen)
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request) {
	if s.vault == nil {
		writeError(w, http.StatusNotImplemented, "credential vault is not configured")
		return
	}
	user := userID(r)

	switch r.Method {
	case http.MethodGet:
		creds, err := s.vault.Get(r.Context(), user)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, creds.Redacted())
	case http.MethodPut:
		var req vault.CredentialSet
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if req.Provider != "" && req.Provider != vault.ProviderOpenRouter && req.Provider != vault.ProviderGemini {
			writeError(w, http.StatusBadRequest, "unknown provider")
			return
		}

		// Empty fields keep the previously stored keys so the UI can
		// update one credential without re-entering the others.
		existing, err := s.vault.Get(r.Context(), user)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		merged := req.Overlay(existing)
		if err := s.vault.Put(r.Context(), user, merged); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, merged.Redacted())
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type enqueueWarmRequest struct {
	Language string `json:"language"`
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		writeError(w, http.StatusNotImplemented, "warm queue is not configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		resp := map[string]any{"jobs": s.queue.List()}
		if s.warmCron != "" {
			if info, err := icron.GetTriggerInfo(s.warmCron, time.Now()); err == nil {
				resp["next_warm"] = info
			}
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodPost:
		var req enqueueWarmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if strings.TrimSpace(req.Language) == "" {
			writeError(w, http.StatusBadRequest, "language is required")
			return
		}
		job, created := s.queue.Enqueue(req.Language)
		code := http.StatusCreated
		if !created {
			code = http.StatusOK
		}
		writeJSON(w, code, map[string]any{"created": created, "job": job})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotImplemented, "settings store is not configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		settings, err := s.settings.GetRuntimeSettings()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var req config.RuntimeSettings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		saved, err := s.settings.UpdateRuntimeSettings(req)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if s.apply != nil {
			if err := s.apply(saved); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrChatNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chat.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
