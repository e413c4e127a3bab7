package chat

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/repolingo/repolingo/internal/githubsrc"
	"github.com/repolingo/repolingo/internal/i18n"
	"github.com/repolingo/repolingo/internal/persistence"
	"github.com/repolingo/repolingo/pkg/log"
)

// maxSourceChars caps how much fetched source lands in the prompt.
const maxSourceChars = 48000

// maxHistoryTurns bounds how much conversation history the prompt carries.
const maxHistoryTurns = 20

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Store is the persistence surface the service needs.
type Store interface {
	CreateChat(ctx context.Context, chat persistence.Chat) error
	GetChat(ctx context.Context, chatID string) (persistence.Chat, bool, error)
	ListChats(ctx context.Context, userID string) ([]persistence.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error
	AppendMessage(ctx context.Context, msg persistence.Message) error
	ListMessages(ctx context.Context, chatID string) ([]persistence.Message, error)
}

type Service struct {
	store   Store
	fetcher githubsrc.Fetcher
}

func NewService(store Store, fetcher githubsrc.Fetcher) *Service {
	return &Service{
		store:   store,
		fetcher: fetcher,
	}
}

// CreateChat validates the source URL and mode and persists a new chat.
func (s *Service) CreateChat(ctx context.Context, userID, sourceURL, modeStr, lang string) (persistence.Chat, error) {
	if userID == "" {
		return persistence.Chat{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	res, err := githubsrc.ParseURL(sourceURL)
	if err != nil {
		return persistence.Chat{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	mode, err := ParseMode(modeStr)
	if err != nil {
		return persistence.Chat{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if lang == "" {
		lang = i18n.DefaultLanguage
	}

	now := time.Now().UTC()
	chat := persistence.Chat{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     chatTitle(res),
		Mode:      string(mode),
		SourceURL: res.String(),
		Language:  lang,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateChat(ctx, chat); err != nil {
		return persistence.Chat{}, fmt.Errorf("create chat: %w", err)
	}
	log.Info("Created chat %s (%s, %s) for %s", chat.ID, chat.Mode, res.Kind, userID)
	return chat, nil
}

// GetChat loads a chat after checking ownership.
func (s *Service) GetChat(ctx context.Context, userID, chatID string) (persistence.Chat, error) {
	chat, ok, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return persistence.Chat{}, err
	}
	if !ok || chat.UserID != userID {
		return persistence.Chat{}, ErrChatNotFound
	}
	return chat, nil
}

func (s *Service) ListChats(ctx context.Context, userID string) ([]persistence.Chat, error) {
	return s.store.ListChats(ctx, userID)
}

func (s *Service) DeleteChat(ctx context.Context, userID, chatID string) error {
	if _, err := s.GetChat(ctx, userID, chatID); err != nil {
		return err
	}
	return s.store.DeleteChat(ctx, chatID)
}

func (s *Service) History(ctx context.Context, userID, chatID string) ([]persistence.Message, error) {
	if _, err := s.GetChat(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, chatID)
}

// ErrChatNotFound covers both a missing chat and another user's chat,
// so chat ids cannot be probed across users.
var ErrChatNotFound = errors.New("chat not found")

// ErrInvalidInput marks caller mistakes so the HTTP layer can map them
// to 400 instead of 500.
var ErrInvalidInput = errors.New("invalid input")

// Ask runs one turn: fetch the source, build the prompt, call the
// generator, persist both sides. The assistant message is returned for
// the reveal stream.
func (s *Service) Ask(ctx context.Context, userID, chatID, question string, gen Generator) (persistence.Message, error) {
	if strings.TrimSpace(question) == "" {
		return persistence.Message{}, fmt.Errorf("%w: question is empty", ErrInvalidInput)
	}
	chat, err := s.GetChat(ctx, userID, chatID)
	if err != nil {
		return persistence.Message{}, err
	}

	res, err := githubsrc.ParseURL(chat.SourceURL)
	if err != nil {
		return persistence.Message{}, fmt.Errorf("stored source URL is invalid: %w", err)
	}
	content, err := s.fetcher.Fetch(ctx, res)
	if err != nil {
		return persistence.Message{}, fmt.Errorf("fetch source: %w", err)
	}

	history, err := s.store.ListMessages(ctx, chatID)
	if err != nil {
		return persistence.Message{}, err
	}

	prompt := buildChatPrompt(content, history, question)
	system := buildSystemPrompt(Mode(chat.Mode), chat.Language)

	answer, err := gen.SimpleChat(ctx, prompt, system)
	if err != nil {
		return persistence.Message{}, fmt.Errorf("generate answer: %w", err)
	}

	now := time.Now().UTC()
	userMsg := persistence.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Role:      RoleUser,
		Content:   question,
		CreatedAt: now,
	}
	if err := s.store.AppendMessage(ctx, userMsg); err != nil {
		return persistence.Message{}, fmt.Errorf("persist question: %w", err)
	}
	assistantMsg := persistence.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Role:      RoleAssistant,
		Content:   answer,
		CreatedAt: now.Add(time.Millisecond),
	}
	if err := s.store.AppendMessage(ctx, assistantMsg); err != nil {
		return persistence.Message{}, fmt.Errorf("persist answer: %w", err)
	}

	log.Debug("Chat %s answered, %d chars", chatID, len(answer))
	return assistantMsg, nil
}

// chatTitle derives a default title from the resource so the sidebar
// has something to show before the first answer.
func chatTitle(res githubsrc.Resource) string {
	if res.Kind == githubsrc.KindIssue {
		return fmt.Sprintf("%s/%s#%d", res.Owner, res.Repo, res.Number)
	}
	return path.Base(res.Path)
}

func buildSystemPrompt(mode Mode, lang string) string {
	var prompt strings.Builder
	prompt.WriteString("You are a senior engineer helping a developer understand a GitHub repository.\n")
	prompt.WriteString(mode.instruction())
	prompt.WriteString("\nGround every claim in the provided source; say so when something is not in it.")
	if lang != "" && lang != i18n.DefaultLanguage {
		prompt.WriteString("\nRespond entirely in ")
		prompt.WriteString(i18n.LanguageName(lang))
		prompt.WriteString(". Keep code identifiers and code blocks unchanged.")
	}
	return prompt.String()
}

func buildChatPrompt(content githubsrc.Content, history []persistence.Message, question string) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("Source: %s\n", content.Resource.String()))
	if content.Title != "" {
		prompt.WriteString(fmt.Sprintf("Issue title: %s\n", content.Title))
	}
	body := content.Body
	if len(body) > maxSourceChars {
		body = body[:maxSourceChars] + "\n[... truncated ...]"
	}
	prompt.WriteString("\n--- SOURCE START ---\n")
	prompt.WriteString(body)
	prompt.WriteString("\n--- SOURCE END ---\n")

	if len(history) > 0 {
		turns := history
		if len(turns) > maxHistoryTurns {
			turns = turns[len(turns)-maxHistoryTurns:]
		}
		prompt.WriteString("\nConversation so far:\n")
		for _, msg := range turns {
			prompt.WriteString(fmt.Sprintf("[%s] %s\n", msg.Role, msg.Content))
		}
	}

	prompt.WriteString("\nQuestion: ")
	prompt.WriteString(question)
	return prompt.String()
}
