package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/justicebuddy/justicebuddy/internal/ai"
	"github.com/justicebuddy/justicebuddy/internal/database"
	"github.com/justicebuddy/justicebuddy/internal/models"
)

// HistoryEntry is one prior turn supplied by the client.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Reply is the assistant's answer to one chat turn.
type Reply struct {
	Message        string    `json:"message"`
	ConversationID string    `json:"conversation_id"`
	Timestamp      time.Time `json:"timestamp"`
	ModelUsed      string    `json:"model_used"`
}

// Service assembles rule-governed conversations and routes them to the
// active AI provider.
type Service struct {
	db         *database.DB
	dispatcher *ai.Dispatcher
}

func NewService(db *database.DB, dispatcher *ai.Dispatcher) *Service {
	return &Service{db: db, dispatcher: dispatcher}
}

// Chat answers one user turn. Rules scoped to modelName (or the active
// model when empty) become the system prompt, prior history precedes
// the new message, and the reply records which model produced it.
func (s *Service) Chat(ctx context.Context, message string, history []HistoryEntry, modelName string) (*Reply, error) {
	model := s.dispatcher.ActiveModel()
	scope := modelName
	if scope == "" {
		scope = model
	}

	rules, err := s.db.ListChatRules(scope)
	if err != nil {
		return nil, err
	}

	conversation := make([]ai.Message, 0, len(history)+2)
	if prompt := BuildSystemPrompt(rules); prompt != "" {
		conversation = append(conversation, ai.Message{Role: "system", Content: prompt})
	}
	for _, h := range history {
		conversation = append(conversation, ai.Message{Role: h.Role, Content: h.Content})
	}
	conversation = append(conversation, ai.Message{Role: "user", Content: message})

	answer, err := s.dispatcher.GenerateChatResponse(ctx, conversation)
	if err != nil {
		return nil, err
	}

	return &Reply{
		Message:        answer,
		ConversationID: uuid.NewString(),
		Timestamp:      time.Now().UTC(),
		ModelUsed:      model,
	}, nil
}

// Rules returns the active rules scoped to modelName, falling back to
// the active model when modelName is empty.
func (s *Service) Rules(modelName string) ([]models.ChatRule, error) {
	if modelName == "" {
		modelName = s.dispatcher.ActiveModel()
	}
	return s.db.ListChatRules(modelName)
}
