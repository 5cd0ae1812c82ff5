package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/amiral-e/esp-back-sub001/internal/ai"
	"github.com/amiral-e/esp-back-sub001/internal/common"
)

// UpstreamError marks a failed call to the downstream chat service. When it
// comes back from SendMessage, nothing new was persisted to the history.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("chat upstream: %v", e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

type Service struct {
	repo    *Repo
	chatter ai.Chatter
}

func NewService(repo *Repo, chatter ai.Chatter) *Service {
	return &Service{repo: repo, chatter: chatter}
}

func (s *Service) Create(ctx context.Context, userID, name string) (*Conversation, error) {
	id, err := common.NewULID()
	if err != nil {
		return nil, err
	}
	conv := &Conversation{
		ID:      id,
		UserID:  userID,
		Name:    name,
		History: Turns{},
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Get fetches a conversation and checks ownership. A conversation owned by
// someone else reports as not found; existence is not leaked.
func (s *Service) Get(ctx context.Context, userID, id string) (*Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return conv, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Conversation, error) {
	return s.repo.ListConversations(ctx, userID)
}

func (s *Service) Rename(ctx context.Context, userID, id, name string) error {
	return s.repo.UpdateName(ctx, userID, id, name)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.DeleteConversation(ctx, userID, id)
}

// SendMessage runs the history append protocol:
//
//  1. resolve the conversation — the sentinel id creates a fresh one, any
//     other id fetches with an ownership check (exactly one of the two);
//  2. append the user turn in memory only;
//  3. send the full sequence to the chat service, once, no retry — on any
//     failure the in-memory user turn is dropped and nothing is written;
//  4. append the assistant turn and persist the whole sequence in a single
//     update keyed by conversation id.
//
// A persisted history therefore never ends on an unanswered user turn from
// this path. A conversation row created in step 1 survives a later failure.
func (s *Service) SendMessage(ctx context.Context, userID, convID, content string) (id string, reply string, err error) {
	var conv *Conversation
	if convID == SentinelNewConversation {
		conv, err = s.Create(ctx, userID, nameFromPrompt(content))
	} else {
		conv, err = s.Get(ctx, userID, convID)
	}
	if err != nil {
		return "", "", err
	}

	turns := append(Turns{}, conv.History...)
	turns = append(turns, Turn{Role: RoleUser, Content: content})

	msgs := make([]ai.Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, ai.Message{Role: t.Role, Content: t.Content})
	}

	reply, err = s.chatter.Chat(ctx, msgs)
	if err != nil {
		return "", "", &UpstreamError{Err: err}
	}

	turns = append(turns, Turn{Role: RoleAssistant, Content: reply})
	if err := s.repo.UpdateHistory(ctx, conv.ID, turns); err != nil {
		return "", "", err
	}

	return conv.ID, reply, nil
}

// nameFromPrompt derives a display name for a sentinel-created conversation
// from the first words of the prompt.
func nameFromPrompt(content string) string {
	name := strings.Join(strings.Fields(content), " ")
	if name == "" {
		return "New conversation"
	}
	const max = 48
	if len(name) > max {
		cut := max
		// never cut inside a multi-byte rune
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimSpace(name[:cut])
	}
	return name
}
