package tutor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/tutorkit/pkg/chatlog"
	"github.com/dmitrymomot/tutorkit/pkg/completion"
	"github.com/dmitrymomot/tutorkit/pkg/logger"
	"github.com/dmitrymomot/tutorkit/pkg/prompt"
	"github.com/dmitrymomot/tutorkit/pkg/retrieval"
)

// Slot names filled from a HintRequest.
const (
	SlotQuestion        = "question"
	SlotCorrectAnswer   = "correct_answer"
	SlotIncorrectAnswer = "incorrect_answer"
	SlotLesson          = "lesson"
)

// HintRequest describes the problem a student got wrong.
type HintRequest struct {
	Question        string
	CorrectAnswer   string
	IncorrectAnswer string
	Lesson          string
}

func (r HintRequest) normalized() HintRequest {
	return HintRequest{
		Question:        strings.TrimSpace(r.Question),
		CorrectAnswer:   strings.TrimSpace(r.CorrectAnswer),
		IncorrectAnswer: strings.TrimSpace(r.IncorrectAnswer),
		Lesson:          strings.TrimSpace(r.Lesson),
	}
}

// Validate requires a question and two different answers. The lesson is optional.
func (r HintRequest) Validate() error {
	r = r.normalized()
	if r.Question == "" || r.CorrectAnswer == "" || r.IncorrectAnswer == "" {
		return ErrIncompleteRequest
	}
	if r.CorrectAnswer == r.IncorrectAnswer {
		return ErrAnswersMatch
	}
	return nil
}

// Session drives one tutoring conversation: it owns the prompt manager and
// its retrieval strategy, the current chat id and, optionally, the chat log.
// Not safe for concurrent use.
type Session struct {
	manager  *prompt.Manager
	library  *prompt.Library
	chatLog  *chatlog.Log
	defaults retrieval.SlotMap
	now      func() time.Time
	log      *slog.Logger

	chatID   string
	hintType string
}

// Option configures a Session.
type Option func(*Session)

// WithChatLog records every completion in l.
func WithChatLog(l *chatlog.Log) Option {
	return func(s *Session) {
		s.chatLog = l
	}
}

// WithDefaultSlots sets slot values applied before the request fields on every
// new hint, for templates that reference slots a HintRequest does not carry.
func WithDefaultSlots(slots retrieval.SlotMap) Option {
	return func(s *Session) {
		s.defaults = slots.Clone()
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func NewSession(manager *prompt.Manager, library *prompt.Library, opts ...Option) (*Session, error) {
	if manager == nil {
		return nil, ErrManagerNotSet
	}
	if library == nil {
		return nil, ErrLibraryNotSet
	}

	s := &Session{
		manager: manager,
		library: library,
		now:     time.Now,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("tutor"))
	return s, nil
}

func (s *Session) ChatID() string {
	return s.chatID
}

func (s *Session) HintType() string {
	return s.hintType
}

func (s *Session) Manager() *prompt.Manager {
	return s.manager
}

// NewHint starts a new conversation for req using the hintType template and
// returns the messages to send. The previous exchange is discarded and a new
// chat id is generated. On error the session keeps the previous hint.
func (s *Session) NewHint(ctx context.Context, hintType string, req HintRequest) (_ []prompt.Message, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.normalized()

	entry, err := s.library.Get(hintType)
	if err != nil {
		return nil, err
	}

	strategy := s.manager.RetrievalStrategy()
	if strategy == nil {
		return nil, prompt.ErrNoRetrievalStrategy
	}

	snap := s.manager.Snapshot()
	prevSlots := strategy.Map()
	defer func() {
		if err != nil {
			s.manager.Restore(snap)
			strategy.UpdateMap(prevSlots)
		}
	}()

	slots := s.defaults.Clone()
	slots[SlotQuestion] = req.Question
	slots[SlotCorrectAnswer] = req.CorrectAnswer
	slots[SlotIncorrectAnswer] = req.IncorrectAnswer
	slots[SlotLesson] = req.Lesson
	strategy.UpdateMap(slots)

	if err := s.manager.SetIntroMessages(entry.Messages); err != nil {
		return nil, fmt.Errorf("set intro for %q: %w", hintType, err)
	}

	messages, err := s.manager.BuildQuery(ctx, "")
	if err != nil {
		return nil, err
	}

	s.chatID = chatlog.GenerateChatID(s.now())
	s.hintType = hintType

	s.log.InfoContext(ctx, "new hint started",
		logger.HintType(hintType),
		logger.ChatID(s.chatID),
		slog.Int("messages", len(messages)),
	)
	return messages, nil
}

// FollowUp appends a student question to the conversation and returns the
// messages to send.
func (s *Session) FollowUp(ctx context.Context, query string) ([]prompt.Message, error) {
	if s.chatID == "" {
		return nil, ErrNoActiveHint
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	return s.manager.BuildQuery(ctx, query)
}

// RecordReply stores the assistant reply in the exchange and, when a chat log
// is configured, logs the messages that were sent with the raw completion.
func (s *Session) RecordReply(ctx context.Context, sent []prompt.Message, res completion.Result) error {
	if s.chatID == "" {
		return ErrNoActiveHint
	}
	if err := s.manager.AddStoredMessage(res.Message); err != nil {
		return err
	}

	if s.chatLog == nil {
		return nil
	}
	if err := s.chatLog.LogCompletion(ctx, s.chatID, sent, res.Raw); err != nil {
		return fmt.Errorf("log completion: %w", err)
	}
	return nil
}

// Respond sends messages through c and records the reply.
func (s *Session) Respond(ctx context.Context, c completion.Completer, model string, messages []prompt.Message) (prompt.Message, error) {
	res, err := c.Complete(ctx, model, messages)
	if err != nil {
		return prompt.Message{}, err
	}
	if err := s.RecordReply(ctx, messages, res); err != nil {
		return prompt.Message{}, err
	}
	return res.Message, nil
}
