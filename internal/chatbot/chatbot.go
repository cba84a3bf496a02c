package chatbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"CohereChat/internal/backend"
	"CohereChat/internal/display"
	"CohereChat/internal/session"
	"CohereChat/internal/telemetry"
)

const (
	cmdExit = "exit"
	cmdNew  = "new"

	promptLabel  = "What would you like to talk about?"
	confirmLabel = "Are you sure you want to exit?"
	farewell     = "Goodbye"
	newNotice    = "New conversation started"

	outcomeOK          = "ok"
	outcomeInterrupted = "interrupted"
)

// State is the conversation loop state
type State int

const (
	StateAwaitingInput State = iota
	StateProcessing
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateProcessing:
		return "processing"
	default:
		return "terminated"
	}
}

// Settings is the session configuration, fixed at startup
type Settings struct {
	Backend        string
	Model          string
	Temperature    float64
	SystemPrompt   string
	FallbackModels []string
}

// TurnRecorder stores per-turn metadata
type TurnRecorder interface {
	Record(ctx context.Context, rec telemetry.TurnRecord) error
}

// Option configures optional ChatBot dependencies
type Option func(*ChatBot)

// WithLogger injects a logger
func WithLogger(l *slog.Logger) Option {
	return func(cb *ChatBot) {
		if l != nil {
			cb.logger = l
		}
	}
}

// WithTracer injects a tracer
func WithTracer(t trace.Tracer) Option {
	return func(cb *ChatBot) {
		if t != nil {
			cb.tracer = t
		}
	}
}

// WithInstruments injects metric instruments
func WithInstruments(i *telemetry.Instruments) Option {
	return func(cb *ChatBot) {
		cb.metrics = i
	}
}

// WithRecorder injects a turn ledger
func WithRecorder(r TurnRecorder) Option {
	return func(cb *ChatBot) {
		cb.recorder = r
	}
}

// ChatBot represents the main application
type ChatBot struct {
	client   backend.Client
	settings Settings
	conv     *session.Conversation
	display  *display.Display
	input    *Prompter
	state    State

	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *telemetry.Instruments
	recorder TurnRecorder
}

// New creates a ChatBot reading user input from in and writing to out
func New(client backend.Client, settings Settings, in io.Reader, out io.Writer, opts ...Option) *ChatBot {
	d := display.New(out)
	cb := &ChatBot{
		client:   client,
		settings: settings,
		conv:     session.New(settings.SystemPrompt),
		display:  d,
		input:    NewPrompter(in, d),
		state:    StateAwaitingInput,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:   noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cb)
		}
	}
	return cb
}

// History returns a copy of the current conversation
func (cb *ChatBot) History() []session.Message {
	return cb.conv.Messages()
}

// State returns the current loop state
func (cb *ChatBot) State() State {
	return cb.state
}

// Run shows the header and drives the conversation until a confirmed exit,
// end of input or ctx cancellation. Turn failures never end the loop.
func (cb *ChatBot) Run(ctx context.Context) error {
	cb.display.ShowHeader()
	cb.logger.Info("session started",
		"session_id", cb.conv.ID,
		"backend", cb.settings.Backend,
		"model", cb.settings.Model,
	)

	for cb.state != StateTerminated {
		input, err := cb.input.Ask(ctx, promptLabel)
		if errors.Is(err, ErrLineTooLong) {
			cb.logger.Warn("input line discarded", "session_id", cb.conv.ID, "limit_bytes", MaxLineBytes)
			cb.display.Show(fmt.Sprintf("Message too long (limit %d bytes), nothing was sent.", MaxLineBytes), display.KindError)
			continue
		}
		if err != nil {
			return cb.stopOnInputError(err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case cmdExit:
			confirmed, err := cb.input.Confirm(ctx, confirmLabel)
			if err != nil {
				return cb.stopOnInputError(err)
			}
			if confirmed {
				cb.display.Show(farewell, display.KindPlain)
				cb.state = StateTerminated
				cb.logger.Info("session ended", "session_id", cb.conv.ID, "messages", cb.conv.Len())
			}
			continue
		case cmdNew:
			previous := cb.conv.ID
			cb.conv.Reset()
			cb.display.Show(newNotice, display.KindWarning)
			cb.logger.Info("conversation reset", "previous_session_id", previous, "session_id", cb.conv.ID)
			continue
		}

		cb.conv.Append(session.RoleUser, input)
		cb.state = StateProcessing
		cb.processTurn(ctx)
		cb.state = StateAwaitingInput
	}
	return nil
}

func (cb *ChatBot) stopOnInputError(err error) error {
	cb.state = StateTerminated
	if errors.Is(err, io.EOF) || errors.Is(err, ErrInterrupted) {
		cb.display.Show("", display.KindPlain)
		cb.display.Show(farewell, display.KindPlain)
		cb.logger.Info("input closed, session ended", "session_id", cb.conv.ID, "reason", err.Error())
		return nil
	}
	cb.logger.Error("failed to read input", "error", err)
	return fmt.Errorf("read input: %w", err)
}

// processTurn sends the history and appends the reply. On failure the user
// turn stays in the history unanswered.
func (cb *ChatBot) processTurn(ctx context.Context) {
	history := cb.conv.Messages()

	ctx, span := cb.tracer.Start(ctx, "chat_turn", trace.WithAttributes(
		attribute.String("session.id", cb.conv.ID),
		attribute.String("chat.backend", cb.settings.Backend),
		attribute.String("chat.model", cb.settings.Model),
		attribute.Int("chat.history_len", len(history)),
	))
	defer span.End()

	start := time.Now()
	text, err := cb.client.Send(ctx, cb.settings.Model, history, cb.settings.Temperature)
	elapsed := time.Since(start)

	outcome := outcomeOK
	switch {
	case err != nil && ctx.Err() != nil:
		// interrupted mid-request; the next prompt ends the session
		outcome = outcomeInterrupted
		span.SetStatus(codes.Error, outcomeInterrupted)
		cb.logger.Info("chat request interrupted", "session_id", cb.conv.ID, "error", err)
	case err != nil:
		berr := backend.Classify(err)
		outcome = berr.Kind.String()
		span.RecordError(err)
		span.SetStatus(codes.Error, berr.Description)
		cb.logger.Error("chat request failed",
			"session_id", cb.conv.ID,
			"kind", outcome,
			"status", berr.StatusCode,
			"error", err,
		)
		cb.display.Show(cb.errorMessage(berr), display.KindError)
	default:
		cb.conv.Append(session.RoleAssistant, text)
		if text == "" {
			cb.logger.Warn("empty assistant reply", "session_id", cb.conv.ID)
		}
		cb.logger.Debug("chat reply received",
			"session_id", cb.conv.ID,
			"bytes", len(text),
			"duration_ms", elapsed.Milliseconds(),
		)
		cb.display.Show(text, display.KindInfo)
	}

	cb.metrics.RecordTurn(ctx, cb.settings.Backend, outcome, elapsed)
	if cb.recorder != nil {
		rec := telemetry.TurnRecord{
			SessionID:  cb.conv.ID,
			Backend:    cb.settings.Backend,
			Model:      cb.settings.Model,
			Outcome:    outcome,
			HistoryLen: len(history),
			Latency:    elapsed,
			At:         start,
		}
		if err := cb.recorder.Record(context.WithoutCancel(ctx), rec); err != nil {
			cb.logger.Warn("failed to record turn", "error", err)
		}
	}
}

func (cb *ChatBot) errorMessage(err *backend.Error) string {
	switch err.Kind {
	case backend.KindModelNotFound:
		return "Model not found or retired. Try " + quoteModels(cb.settings.FallbackModels) + "."
	case backend.KindProvider:
		return "Provider error: " + err.Description
	default:
		return "Unexpected error: " + err.Description
	}
}

// quoteModels renders a list as 'a', 'b' or 'c'
func quoteModels(models []string) string {
	quoted := make([]string, len(models))
	for i, m := range models {
		quoted[i] = "'" + m + "'"
	}
	switch len(quoted) {
	case 0:
		return "another model"
	case 1:
		return quoted[0]
	default:
		return strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
	}
}
