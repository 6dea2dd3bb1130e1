// Package facade implements the question/answer bridge between a running
// test case and an external responder: an operator at an interactive front
// end, or a remote automated agent implementing the same contract. Exactly
// one question may be outstanding system-wide; the discipline is strict
// alternation of ask and answer-or-timeout.
package facade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/broadcastkit/conform/metrics"
	"github.com/broadcastkit/conform/types"
)

var (
	// ErrProtocolViolation reports a second ask before the first question
	// was answered or timed out. It is a programming error in the asking
	// test case and surfaces as an error outcome for that case.
	ErrProtocolViolation = errors.New("question already outstanding")

	// ErrStaleAnswer reports an answer whose question ID does not match
	// the outstanding question. Stale answers are rejected, never queued.
	ErrStaleAnswer = errors.New("answer does not match the outstanding question")

	// ErrNoResponder reports an ask on a bridge with no responder
	// configured. Cases typically map this to a manual outcome.
	ErrNoResponder = errors.New("no question responder configured")
)

const (
	// Identities of the run-boundary pseudo-questions sent to interactive
	// front ends before the first real case and after the last.
	PreTestsMessageID  = "pre_tests_message"
	PostTestsMessageID = "post_tests_message"
)

// Config controls bridge behavior.
type Config struct {
	Responder      Responder     // nil disables external questioning
	AnswerURI      string        // where responders send answers back
	DefaultTimeout time.Duration // applied to questions with no timeout of their own
	Log            *zap.SugaredLogger
}

// Bridge is the single-slot mailbox shared between the runner (writer of
// questions) and an external responder (writer of answers).
type Bridge struct {
	responder      Responder
	answerURI      string
	defaultTimeout time.Duration
	log            *zap.SugaredLogger

	mu          sync.Mutex
	outstanding *types.Question
	answerCh    chan types.Answer
	timedOut    bool
}

func NewBridge(cfg Config) *Bridge {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	timeout := cfg.DefaultTimeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &Bridge{
		responder:      cfg.Responder,
		answerURI:      cfg.AnswerURI,
		defaultTimeout: timeout,
		log:            log,
	}
}

// Ask publishes a question and blocks the calling case until a matching
// answer arrives, the question times out, or ctx is cancelled. ok is false
// on timeout; the bridge does not decide what outcome that maps to.
func (b *Bridge) Ask(ctx context.Context, q types.Question) (types.Answer, bool, error) {
	if b.responder == nil {
		return types.Answer{}, false, ErrNoResponder
	}
	if !q.Type.Valid() {
		return types.Answer{}, false, fmt.Errorf("invalid question type %q", q.Type)
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	timeout := q.Timeout
	if timeout == 0 {
		timeout = b.defaultTimeout
	}
	q.SentAt = time.Now()

	b.mu.Lock()
	if b.outstanding != nil {
		blockedOn := b.outstanding.ID
		b.mu.Unlock()
		return types.Answer{}, false, fmt.Errorf("%w: %s", ErrProtocolViolation, blockedOn)
	}
	answerCh := make(chan types.Answer, 1)
	b.outstanding = &q
	b.answerCh = answerCh
	b.mu.Unlock()
	metrics.QuestionAsked()

	env := NewEnvelope(q, timeout)
	env.AnswerURI = b.answerURI
	if err := b.responder.Deliver(ctx, env); err != nil {
		b.clearSlot(false)
		return types.Answer{}, false, fmt.Errorf("delivering question to responder: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ans := <-answerCh:
		b.clearSlot(false)
		return ans, true, nil
	case <-timer.C:
		b.log.Warnw("Question timed out without an answer", "question_id", q.ID, "name", q.Name, "timeout", timeout)
		b.clearSlot(true)
		return types.Answer{}, false, nil
	case <-ctx.Done():
		b.clearSlot(false)
		return types.Answer{}, false, ctx.Err()
	}
}

// SubmitAnswer delivers an external answer. It is accepted only when its
// question ID matches the outstanding question; otherwise the bridge state
// is left untouched.
func (b *Bridge) SubmitAnswer(ans types.Answer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.outstanding == nil || b.outstanding.ID != ans.QuestionID {
		return fmt.Errorf("%w: got %q", ErrStaleAnswer, ans.QuestionID)
	}

	// A multi-choice question submitted without any selections is an
	// empty list, not null.
	if b.outstanding.Type == types.MultiChoice && ans.Response.Null {
		ans.Response = types.MultiAnswer()
	}
	if ans.AnsweredAt.IsZero() {
		ans.AnsweredAt = time.Now()
	}

	select {
	case b.answerCh <- ans:
		return nil
	default:
		return fmt.Errorf("%w: answer already delivered", ErrStaleAnswer)
	}
}

// Clear discards any stale outstanding question and tells the responder to
// reset its presentation. Called at run start and on abnormal runner
// termination so a new run never receives an answer meant for an old one.
func (b *Bridge) Clear(ctx context.Context) {
	b.clearSlot(false)
	if b.responder != nil {
		if err := b.responder.Clear(ctx); err != nil {
			b.log.Warnw("Failed to clear responder state", "error", err)
		}
	}
}

// ConsumeTimeout reports whether an ask has timed out since the last call,
// resetting the flag. The runner uses this to honor fatal-timeout mode.
func (b *Bridge) ConsumeTimeout() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.timedOut
	b.timedOut = false
	return t
}

// Interactive reports whether a responder is configured.
func (b *Bridge) Interactive() bool {
	return b != nil && b.responder != nil
}

// PreTestsMessage prompts the operator that a run is about to begin.
func (b *Bridge) PreTestsMessage(ctx context.Context, suiteName string) (types.Answer, bool, error) {
	return b.Ask(ctx, types.Question{
		ID:     PreTestsMessageID,
		Type:   types.Action,
		Name:   PreTestsMessageID,
		Prompt: fmt.Sprintf("The %s test suite is about to begin. Confirm when ready.", suiteName),
	})
}

// PostTestsMessage tells the operator the run has finished.
func (b *Bridge) PostTestsMessage(ctx context.Context) (types.Answer, bool, error) {
	return b.Ask(ctx, types.Question{
		ID:     PostTestsMessageID,
		Type:   types.Action,
		Name:   PostTestsMessageID,
		Prompt: "All tests have completed. Confirm to finish.",
	})
}

func (b *Bridge) clearSlot(timedOut bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outstanding = nil
	b.answerCh = nil
	if timedOut {
		b.timedOut = true
	}
	metrics.QuestionResolved()
}
