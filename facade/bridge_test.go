package facade

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadcastkit/conform/types"
)

// recordingResponder captures delivered envelopes and clear calls.
type recordingResponder struct {
	mu        sync.Mutex
	delivered []Envelope
	cleared   int
	deliverCh chan Envelope
}

func newRecordingResponder() *recordingResponder {
	return &recordingResponder{deliverCh: make(chan Envelope, 8)}
}

func (r *recordingResponder) Deliver(_ context.Context, env Envelope) error {
	r.mu.Lock()
	r.delivered = append(r.delivered, env)
	r.mu.Unlock()
	r.deliverCh <- env
	return nil
}

func (r *recordingResponder) Clear(context.Context) error {
	r.mu.Lock()
	r.cleared++
	r.mu.Unlock()
	return nil
}

func (r *recordingResponder) clearCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cleared
}

func TestAskWithoutResponder(t *testing.T) {
	b := NewBridge(Config{})
	_, _, err := b.Ask(context.Background(), types.Question{Type: types.Action})
	assert.ErrorIs(t, err, ErrNoResponder)
	assert.False(t, b.Interactive())
}

func TestAskRejectsInvalidQuestionType(t *testing.T) {
	b := NewBridge(Config{Responder: newRecordingResponder()})
	_, _, err := b.Ask(context.Background(), types.Question{Type: "essay"})
	assert.Error(t, err)
}

func TestAskAnswerRoundTrip(t *testing.T) {
	responder := newRecordingResponder()
	b := NewBridge(Config{Responder: responder, AnswerURI: "http://harness:5001" + AnswerPath})

	done := make(chan struct{})
	var ans types.Answer
	var ok bool
	var askErr error
	go func() {
		defer close(done)
		ans, ok, askErr = b.Ask(context.Background(), types.Question{
			Type:   types.SingleChoice,
			Name:   "case_01",
			Prompt: "pick one",
			Answers: []types.AnswerOption{
				{ID: "a", Display: "Option A"},
				{ID: "b", Display: "Option B"},
			},
		})
	}()

	env := <-responder.deliverCh
	require.NotEmpty(t, env.QuestionID)
	assert.Equal(t, types.SingleChoice, env.TestType)
	assert.Equal(t, "http://harness:5001"+AnswerPath, env.AnswerURI)
	require.Len(t, env.Answers, 2)

	require.NoError(t, b.SubmitAnswer(types.Answer{
		QuestionID: env.QuestionID,
		Response:   types.SingleAnswer("b"),
	}))

	<-done
	require.NoError(t, askErr)
	require.True(t, ok)
	choice, single := ans.Response.Single()
	require.True(t, single)
	assert.Equal(t, "b", choice)
	assert.False(t, b.ConsumeTimeout())
}

func TestAskTimeoutReturnsSentinel(t *testing.T) {
	b := NewBridge(Config{
		Responder:      newRecordingResponder(),
		DefaultTimeout: 10 * time.Millisecond,
	})

	_, ok, err := b.Ask(context.Background(), types.Question{Type: types.Action, Name: "case_01"})
	require.NoError(t, err, "timeout is a sentinel, not an error")
	assert.False(t, ok)

	assert.True(t, b.ConsumeTimeout())
	assert.False(t, b.ConsumeTimeout(), "flag resets once consumed")
}

func TestStaleAnswerIsRejected(t *testing.T) {
	responder := newRecordingResponder()
	b := NewBridge(Config{Responder: responder})

	// No question outstanding at all.
	err := b.SubmitAnswer(types.Answer{QuestionID: "ghost", Response: types.NoAnswer()})
	assert.ErrorIs(t, err, ErrStaleAnswer)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = b.Ask(context.Background(), types.Question{Type: types.Action, Name: "case_01"})
	}()
	env := <-responder.deliverCh

	// Wrong ID while another question is outstanding.
	err = b.SubmitAnswer(types.Answer{QuestionID: "wrong-id", Response: types.NoAnswer()})
	assert.ErrorIs(t, err, ErrStaleAnswer)

	// The outstanding question is still answerable.
	require.NoError(t, b.SubmitAnswer(types.Answer{QuestionID: env.QuestionID, Response: types.NoAnswer()}))
	<-done
}

func TestSecondAskIsProtocolViolation(t *testing.T) {
	responder := newRecordingResponder()
	b := NewBridge(Config{Responder: responder})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = b.Ask(context.Background(), types.Question{Type: types.Action, Name: "first"})
	}()
	env := <-responder.deliverCh

	_, _, err := b.Ask(context.Background(), types.Question{Type: types.Action, Name: "second"})
	assert.ErrorIs(t, err, ErrProtocolViolation)

	require.NoError(t, b.SubmitAnswer(types.Answer{QuestionID: env.QuestionID, Response: types.NoAnswer()}))
	<-done
}

func TestMultiChoiceNullBecomesEmptyList(t *testing.T) {
	responder := newRecordingResponder()
	b := NewBridge(Config{Responder: responder})

	done := make(chan struct{})
	var ans types.Answer
	go func() {
		defer close(done)
		ans, _, _ = b.Ask(context.Background(), types.Question{
			Type: types.MultiChoice,
			Name: "case_01",
			Answers: []types.AnswerOption{
				{ID: "a", Display: "A"},
			},
		})
	}()
	env := <-responder.deliverCh

	require.NoError(t, b.SubmitAnswer(types.Answer{
		QuestionID: env.QuestionID,
		Response:   types.NoAnswer(),
	}))
	<-done

	assert.False(t, ans.Response.Null)
	assert.True(t, ans.Response.IsList)
	assert.Empty(t, ans.Response.Values)
}

func TestAskHonorsContextCancellation(t *testing.T) {
	b := NewBridge(Config{Responder: newRecordingResponder()})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, ok, err := b.Ask(ctx, types.Question{Type: types.Action, Name: "case_01"})
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, b.ConsumeTimeout(), "cancellation is not a timeout")
}

func TestClearResetsResponderAndSlot(t *testing.T) {
	responder := newRecordingResponder()
	b := NewBridge(Config{Responder: responder})

	b.Clear(context.Background())
	assert.Equal(t, 1, responder.clearCount())

	// After a clear, asking works normally.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = b.Ask(context.Background(), types.Question{Type: types.Action, Name: "case_01"})
	}()
	env := <-responder.deliverCh
	require.NoError(t, b.SubmitAnswer(types.Answer{QuestionID: env.QuestionID, Response: types.NoAnswer()}))
	<-done
}

func TestDeliverFailureSurfacesAsError(t *testing.T) {
	b := NewBridge(Config{Responder: failingResponder{}})
	_, ok, err := b.Ask(context.Background(), types.Question{Type: types.Action, Name: "case_01"})
	assert.False(t, ok)
	assert.Error(t, err)

	// The slot is free again after a failed delivery.
	err = b.SubmitAnswer(types.Answer{QuestionID: "anything", Response: types.NoAnswer()})
	assert.ErrorIs(t, err, ErrStaleAnswer)
}

type failingResponder struct{}

func (failingResponder) Deliver(context.Context, Envelope) error {
	return errors.New("responder down")
}
func (failingResponder) Clear(context.Context) error { return nil }

func TestNewEnvelope(t *testing.T) {
	q := types.Question{
		ID:     "q-1",
		Type:   types.SingleChoice,
		Name:   "case_01",
		Prompt: "pick",
		SentAt: time.Now(),
	}
	env := NewEnvelope(q, 30*time.Second)
	assert.Equal(t, "q-1", env.QuestionID)
	require.NotNil(t, env.Timeout)
	assert.EqualValues(t, 30, *env.Timeout)
	assert.NotNil(t, env.Answers, "choice questions carry an answers array even when empty")
	assert.Greater(t, env.TimeSent, float64(0))

	action := NewEnvelope(types.Question{ID: "q-2", Type: types.Action}, 0)
	assert.Nil(t, action.Answers)
	assert.Nil(t, action.Timeout)

	short := NewEnvelope(types.Question{ID: "q-3", Type: types.Action}, 250*time.Millisecond)
	require.NotNil(t, short.Timeout)
	assert.EqualValues(t, 1, *short.Timeout, "sub-second timeouts round up, never to zero")
}
