package facade

import (
	"time"

	"github.com/broadcastkit/conform/types"
)

// Envelope is the wire form of a question delivered to an external
// responder. Field names follow the question delivery contract.
type Envelope struct {
	TestType    types.QuestionType      `json:"test_type"`
	QuestionID  string                  `json:"question_id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Question    string                  `json:"question"`
	Answers     []types.AnswerOption    `json:"answers"`
	Timeout     *int64                  `json:"timeout"` // seconds, null disables
	AnswerURI   string                  `json:"answer_uri"`
	Metadata    *types.QuestionMetadata `json:"metadata,omitempty"`
	TimeSent    float64                 `json:"time_sent"`
}

// NewEnvelope builds the delivery form of a question. Action questions carry
// a null answers array.
func NewEnvelope(q types.Question, timeout time.Duration) Envelope {
	env := Envelope{
		TestType:    q.Type,
		QuestionID:  q.ID,
		Name:        q.Name,
		Description: q.Description,
		Question:    q.Prompt,
		Metadata:    q.Metadata,
		TimeSent:    float64(q.SentAt.UnixNano()) / float64(time.Second),
	}
	if q.Type != types.Action {
		env.Answers = q.Answers
		if env.Answers == nil {
			env.Answers = []types.AnswerOption{}
		}
	}
	if timeout > 0 {
		// Rounded up so a sub-second timeout never advertises zero,
		// which would read as "no timeout" on the wire.
		secs := int64((timeout + time.Second - 1) / time.Second)
		env.Timeout = &secs
	}
	return env
}
