package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// QuestionType identifies how an external responder should answer a question.
type QuestionType string

const (
	// SingleChoice expects exactly one answer ID.
	SingleChoice QuestionType = "single_choice"
	// MultiChoice expects zero or more answer IDs.
	MultiChoice QuestionType = "multi_choice"
	// Action expects no answer payload; the responder confirms an action
	// has been carried out.
	Action QuestionType = "action"
)

// Valid reports whether qt is a known question type.
func (qt QuestionType) Valid() bool {
	switch qt {
	case SingleChoice, MultiChoice, Action:
		return true
	}
	return false
}

// AnswerOption is one candidate answer presented to the responder.
type AnswerOption struct {
	ID       string `json:"answer_id"`
	Display  string `json:"display_answer"`
	Resource any    `json:"resource,omitempty"`
}

// QuestionMetadata carries free-form resource context to help automated
// responders, e.g. the sender and receiver a question refers to.
type QuestionMetadata struct {
	Sender   any `json:"sender,omitempty"`
	Receiver any `json:"receiver,omitempty"`
}

// Question is posed by a test case that requires external input. ID is
// unique per outstanding question; a case asking several questions shares
// its test name across them but not its question IDs.
type Question struct {
	ID          string
	Type        QuestionType
	Name        string // owning test case name
	Description string
	Prompt      string
	Answers     []AnswerOption // empty for Action
	Timeout     time.Duration  // zero means the bridge default applies
	Metadata    *QuestionMetadata
	SentAt      time.Time
}

// Answer is the external response to an outstanding Question. It is only
// valid while its QuestionID matches the single outstanding question.
type Answer struct {
	QuestionID string         `json:"question_id"`
	Response   AnswerResponse `json:"answer_response"`
	AnsweredAt time.Time      `json:"-"`
}

// AnswerResponse holds a single answer ID, a list of answer IDs, or nothing,
// matching the question type. On the wire it is a JSON string, array of
// strings, or null.
type AnswerResponse struct {
	Values []string
	IsList bool
	Null   bool
}

// SingleAnswer builds the response to a single-choice question.
func SingleAnswer(id string) AnswerResponse {
	return AnswerResponse{Values: []string{id}}
}

// MultiAnswer builds the response to a multi-choice question.
func MultiAnswer(ids ...string) AnswerResponse {
	return AnswerResponse{Values: ids, IsList: true}
}

// NoAnswer builds the null response used for action questions.
func NoAnswer() AnswerResponse {
	return AnswerResponse{Null: true}
}

// Single returns the lone answer ID of a single-choice response.
func (ar AnswerResponse) Single() (string, bool) {
	if ar.Null || ar.IsList || len(ar.Values) != 1 {
		return "", false
	}
	return ar.Values[0], true
}

func (ar AnswerResponse) MarshalJSON() ([]byte, error) {
	switch {
	case ar.Null:
		return []byte("null"), nil
	case ar.IsList:
		if ar.Values == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(ar.Values)
	case len(ar.Values) == 1:
		return json.Marshal(ar.Values[0])
	default:
		return nil, fmt.Errorf("answer response must be a single value, a list, or null")
	}
}

func (ar *AnswerResponse) UnmarshalJSON(data []byte) error {
	*ar = AnswerResponse{}
	if string(data) == "null" {
		ar.Null = true
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		ar.Values = []string{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		ar.Values = list
		ar.IsList = true
		return nil
	}
	return fmt.Errorf("answer response must be a string, an array of strings, or null")
}
