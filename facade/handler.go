package facade

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/broadcastkit/conform/types"
)

// AnswerPath is the callback endpoint responders post answers to.
const AnswerPath = "/x-conform/testanswer/v1.0"

type answerBody struct {
	QuestionID   string               `json:"question_id"`
	Response     types.AnswerResponse `json:"answer_response"`
	TimeAnswered *float64             `json:"time_answered"`
}

// AnswerHandler accepts answers from an external responder and feeds them to
// the bridge. Answers for anything but the outstanding question are rejected
// without mutating bridge state.
func AnswerHandler(b *Bridge, log *zap.SugaredLogger) http.Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var body answerBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid JSON received", http.StatusBadRequest)
			return
		}
		if body.QuestionID == "" {
			http.Error(w, "question_id is required", http.StatusBadRequest)
			return
		}

		ans := types.Answer{
			QuestionID: body.QuestionID,
			Response:   body.Response,
			AnsweredAt: time.Now(),
		}
		if body.TimeAnswered != nil {
			ans.AnsweredAt = time.Unix(0, int64(*body.TimeAnswered*float64(time.Second)))
		}

		if err := b.SubmitAnswer(ans); err != nil {
			if errors.Is(err, ErrStaleAnswer) {
				log.Warnw("Rejected stale answer", "question_id", body.QuestionID)
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})
}
