package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerResponseMarshal(t *testing.T) {
	data, err := json.Marshal(SingleAnswer("answer_1"))
	require.NoError(t, err)
	assert.JSONEq(t, `"answer_1"`, string(data))

	data, err = json.Marshal(MultiAnswer("a", "b"))
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(data))

	data, err = json.Marshal(MultiAnswer())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	data, err = json.Marshal(NoAnswer())
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestAnswerResponseUnmarshal(t *testing.T) {
	var ar AnswerResponse
	require.NoError(t, json.Unmarshal([]byte(`"answer_1"`), &ar))
	single, ok := ar.Single()
	require.True(t, ok)
	assert.Equal(t, "answer_1", single)

	require.NoError(t, json.Unmarshal([]byte(`["a","b"]`), &ar))
	assert.True(t, ar.IsList)
	assert.Equal(t, []string{"a", "b"}, ar.Values)
	_, ok = ar.Single()
	assert.False(t, ok)

	require.NoError(t, json.Unmarshal([]byte(`null`), &ar))
	assert.True(t, ar.Null)
	_, ok = ar.Single()
	assert.False(t, ok)

	assert.Error(t, json.Unmarshal([]byte(`42`), &ar))
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &ar))
}

func TestAnswerResponseRoundTripInsideAnswer(t *testing.T) {
	in := Answer{QuestionID: "q-1", Response: MultiAnswer("x")}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Answer
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.QuestionID, out.QuestionID)
	assert.Equal(t, in.Response.Values, out.Response.Values)
}

func TestQuestionTypeValid(t *testing.T) {
	assert.True(t, SingleChoice.Valid())
	assert.True(t, MultiChoice.Valid())
	assert.True(t, Action.Valid())
	assert.False(t, QuestionType("essay").Valid())
}
