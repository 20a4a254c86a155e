package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshal(t *testing.T) {
	t.Parallel()

	var rec struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
		D ID `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"b":"abc-7","c":null,"d":12345678901}`), &rec))

	assert.Equal(t, ID("1"), rec.A)
	assert.Equal(t, ID("abc-7"), rec.B)
	assert.Equal(t, ID(""), rec.C)
	assert.Equal(t, ID("12345678901"), rec.D)
}

func TestIDUnmarshalRejectsObjects(t *testing.T) {
	t.Parallel()

	var id ID
	require.Error(t, json.Unmarshal([]byte(`{"x":1}`), &id))
}

func TestIDMarshal(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(SubmitFeedbackRequest{IssueID: "42", FeedbackText: "thanks"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"issue_id":42,"feedback_text":"thanks"}`, string(out))

	out, err = json.Marshal(SubmitFeedbackRequest{IssueID: "a1", FeedbackText: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"issue_id":"a1","feedback_text":"x"}`, string(out))
}
