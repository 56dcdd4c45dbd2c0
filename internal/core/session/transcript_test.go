package session

import (
	"encoding/json"
	"testing"

	"chefbot/internal/core/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptAppend(t *testing.T) {
	tr := NewTranscript()

	first := tr.Append(chat.SenderBot, "Choose language", "")
	second := tr.Append(chat.SenderUser, "English", "")

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, second.CreatedAt.Before(first.CreatedAt))
	assert.Equal(t, 2, tr.Len())

	msgs := tr.Messages()
	msgs[0].Text = "mutated"
	assert.Equal(t, "Choose language", tr.Messages()[0].Text)
}

func TestTranscriptJSON(t *testing.T) {
	tr := NewTranscript()
	tr.Append(chat.SenderBot, "recipe", "data:image/jpeg;base64,AAAA")

	data, err := json.Marshal(tr)
	require.NoError(t, err)

	var restored Transcript
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, tr.Messages(), restored.Messages())
}
