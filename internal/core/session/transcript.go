// Package session 保存對話狀態與逐字稿
package session

import (
	"encoding/json"
	"time"

	"chefbot/internal/core/chat"
	"chefbot/internal/pkg/common"
)

// Transcript 只能追加的訊息紀錄
type Transcript struct {
	messages []chat.Message
}

// NewTranscript 建立空的逐字稿
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append 追加一則訊息並回傳
func (t *Transcript) Append(sender chat.Sender, text, image string) chat.Message {
	msg := chat.Message{
		ID:        common.GenerateUUID(),
		Sender:    sender,
		Text:      text,
		Image:     image,
		CreatedAt: time.Now().UTC(),
	}
	t.messages = append(t.messages, msg)
	return msg
}

// Messages 回傳訊息副本
func (t *Transcript) Messages() []chat.Message {
	out := make([]chat.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len 訊息數量
func (t *Transcript) Len() int {
	return len(t.messages)
}

// MarshalJSON 以訊息陣列序列化
func (t *Transcript) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Messages())
}

// UnmarshalJSON 還原訊息陣列
func (t *Transcript) UnmarshalJSON(data []byte) error {
	var msgs []chat.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return err
	}
	t.messages = msgs
	return nil
}
