// Package telegram 以 Telegram 長輪詢提供對話介面
package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	"chefbot/internal/core/chat"
	"chefbot/internal/core/image"
	"chefbot/internal/core/session"
	"chefbot/internal/pkg/common"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	maxCaptionRunes = 1024
	maxMessageRunes = 4096

	msgBusy      = "I'm still preparing your previous answer. Please wait a moment."
	msgOverload  = "I'm a little overwhelmed right now. Please try again shortly."
	msgSomething = "Something went wrong. Send /start to begin a new conversation."
)

// Sender Telegram API 中本套件使用的部分
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Conversations 對話服務
type Conversations interface {
	Start(ctx context.Context) (*session.Conversation, error)
	Send(ctx context.Context, id, text string) (*session.Conversation, []chat.Message, error)
}

// Bot Telegram 對話機器人；每個 chat 對應一段對話
type Bot struct {
	api           Sender
	conversations Conversations
	queue         *Queue

	mu       sync.Mutex
	chats    map[int64]string
	chatLock map[int64]*sync.Mutex
}

// NewBot 創建 Telegram 機器人
func NewBot(api Sender, conversations Conversations, queue *Queue) *Bot {
	return &Bot{
		api:           api,
		conversations: conversations,
		queue:         queue,
		chats:         make(map[int64]string),
		chatLock:      make(map[int64]*sync.Mutex),
	}
}

// Run 消費更新直到 ctx 結束或 updates 關閉
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	b.queue.Start(ctx)
	defer b.queue.Close()

	common.LogInfo("Telegram bot started")
	for {
		select {
		case <-ctx.Done():
			st := b.queue.Status()
			common.LogInfo("Telegram bot stopping",
				zap.Int("pending", st.QueueLength),
				zap.Int64("processed", st.ProcessedCount),
			)
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.dispatch(update)
		}
	}
}

func (b *Bot) dispatch(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}
	chatID := msg.Chat.ID
	text := msg.Text

	err := b.queue.Enqueue(func(ctx context.Context) {
		b.HandleMessage(ctx, chatID, text)
	})
	if err != nil {
		st := b.queue.Status()
		common.LogWarn("Telegram update dropped",
			zap.Int64("chat_id", chatID),
			zap.Int("queue_length", st.QueueLength),
			zap.Int("max_queue_size", st.MaxQueueSize),
			zap.Error(err),
		)
		b.sendText(chatID, msgOverload)
	}
}

// HandleMessage 處理一則 Telegram 文字訊息
func (b *Bot) HandleMessage(ctx context.Context, chatID int64, text string) {
	if strings.TrimSpace(text) == "/start" {
		lock := b.lockFor(chatID)
		lock.Lock()
		b.start(ctx, chatID)
		lock.Unlock()
		return
	}

	id, ok := b.ensureConversation(ctx, chatID, "")
	if !ok {
		return
	}

	b.typing(chatID)
	_, replies, err := b.conversations.Send(ctx, id, text)
	if errors.Is(err, session.ErrNotFound) {
		// 對話已過期，重新開始後再處理這則訊息
		if id, ok = b.ensureConversation(ctx, chatID, id); !ok {
			return
		}
		_, replies, err = b.conversations.Send(ctx, id, text)
	}

	switch {
	case err == nil:
		for _, r := range replies {
			b.deliver(chatID, r)
		}
	case errors.Is(err, common.ErrTurnInProgress):
		b.sendText(chatID, msgBusy)
	case errors.Is(err, common.ErrEmptyInput):
	default:
		common.LogError("Telegram turn failed", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendText(chatID, msgSomething)
	}
}

// start 建立新對話並送出歡迎訊息
func (b *Bot) start(ctx context.Context, chatID int64) (string, bool) {
	conv, err := b.conversations.Start(ctx)
	if err != nil {
		common.LogError("Failed to start conversation", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendText(chatID, msgSomething)
		return "", false
	}

	b.mu.Lock()
	b.chats[chatID] = conv.ID
	b.mu.Unlock()

	for _, m := range conv.Transcript.Messages() {
		b.deliver(chatID, m)
	}
	return conv.ID, true
}

// ensureConversation 取得 chat 目前的對話，沒有或仍是 stale 時建立新對話。
// 同一 chat 的建立動作互斥，同時到達的第一則訊息只會建立一段對話。
func (b *Bot) ensureConversation(ctx context.Context, chatID int64, stale string) (string, bool) {
	lock := b.lockFor(chatID)
	lock.Lock()
	defer lock.Unlock()

	if id, ok := b.conversationFor(chatID); ok && id != stale {
		return id, true
	}
	return b.start(ctx, chatID)
}

func (b *Bot) lockFor(chatID int64) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.chatLock[chatID]
	if !ok {
		lock = &sync.Mutex{}
		b.chatLock[chatID] = lock
	}
	return lock
}

func (b *Bot) conversationFor(chatID int64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.chats[chatID]
	return id, ok
}

// deliver 送出一則機器人訊息，有圖片時以照片加說明送出
func (b *Bot) deliver(chatID int64, m chat.Message) {
	if m.Sender != chat.SenderBot {
		return
	}

	if m.Image != "" {
		data, _, err := image.DecodeDataURI(m.Image)
		if err == nil {
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "recipe.jpg", Bytes: data})
			photo.Caption = common.Truncate(m.Text, maxCaptionRunes)
			if _, err := b.api.Send(photo); err != nil {
				common.LogWarn("Failed to send photo, falling back to text", zap.Int64("chat_id", chatID), zap.Error(err))
			} else if photo.Caption == m.Text {
				return
			}
		} else {
			common.LogWarn("Undecodable recipe image", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}

	b.sendText(chatID, m.Text)
}

func (b *Bot) sendText(chatID int64, text string) {
	for _, chunk := range splitMessage(text, maxMessageRunes) {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			common.LogWarn("Failed to send Telegram message", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
	}
}

func (b *Bot) typing(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		common.LogDebug("Failed to send typing action", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// splitMessage 依行切分過長的訊息，單行超長時硬切
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
