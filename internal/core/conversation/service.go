// Package conversation 負責執行一次對話輪次：取得狀態、交給狀態機、寫回逐字稿
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"chefbot/internal/core/chat"
	"chefbot/internal/core/language"
	"chefbot/internal/core/session"
	"chefbot/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 對話服務
type Service struct {
	machine *chat.Machine
	store   session.Store

	mu       sync.Mutex
	inFlight map[string]*turnState
}

// turnState 進行中輪次的狀態；ended 表示輪次期間對話已被結束
type turnState struct {
	ended bool
}

// NewService 創建對話服務
func NewService(machine *chat.Machine, store session.Store) *Service {
	return &Service{
		machine:  machine,
		store:    store,
		inFlight: make(map[string]*turnState),
	}
}

// Start 建立新對話並送出語言選擇提示
func (s *Service) Start(ctx context.Context) (*session.Conversation, error) {
	conv := session.NewConversation()
	conv.Transcript.Append(chat.SenderBot, language.ChoicePrompt(), "")

	if err := s.store.Save(ctx, conv); err != nil {
		return nil, common.ErrInternalError.Wrap(err)
	}

	common.LogInfo("Conversation started", zap.String("conversation_id", conv.ID))
	return conv, nil
}

// Get 取得對話
func (s *Service) Get(ctx context.Context, id string) (*session.Conversation, error) {
	return s.store.Get(ctx, id)
}

// End 結束並刪除對話；輪次進行中時，該輪次完成後不會再寫回
func (s *Service) End(ctx context.Context, id string) error {
	s.mu.Lock()
	turn, busy := s.inFlight[id]
	if busy {
		turn.ended = true
	} else {
		// 刪除期間佔用輪次，避免新的 Send 讀到舊資料後寫回
		s.inFlight[id] = &turnState{ended: true}
		defer s.release(id)
	}
	s.mu.Unlock()

	// 進行中的輪次可能已先刪除
	if err := s.store.Delete(ctx, id); err != nil && !(busy && errors.Is(err, session.ErrNotFound)) {
		return err
	}
	common.LogInfo("Conversation ended", zap.String("conversation_id", id))
	return nil
}

// Busy 回傳對話是否有輪次正在處理
func (s *Service) Busy(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[id]
	return ok
}

// Send 處理一則使用者訊息，回傳更新後的對話與本輪的機器人訊息
//
// 同一對話同時只允許一個輪次，後到的請求直接以 ErrTurnInProgress 拒絕。
// 輪次開始後不受呼叫端取消影響，一定執行到完成或後備結果。
func (s *Service) Send(ctx context.Context, id, text string) (*session.Conversation, []chat.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, common.ErrEmptyInput
	}

	if !s.acquire(id) {
		return nil, nil, common.ErrTurnInProgress
	}
	defer s.release(id)

	ctx = context.WithoutCancel(ctx)

	conv, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	conv.Transcript.Append(chat.SenderUser, text, "")
	turn := s.machine.HandleInput(ctx, conv.State, text)

	replies := make([]chat.Message, 0, len(turn.Replies))
	for _, r := range turn.Replies {
		replies = append(replies, conv.Transcript.Append(chat.SenderBot, r.Text, r.Image))
	}
	conv.State = turn.Session
	conv.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, conv); err != nil {
		return nil, nil, common.ErrInternalError.Wrap(err)
	}

	// End 可能在 Save 前後發生，寫回後再檢查一次
	if s.ended(id) {
		if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, session.ErrNotFound) {
			common.LogWarn("Failed to discard ended conversation", zap.String("conversation_id", id), zap.Error(err))
		}
		common.LogInfo("Turn discarded, conversation ended", zap.String("conversation_id", id))
		return nil, nil, session.ErrNotFound
	}

	common.LogInfo("Turn completed",
		zap.String("conversation_id", id),
		zap.String("step", string(conv.State.Step)),
		zap.Int("replies", len(replies)),
		zap.Int("messages", conv.Transcript.Len()),
		zap.Duration("耗時", time.Since(start)),
	)
	return conv, replies, nil
}

func (s *Service) acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return false
	}
	s.inFlight[id] = &turnState{}
	return true
}

func (s *Service) ended(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	turn, ok := s.inFlight[id]
	return ok && turn.ended
}

func (s *Service) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}
