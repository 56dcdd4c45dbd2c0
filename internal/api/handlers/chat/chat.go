// Package chat 對話 session 的 HTTP 處理器
package chat

import (
	"net/http"

	chatcore "chefbot/internal/core/chat"
	"chefbot/internal/core/conversation"
	"chefbot/internal/core/language"
	"chefbot/internal/core/session"
	"chefbot/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SendMessageRequest 使用者訊息
type SendMessageRequest struct {
	Text string `json:"text"`
}

// SessionResponse 對話狀態與完整逐字稿
type SessionResponse struct {
	ID        string             `json:"id"`
	Step      chatcore.Step      `json:"step"`
	Language  string             `json:"language,omitempty"`
	Cuisine   string             `json:"cuisine,omitempty"`
	Dish      string             `json:"dish,omitempty"`
	Favorites []string           `json:"favorites"`
	Busy      bool               `json:"busy"`
	Messages  []chatcore.Message `json:"messages"`
}

// SendMessageResponse 本輪回覆加上更新後的對話
type SendMessageResponse struct {
	Replies []chatcore.Message `json:"replies"`
	Session SessionResponse    `json:"session"`
}

// Handler 對話處理器
type Handler struct {
	conversations *conversation.Service
	debug         bool
}

// NewHandler 創建對話處理器
func NewHandler(conversations *conversation.Service, debug bool) *Handler {
	return &Handler{
		conversations: conversations,
		debug:         debug,
	}
}

// ListLanguages 列出支援的語言
func (h *Handler) ListLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"languages": language.Supported(),
		"prompt":    language.ChoicePrompt(),
	})
}

// CreateSession 建立新對話
func (h *Handler) CreateSession(c *gin.Context) {
	conv, err := h.conversations.Start(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.toResponse(conv))
}

// GetSession 取得對話狀態與逐字稿
func (h *Handler) GetSession(c *gin.Context) {
	conv, err := h.conversations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(conv))
}

// sendResult 一次輪次的結果
type sendResult struct {
	conv    *session.Conversation
	replies []chatcore.Message
	err     error
}

// SendMessage 送出一則使用者訊息
//
// 請求期限到時先回 504，輪次仍在背景完成並寫回，之後可用 GetSession 取得結果。
func (h *Handler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("Invalid message request", zap.Error(err))
		h.fail(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	done := make(chan sendResult, 1)
	go func() {
		conv, replies, err := h.conversations.Send(ctx, id, req.Text)
		done <- sendResult{conv: conv, replies: replies, err: err}
	}()

	var res sendResult
	select {
	case res = <-done:
	case <-ctx.Done():
		select {
		case res = <-done:
		default:
			common.LogWarn("Turn outlived request deadline",
				zap.String("session_id", id),
				zap.Error(ctx.Err()),
			)
			h.fail(c, common.ErrGatewayTimeout.Wrap(ctx.Err()))
			return
		}
	}

	if res.err != nil {
		h.fail(c, res.err)
		return
	}
	c.JSON(http.StatusOK, SendMessageResponse{
		Replies: res.replies,
		Session: h.toResponse(res.conv),
	})
}

// DeleteSession 結束對話
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.conversations.End(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) toResponse(conv *session.Conversation) SessionResponse {
	favorites := conv.State.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	return SessionResponse{
		ID:        conv.ID,
		Step:      conv.State.Step,
		Language:  string(conv.State.Language),
		Cuisine:   conv.State.Cuisine,
		Dish:      conv.State.Dish,
		Favorites: favorites,
		Busy:      h.conversations.Busy(conv.ID),
		Messages:  conv.Transcript.Messages(),
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, resp := common.ToResponse(err, h.debug)
	if status >= http.StatusInternalServerError {
		common.LogError("Chat request failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}
