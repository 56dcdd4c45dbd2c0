// Package chat 對話狀態機：依目前步驟解讀使用者輸入並決定下一個狀態與機器人回覆
package chat

import (
	"context"
	"time"

	"chefbot/internal/core/language"
)

// Step 對話流程目前所在的步驟
type Step string

const (
	StepLanguage        Step = "language"
	StepCuisine         Step = "cuisine"
	StepDish            Step = "dish"
	StepRecipeGenerated Step = "recipe_generated"
)

// Valid 判斷步驟是否為已知值
func (s Step) Valid() bool {
	switch s {
	case StepLanguage, StepCuisine, StepDish, StepRecipeGenerated:
		return true
	}
	return false
}

// Session 單一對話的狀態；空字串代表尚未設定
type Session struct {
	Step      Step          `json:"step"`
	Language  language.Code `json:"language,omitempty"`
	Cuisine   string        `json:"cuisine,omitempty"`
	Dish      string        `json:"dish,omitempty"`
	Favorites []string      `json:"favorites"`
}

// NewSession 建立停在語言選擇步驟的新狀態
func NewSession() Session {
	return Session{
		Step:      StepLanguage,
		Favorites: []string{},
	}
}

// Clone 回傳不與原值共用 Favorites 的副本
func (s Session) Clone() Session {
	out := s
	out.Favorites = make([]string, len(s.Favorites))
	copy(out.Favorites, s.Favorites)
	return out
}

// HasFavorite 以完全相符比對收藏
func (s Session) HasFavorite(dish string) bool {
	for _, f := range s.Favorites {
		if f == dish {
			return true
		}
	}
	return false
}

// Sender 訊息發送者
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message 逐字稿中的一則訊息，建立後不再變動
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Reply 狀態機產生的一則機器人回覆
type Reply struct {
	Text  string
	Image string
}

// Turn 一次輸入處理的結果
type Turn struct {
	Session Session
	Replies []Reply
}

// Backend 生成式後端；實作必須自行吸收錯誤並回傳後備值
type Backend interface {
	// TranslatePrompt 回傳指定步驟的提示語（已翻譯或英文後備）
	TranslatePrompt(ctx context.Context, step Step, lang language.Code) string
	// GenerateRecipe 回傳完整食譜文字或固定的道歉字串
	GenerateRecipe(ctx context.Context, lang language.Code, cuisine, dish string) string
	// GenerateRecipeImage 回傳圖片參照，無圖片時回傳空字串
	GenerateRecipeImage(ctx context.Context, dish, cuisine string) string
}
