package chat

import (
	"context"
	"strings"

	"chefbot/internal/core/language"
	"chefbot/internal/pkg/common"

	"go.uber.org/zap"
)

// Machine 對話狀態機，本身不保存任何對話狀態
type Machine struct {
	backend  Backend
	pipeline recipePipeline
}

// NewMachine 建立狀態機
func NewMachine(backend Backend) *Machine {
	return &Machine{
		backend:  backend,
		pipeline: recipePipeline{backend: backend},
	}
}

// HandleInput 處理一次使用者輸入，回傳新的狀態與回覆；傳入的 session 不會被修改
func (m *Machine) HandleInput(ctx context.Context, current Session, raw string) Turn {
	next := current.Clone()
	if !next.Step.Valid() {
		next.Step = StepLanguage
	}
	if next.Language != "" && !next.Language.Valid() {
		next.Language = ""
	}
	text := strings.TrimSpace(raw)

	// 語言切換在任何步驟都生效
	if lang, ok := language.Lookup(text); ok {
		next.Language = lang.Code
		next.Cuisine = ""
		next.Dish = ""
		next.Step = StepCuisine
		common.LogDebug("Language selected",
			zap.String("language", string(lang.Code)),
			zap.String("from_step", string(current.Step)),
		)
		return m.reply(next, Reply{Text: m.backend.TranslatePrompt(ctx, StepCuisine, lang.Code)})
	}

	cmd := ParseCommand(text)
	switch cmd.Kind {
	case CommandFavorites:
		return m.listFavorites(next)
	case CommandSave:
		return m.save(next)
	case CommandUnsave:
		return m.unsave(next)
	case CommandFavoritePick:
		if turn, ok := m.pickFavorite(ctx, next, cmd.Index); ok {
			return turn
		}
	case CommandImageRetry:
		if turn, ok := m.retryImage(ctx, next); ok {
			return turn
		}
	}

	return m.dispatch(ctx, next, text)
}

// dispatch 依目前步驟解讀輸入
func (m *Machine) dispatch(ctx context.Context, next Session, text string) Turn {
	switch next.Step {
	case StepCuisine:
		next.Cuisine = text
		next.Step = StepDish
		return m.reply(next, Reply{Text: m.backend.TranslatePrompt(ctx, StepDish, promptLanguage(next))})

	case StepDish, StepRecipeGenerated:
		next.Dish = text
		return m.generateOrRecover(ctx, next)

	default:
		return m.reply(next, Reply{Text: msgInvalidLanguage})
	}
}

// generateOrRecover 有完整內容時生成食譜，否則退回缺少的步驟
func (m *Machine) generateOrRecover(ctx context.Context, next Session) Turn {
	switch {
	case next.Language != "" && next.Cuisine != "":
		next.Step = StepRecipeGenerated
		common.LogInfo("Generating recipe",
			zap.String("language", string(next.Language)),
			zap.String("cuisine", next.Cuisine),
			zap.String("dish", next.Dish),
		)
		return m.reply(next, m.pipeline.run(ctx, next.Language, next.Cuisine, next.Dish))

	case next.Language != "":
		next.Step = StepCuisine
		common.LogWarn("Cuisine missing, asking again", zap.String("dish", next.Dish))
		return m.reply(next, Reply{Text: m.backend.TranslatePrompt(ctx, StepCuisine, next.Language)})

	default:
		next.Step = StepLanguage
		common.LogWarn("Language missing, restarting language selection", zap.String("dish", next.Dish))
		return m.reply(next, Reply{Text: m.backend.TranslatePrompt(ctx, StepLanguage, language.Default)})
	}
}

func (m *Machine) listFavorites(next Session) Turn {
	if len(next.Favorites) == 0 {
		return m.reply(next, Reply{Text: msgNoFavorites})
	}
	return m.reply(next, Reply{Text: favoritesList(next.Favorites)})
}

func (m *Machine) save(next Session) Turn {
	if next.Dish == "" {
		return m.reply(next, Reply{Text: msgNothingToSave})
	}
	if !next.HasFavorite(next.Dish) {
		next.Favorites = append(next.Favorites, next.Dish)
	}
	return m.reply(next, Reply{Text: savedMessage(next.Dish)})
}

func (m *Machine) unsave(next Session) Turn {
	if next.Dish == "" {
		return m.reply(next, Reply{Text: msgNothingToUnsave})
	}
	if !next.HasFavorite(next.Dish) {
		return m.reply(next, Reply{Text: notSavedMessage(next.Dish)})
	}
	kept := next.Favorites[:0]
	for _, f := range next.Favorites {
		if f != next.Dish {
			kept = append(kept, f)
		}
	}
	next.Favorites = kept
	return m.reply(next, Reply{Text: removedMessage(next.Dish)})
}

// pickFavorite 以收藏清單的編號重新生成食譜
func (m *Machine) pickFavorite(ctx context.Context, next Session, index int) (Turn, bool) {
	if next.Step != StepRecipeGenerated || next.Language == "" || next.Cuisine == "" {
		return Turn{}, false
	}
	if index < 1 || index > len(next.Favorites) {
		return Turn{}, false
	}
	next.Dish = next.Favorites[index-1]
	return m.generateOrRecover(ctx, next), true
}

// retryImage 只重跑圖片階段
func (m *Machine) retryImage(ctx context.Context, next Session) (Turn, bool) {
	if next.Dish == "" || next.Cuisine == "" {
		return Turn{}, false
	}
	image := m.pipeline.recipeImage(ctx, next.Dish, next.Cuisine)
	if image == "" {
		return m.reply(next, Reply{Text: imageMissingMessage(next.Dish)}), true
	}
	return m.reply(next, Reply{Text: imageFoundMessage(next.Dish), Image: image}), true
}

func (m *Machine) reply(next Session, replies ...Reply) Turn {
	return Turn{Session: next, Replies: replies}
}

// promptLanguage 尚未選擇語言時以預設語言呈現提示
func promptLanguage(s Session) language.Code {
	if s.Language == "" {
		return language.Default
	}
	return s.Language
}
