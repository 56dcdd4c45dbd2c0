package chat

import (
	"context"

	"chefbot/internal/core/language"
	"chefbot/internal/pkg/common"

	"go.uber.org/zap"
)

// recipePipeline 食譜生成依序執行：文字、圖片、組裝
type recipePipeline struct {
	backend Backend
}

func (p recipePipeline) run(ctx context.Context, lang language.Code, cuisine, dish string) Reply {
	text := p.recipeText(ctx, lang, cuisine, dish)
	image := p.recipeImage(ctx, dish, cuisine)
	return assembleRecipe(text, image)
}

func (p recipePipeline) recipeText(ctx context.Context, lang language.Code, cuisine, dish string) string {
	return p.backend.GenerateRecipe(ctx, lang, cuisine, dish)
}

func (p recipePipeline) recipeImage(ctx context.Context, dish, cuisine string) string {
	image := p.backend.GenerateRecipeImage(ctx, dish, cuisine)
	if image == "" {
		common.LogInfo("Recipe image unavailable, sending text only",
			zap.String("dish", dish),
			zap.String("cuisine", cuisine),
		)
	}
	return image
}

// assembleRecipe 沒有圖片時附加重試提示
func assembleRecipe(text, image string) Reply {
	if image == "" {
		return Reply{Text: text + ImageRetryHint}
	}
	return Reply{Text: text, Image: image}
}
