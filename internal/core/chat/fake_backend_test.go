package chat

import (
	"context"
	"fmt"

	"chefbot/internal/core/language"
)

type recipeCall struct {
	Lang    language.Code
	Cuisine string
	Dish    string
}

type imageCall struct {
	Dish    string
	Cuisine string
}

type promptCall struct {
	Step Step
	Lang language.Code
}

// recordingBackend 記錄每一次呼叫並回傳可預測的結果
type recordingBackend struct {
	image   string
	calls   []string
	prompts []promptCall
	recipes []recipeCall
	images  []imageCall
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{image: "data:image/png;base64,AAAA"}
}

func (b *recordingBackend) TranslatePrompt(_ context.Context, step Step, lang language.Code) string {
	b.calls = append(b.calls, "prompt")
	b.prompts = append(b.prompts, promptCall{Step: step, Lang: lang})
	return fmt.Sprintf("prompt:%s:%s", step, lang)
}

func (b *recordingBackend) GenerateRecipe(_ context.Context, lang language.Code, cuisine, dish string) string {
	b.calls = append(b.calls, "recipe")
	b.recipes = append(b.recipes, recipeCall{Lang: lang, Cuisine: cuisine, Dish: dish})
	return fmt.Sprintf("recipe:%s:%s:%s", lang, cuisine, dish)
}

func (b *recordingBackend) GenerateRecipeImage(_ context.Context, dish, cuisine string) string {
	b.calls = append(b.calls, "image")
	b.images = append(b.images, imageCall{Dish: dish, Cuisine: cuisine})
	return b.image
}
