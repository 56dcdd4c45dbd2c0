package backend

import (
	"fmt"

	"chefbot/internal/core/chat"
)

const (
	defaultCuisinePrompt = "Pick a cuisine (e.g., Indian, Chinese, Mexican, Thai, Italian)."
	defaultDishPrompt    = "Tell me the dish name."

	recipeTemplate = `
You are ChefBot, a master-chef assistant.
Generate a recipe for the dish "%[1]s" from "%[2]s" cuisine.
The entire response MUST be in the %[3]s language.
Follow this exact format, using short lines and WhatsApp-friendly formatting (no markdown tables):

<Dish Name> · <Cuisine>
Time: Prep <X> min · Cook <Y> min · Total <Z> min
Servings: <N>

Ingredients:
• <qty> <unit> <ingredient> (e.g., 1 cup (200 g) Rajma, soaked overnight)
• ...

Method:
1. <step>
2. <step>
...

Tips/Notes:
• <tip 1> (optional)
• <tip 2> (optional)

Actions: Reply Save to favorite · My favorites to view

VERY IMPORTANT:
- Do not add any introductory text or closing remarks.
- The entire response must be a single block of text.
- Be concise and clear.
- Provide exact metric quantities, with US units in parentheses if natural.
`
)

// defaultPrompt 回傳步驟的英文提示；language 步驟沒有可翻譯的提示
func defaultPrompt(step chat.Step) (string, bool) {
	switch step {
	case chat.StepCuisine:
		return defaultCuisinePrompt, true
	case chat.StepDish:
		return defaultDishPrompt, true
	}
	return "", false
}

func translatePrompt(languageName, english string) string {
	return fmt.Sprintf("Translate this to %s: \"%s\" Respond with only the translation.", languageName, english)
}

func recipePrompt(languageName, cuisine, dish string) string {
	return fmt.Sprintf(recipeTemplate, dish, cuisine, languageName)
}

func imagePrompt(dish, cuisine string) string {
	return fmt.Sprintf("A clear, appetizing photo of \"%s\", a classic %s dish. High quality, food photography style.", dish, cuisine)
}

func recipeApology(dish string) string {
	return fmt.Sprintf("Sorry, I couldn't generate the recipe for %s. Please try another dish.", dish)
}
