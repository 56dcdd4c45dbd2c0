package chat

import (
	"fmt"
	"strings"
)

const (
	msgNoFavorites     = "You have no favorite recipes saved yet."
	msgNothingToSave   = "There is no recipe in context to save. Please generate a recipe first."
	msgNothingToUnsave = "There is no recipe in context to unsave."
	msgInvalidLanguage = "Please choose a valid language from the list."

	// ImageRetryHint 圖片取得失敗時附加在食譜後的提示
	ImageRetryHint = "\n\n(Couldn’t fetch a reliable image. Reply ‘Image’ to try again.)"
)

func favoritesList(favorites []string) string {
	var sb strings.Builder
	sb.WriteString("Favorites:\n")
	for i, fav := range favorites {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d) %s", i+1, fav)
	}
	sb.WriteString("\n\nReply with a number to get the recipe.")
	return sb.String()
}

func savedMessage(dish string) string {
	return fmt.Sprintf("\"%s\" has been saved to your favorites!", dish)
}

func removedMessage(dish string) string {
	return fmt.Sprintf("\"%s\" has been removed from your favorites.", dish)
}

func notSavedMessage(dish string) string {
	return fmt.Sprintf("\"%s\" was not in your favorites.", dish)
}

func imageFoundMessage(dish string) string {
	return fmt.Sprintf("Here is the image for \"%s\".", dish)
}

func imageMissingMessage(dish string) string {
	return fmt.Sprintf("Still couldn't fetch an image for \"%s\". Reply ‘Image’ to try again.", dish)
}
