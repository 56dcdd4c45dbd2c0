package chat

import (
	"strconv"
	"strings"
)

// CommandKind 在步驟分派之前辨識的指令種類
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandFavorites
	CommandSave
	CommandUnsave
	CommandFavoritePick
	CommandImageRetry
)

// String 回傳指令種類名稱，用於日誌
func (k CommandKind) String() string {
	switch k {
	case CommandFavorites:
		return "favorites"
	case CommandSave:
		return "save"
	case CommandUnsave:
		return "unsave"
	case CommandFavoritePick:
		return "favorite_pick"
	case CommandImageRetry:
		return "image_retry"
	default:
		return "none"
	}
}

// Command 解析後的指令；Index 僅在 CommandFavoritePick 時有意義（從 1 起算）
type Command struct {
	Kind  CommandKind
	Index int
}

// ParseCommand 依優先順序比對指令，不處理語言切換
func ParseCommand(input string) Command {
	lower := strings.ToLower(strings.TrimSpace(input))

	switch {
	case lower == "my favorites":
		return Command{Kind: CommandFavorites}
	case strings.HasPrefix(lower, "save"):
		return Command{Kind: CommandSave}
	case strings.HasPrefix(lower, "unsave"):
		return Command{Kind: CommandUnsave}
	case lower == "image":
		return Command{Kind: CommandImageRetry}
	}

	if n, ok := parseIndex(lower); ok {
		return Command{Kind: CommandFavoritePick, Index: n}
	}
	return Command{Kind: CommandNone}
}

// parseIndex 只接受純數字的正整數
func parseIndex(s string) (int, bool) {
	if s == "" || len(s) > 4 {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
