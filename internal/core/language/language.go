// Package language 支援的對話語言登錄表
package language

import "strings"

// Code 語言代碼
type Code string

const (
	Marathi   Code = "mr"
	English   Code = "en"
	Hindi     Code = "hi"
	Telugu    Code = "te"
	Tamil     Code = "ta"
	Kannada   Code = "kn"
	Malayalam Code = "ml"
)

// Default 無語言內容時用來呈現提示的語言
const Default = English

// Language 登錄表中的一筆語言
type Language struct {
	Name string `json:"name"`
	Code Code   `json:"code"`
}

var registry = []Language{
	{Name: "Marathi", Code: Marathi},
	{Name: "English", Code: English},
	{Name: "Hindi", Code: Hindi},
	{Name: "Telugu", Code: Telugu},
	{Name: "Tamil", Code: Tamil},
	{Name: "Kannada", Code: Kannada},
	{Name: "Malayalam", Code: Malayalam},
}

// Supported 回傳依顯示順序排列的語言列表副本
func Supported() []Language {
	out := make([]Language, len(registry))
	copy(out, registry)
	return out
}

// Lookup 以名稱查找語言（去除前後空白、不分大小寫、完全相符）
func Lookup(input string) (Language, bool) {
	name := strings.ToLower(strings.TrimSpace(input))
	for _, l := range registry {
		if strings.ToLower(l.Name) == name {
			return l, true
		}
	}
	return Language{}, false
}

// NameOf 回傳語言代碼對應的名稱，未知代碼回傳 English
func NameOf(code Code) string {
	for _, l := range registry {
		if l.Code == code {
			return l.Name
		}
	}
	return "English"
}

// Valid 判斷代碼是否在登錄表內
func (c Code) Valid() bool {
	for _, l := range registry {
		if l.Code == c {
			return true
		}
	}
	return false
}

// ChoicePrompt 語言選擇提示
func ChoicePrompt() string {
	names := make([]string, len(registry))
	for i, l := range registry {
		names[i] = l.Name
	}
	return "Choose language: " + strings.Join(names, " / ") + "."
}
