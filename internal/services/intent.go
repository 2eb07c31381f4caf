package services

import "strings"

// OptionIntent — распознанный вариант ответа в голосовом меню.
type OptionIntent int

const (
	OptionUnknown OptionIntent = iota
	OptionHistory
	OptionNewComplaint
)

// ClassifyOption сопоставляет расшифровку речи с пунктом меню по вхождению
// подстроки. Распознавание речи отдает то цифру, то слово, поэтому
// проверяются обе формы. Порядок фиксирован: history проверяется раньше new,
// и фраза, содержащая оба варианта, уходит в ветку истории.
func ClassifyOption(transcript string) OptionIntent {
	speech := strings.ToLower(transcript)
	switch {
	case strings.Contains(speech, "1") || strings.Contains(speech, "one") || strings.Contains(speech, "history"):
		return OptionHistory
	case strings.Contains(speech, "2") || strings.Contains(speech, "two") || strings.Contains(speech, "new"):
		return OptionNewComplaint
	default:
		return OptionUnknown
	}
}
