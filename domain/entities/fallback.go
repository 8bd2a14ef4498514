package entities

// fallbackTexts maps language codes to the fixed message substituted when
// suggestion generation fails. The message must be deterministic so a failed
// call never leaks provider error details to the client or the transcript
// history.
var fallbackTexts = map[string]string{
	"en-US": "Sorry, I couldn't come up with a suggestion right now.",
	"ko-KR": "죄송합니다, 지금은 답변 제안을 생성하지 못했습니다.",
	"ja-JP": "申し訳ありません、現在提案を生成できませんでした。",
	"id-ID": "Maaf, saat ini saya tidak dapat memberikan saran jawaban.",
}

// FallbackText returns the fixed, language-appropriate message used in place
// of a generated suggestion when the generator fails or times out.
func FallbackText(language string) string {
	if text, ok := fallbackTexts[language]; ok {
		return text
	}
	return fallbackTexts[DefaultLanguage]
}
