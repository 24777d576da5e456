package translate

import "strings"

// languageRule carries a script-correction directive triggered when the
// target language matches any of its synonyms. Matching is case-insensitive
// and tolerant of regional qualifiers ("Simplified Chinese", "zh-CN").
type languageRule struct {
	synonyms  []string
	directive string
}

var languageRules = []languageRule{
	{
		synonyms: []string{
			"chinese", "simplified chinese", "traditional chinese",
			"mandarin", "zh", "zh-cn", "zh-tw", "zh-hans", "zh-hant",
			"中文", "汉语", "漢語", "简体中文", "繁體中文",
		},
		directive: "Render all translated text in correct Chinese characters. " +
			"Do not mix in phonetic transcription, and keep the character set " +
			"(simplified or traditional) consistent across the whole page.",
	},
	{
		synonyms: []string{"japanese", "ja", "ja-jp", "日本語"},
		directive: "Render all translated text in natural Japanese, using kanji " +
			"with kana as appropriate. Do not output romaji.",
	},
	{
		synonyms: []string{"korean", "ko", "ko-kr", "한국어"},
		directive: "Render all translated text in Hangul. Do not output " +
			"romanized Korean.",
	},
	{
		synonyms: []string{"arabic", "ar", "العربية"},
		directive: "Render all translated text in Arabic script with correct " +
			"right-to-left layout.",
	},
}

// scriptDirective returns the script-correction directive for the target
// language, or "" when no rule applies.
func scriptDirective(targetLang string) string {
	normalized := strings.ToLower(strings.TrimSpace(targetLang))
	if normalized == "" {
		return ""
	}
	for _, rule := range languageRules {
		for _, syn := range rule.synonyms {
			if normalized == strings.ToLower(syn) {
				return rule.directive
			}
		}
		// Qualified forms like "Chinese (Simplified)" or "zh-CN script"
		// still match on the bare synonym.
		for _, syn := range rule.synonyms {
			lowered := strings.ToLower(syn)
			if len(lowered) > 2 && strings.Contains(normalized, lowered) {
				return rule.directive
			}
		}
	}
	return ""
}
