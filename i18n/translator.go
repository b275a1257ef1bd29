package i18n

import "golang.org/x/text/language"

// Translator retrieves localized messages for error codes.
// data provides optional details appended to the message ("schema",
// "segment" and "path", in that order).
type Translator interface {
	Message(code string, data map[string]string) string
}

var messages = map[string]map[string]string{
	"en": {
		"invalid_argument": "invalid argument",
		"path_resolution":  "path does not resolve",
		"node_not_found":   "no schema node",
		"parse_error":      "parse error",
		"too_deep":         "document nests too deeply",
		"duplicate_key":    "duplicate key",
		"schema_violation": "document does not match the schema",
		"unknown_schema":   "unknown schema",
		"internal":         "internal error",
	},
	"ja": {
		"invalid_argument": "引数が不正です",
		"path_resolution":  "パスを解決できません",
		"node_not_found":   "スキーマノードが見つかりません",
		"parse_error":      "解析エラー",
		"too_deep":         "ネストが深すぎます",
		"duplicate_key":    "キーが重複しています",
		"schema_violation": "スキーマに適合しません",
		"unknown_schema":   "未知のスキーマです",
		"internal":         "内部エラー",
	},
}

var detailKeys = []string{"schema", "segment", "path"}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := messages[t.lang][code]
	if !ok {
		return code
	}
	for _, k := range detailKeys {
		if v := data[k]; v != "" {
			msg += ": " + v
		}
	}
	return msg
}

var supported = []language.Tag{language.English, language.Japanese}

var matcher = language.NewMatcher(supported)

// Match picks "en" or "ja" for an Accept-Language header value.
func Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No || idx == 0 {
		return "en"
	}
	return "ja"
}

// For returns the built-in Translator of lang; unknown languages get "en".
func For(lang string) Translator {
	if _, ok := messages[lang]; !ok {
		lang = "en"
	}
	return dictTranslator{lang: lang}
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	currentTranslator = For(lang)
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
