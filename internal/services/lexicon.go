package services

import (
	"strings"
	"unicode"
)

// Severity 词库命中等级
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"    // 自动打码后可直接发布
	SeverityMedium Severity = "medium" // 提示作者并转人工复核
	SeverityHigh   Severity = "high"   // 直接拒绝提交
)

func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Classification 分类结果。Censored 仅在 low 时有值。
type Classification struct {
	HasMatch bool
	Severity Severity
	Censored string
}

// 默认词库，按等级分三档。只做英文逐词匹配，
// 多语言识别不在范围内（中文连写无法按词边界切分）。
var (
	defaultLowWords = []string{
		"damn", "hell", "crap", "jerk", "idiot", "stupid", "moron", "wtf",
	}
	defaultMediumWords = []string{
		"asshole", "bastard", "bitch", "bullshit", "douchebag", "dumbass",
	}
	defaultHighWords = []string{
		"fuck", "fucker", "fucking", "motherfucker", "cunt",
	}
)

// LexiconFilter 确定性的分词分类器：无外部状态、无随机性，
// 同一输入永远得到同一结果。
type LexiconFilter struct {
	minChars int
	words    map[string]Severity
}

// NewLexiconFilter 构造默认词库的过滤器。
// minChars 以下的短文本不参与分类，避免短回复误伤。
func NewLexiconFilter(minChars int) *LexiconFilter {
	f := &LexiconFilter{
		minChars: minChars,
		words:    make(map[string]Severity),
	}
	// 同一个词出现在多档时保留高档
	for _, w := range defaultLowWords {
		f.addWord(w, SeverityLow)
	}
	for _, w := range defaultMediumWords {
		f.addWord(w, SeverityMedium)
	}
	for _, w := range defaultHighWords {
		f.addWord(w, SeverityHigh)
	}
	return f
}

func (f *LexiconFilter) addWord(word string, sev Severity) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}
	if severityRank(sev) > severityRank(f.words[word]) {
		f.words[word] = sev
	}
}

// Classify 对文本做词边界匹配，返回最高命中等级。
// 仅当全部命中都是 low 时生成打码文本：命中词替换为等长星号。
func (f *LexiconFilter) Classify(text string) Classification {
	runes := []rune(text)
	if len([]rune(strings.TrimSpace(text))) < f.minChars {
		return Classification{Severity: SeverityNone}
	}

	highest := SeverityNone
	masked := make([]rune, len(runes))
	copy(masked, runes)
	hasLow := false

	for _, tok := range tokenize(runes) {
		sev, ok := f.words[strings.ToLower(string(runes[tok.start:tok.end]))]
		if !ok {
			continue
		}
		if severityRank(sev) > severityRank(highest) {
			highest = sev
		}
		if sev == SeverityLow {
			hasLow = true
			for i := tok.start; i < tok.end; i++ {
				masked[i] = '*'
			}
		}
	}

	if highest == SeverityNone {
		return Classification{Severity: SeverityNone}
	}

	result := Classification{HasMatch: true, Severity: highest}
	if highest == SeverityLow && hasLow {
		result.Censored = string(masked)
	}
	return result
}

type span struct {
	start, end int // rune 下标，左闭右开
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// tokenize 按非字母数字边界切词
func tokenize(runes []rune) []span {
	var spans []span
	start := -1
	for i, r := range runes {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			spans = append(spans, span{start, i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, len(runes)})
	}
	return spans
}
