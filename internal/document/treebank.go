package document

import (
	"regexp"
	"strings"
)

type treebankRule struct {
	re   *regexp.Regexp
	repl string
}

func rule(pattern, repl string) treebankRule {
	return treebankRule{re: regexp.MustCompile(pattern), repl: repl}
}

// Penn Treebank分词规则，按顺序执行
var (
	treebankStartingQuotes = []treebankRule{
		rule(`^"`, "``"),
		rule("(``)", " $1 "),
		rule(`([ (\[{<])("|'')`, "$1 `` "),
	}

	treebankPunctuation = []treebankRule{
		rule(`([:,])([^\d])`, " $1 $2"),
		rule(`([:,])$`, " $1 "),
		rule(`\.\.\.`, " ... "),
		rule(`[;@#$%&]`, " $0 "),
		// 句末句点，后面可以跟闭合括号和引号
		rule(`([^.])(\.)([\])}>"']*)\s*$`, "$1 $2$3 "),
		rule(`[?!]`, " $0 "),
		rule(`([^'])' `, "$1 ' "),
		rule(`[\][(){}<>]`, " $0 "),
		rule(`--`, " -- "),
	}

	treebankEndingQuotes = []treebankRule{
		rule(`"`, " '' "),
		rule(`(\S)('')`, "$1 $2 "),
		rule(`([^' ])('[sS]|'[mM]|'[dD]|') `, "$1 $2 "),
		rule(`([^' ])('ll|'LL|'re|'RE|'ve|'VE|n't|N'T) `, "$1 $2 "),
	}

	treebankContractions = []treebankRule{
		rule(`(?i)\b(can)(not)\b`, " $1 $2 "),
		rule(`(?i)\b(d)('ye)\b`, " $1 $2 "),
		rule(`(?i)\b(gim)(me)\b`, " $1 $2 "),
		rule(`(?i)\b(gon)(na)\b`, " $1 $2 "),
		rule(`(?i)\b(got)(ta)\b`, " $1 $2 "),
		rule(`(?i)\b(lem)(me)\b`, " $1 $2 "),
		rule(`(?i)\b(more)('n)\b`, " $1 $2 "),
		rule(`(?i)\b(wan)(na)(\s)`, " $1 $2$3"),
		rule(`(?i) ('t)(is)\b`, " $1 $2 "),
		rule(`(?i) ('t)(was)\b`, " $1 $2 "),
	}
)

// TreebankTokens 先分句再按Penn Treebank规则分词，结果为小写，用于BLEU计算
// 缩写拆开（didn't → did n't，court's → court 's），句末句点单独成词，数字中的逗号保留
func TreebankTokens(text string) []string {
	var tokens []string
	for _, sentence := range SplitSentences(text) {
		tokens = append(tokens, treebankSentence(strings.ToLower(sentence))...)
	}
	return tokens
}

func treebankSentence(s string) []string {
	s = applyRules(s, treebankStartingQuotes)
	s = applyRules(s, treebankPunctuation)
	s = applyRules(" "+s+" ", treebankEndingQuotes)
	s = applyRules(s, treebankContractions)
	return strings.Fields(s)
}

func applyRules(s string, rules []treebankRule) string {
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}
