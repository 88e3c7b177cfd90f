package entity

import (
	"regexp"
	"sort"
)

// Bundle 从判决书中抽取的法律实体
// 各字段永远不为nil，已去重并排序
type Bundle struct {
	Acts      []string `json:"acts"`
	Sections  []string `json:"sections"`
	Citations []string `json:"citations"`
	Judges    []string `json:"judges"`
}

// Extractor 基于正则规则的法律实体抽取器
// 规则是启发式的，允许误报和漏报
type Extractor struct {
	acts      []*regexp.Regexp
	sections  []*regexp.Regexp
	citations []*regexp.Regexp
	judges    []*regexp.Regexp
}

// NewExtractor 创建实体抽取器
// 法案、条款、法官忽略大小写，案例引用区分大小写
func NewExtractor() *Extractor {
	return &Extractor{
		acts: compileAll(
			`(?i)\w+\s+Act,?\s+\d{4}`,
			`(?i)Indian\s+\w+\s+Act`,
			`(?i)Code\s+of\s+\w+\s+Procedure`,
		),
		sections: compileAll(
			`(?i)Section\s+\d+[A-Z]?`,
			`(?i)Article\s+\d+[A-Z]?`,
			`(?i)Rule\s+\d+[A-Z]?`,
		),
		citations: compileAll(
			`AIR\s+\d{4}\s+SC\s+\d+`,
			`\d{4}\s+SCR\s*\([^\)]*\)\s*\d+`,
		),
		judges: compileAll(
			`(?i)Justice\s+[A-Z][a-zA-Z]+`,
			`(?i)Hon.?ble\s+Mr.?\s+Justice\s+[A-Z][a-zA-Z]+`,
		),
	}
}

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}

// Extract 对全文依次应用各类规则，合并匹配结果
func (e *Extractor) Extract(text string) Bundle {
	return Bundle{
		Acts:      findAll(e.acts, text),
		Sections:  findAll(e.sections, text),
		Citations: findAll(e.citations, text),
		Judges:    findAll(e.judges, text),
	}
}

// findAll 合并多个规则的匹配，去重后排序
func findAll(patterns []*regexp.Regexp, text string) []string {
	seen := make(map[string]struct{})
	for _, re := range patterns {
		for _, m := range re.FindAllString(text, -1) {
			seen[m] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
