package entity

import (
	"regexp"
	"strings"
)

// BasicInfo 判决书首部的基本信息
type BasicInfo struct {
	Citations  []string `json:"citations"`
	Appellant  string   `json:"appellant,omitempty"`
	Respondent string   `json:"respondent,omitempty"`
	Judge      string   `json:"judge,omitempty"`
	Dates      []string `json:"dates"`
}

// LegalConcepts 判决书中出现的法律概念
type LegalConcepts struct {
	SectionNumbers []string `json:"section_numbers"`
	CaseNames      []string `json:"case_names"`
	LegalTerms     []string `json:"legal_terms"`
}

const maxCaseNames = 10

var (
	neutralCitationRe = regexp.MustCompile(`\d{4}\s+(?:INSC|SCC|SC)\s+\d+`)
	partiesRe         = regexp.MustCompile(`([A-Z\s\.\,]+)\s*…?\s*APPELLANT\S*\s+VERSUS\s+([A-Z\s\.\,]+)\s*…?\s*RESPONDENT`)
	judgeRe           = regexp.MustCompile(`J U D G M E N T\s+([A-Z\s\.\,]+),?\s*J\.`)
	dateRe            = regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{4}`)
	sectionNumberRe   = regexp.MustCompile(`Section\s+(\d+[A-Za-z]?(?:\(\d+\))?)`)
	caseNameRe        = regexp.MustCompile(`[A-Z\s]+v\.?\s+[A-Z\s]+(?:\(\d{4}\)\s*\d+\s*[A-Z]+\s*\d+)?`)
)

// legalTerms 需要统计的常见法律术语
var legalTerms = []string{
	"appeal", "petition", "writ", "mandamus", "certiorari", "prohibition",
	"habeas corpus", "jurisdiction", "constitutional", "fundamental rights",
	"directive principles", "due process", "natural justice",
}

// ExtractBasicInfo 抽取中立引用、当事人、主审法官和日期
func ExtractBasicInfo(text string) BasicInfo {
	info := BasicInfo{
		Citations: nonNil(neutralCitationRe.FindAllString(text, -1)),
		Dates:     nonNil(dateRe.FindAllString(text, -1)),
	}

	if m := partiesRe.FindStringSubmatch(text); m != nil {
		info.Appellant = strings.TrimSpace(m[1])
		info.Respondent = strings.TrimSpace(m[2])
	}
	if m := judgeRe.FindStringSubmatch(text); m != nil {
		info.Judge = strings.Trim(m[1], " \t\r\n,")
	}

	return info
}

// ExtractLegalConcepts 抽取条款编号、案例名称和出现过的法律术语
func ExtractLegalConcepts(text string) LegalConcepts {
	concepts := LegalConcepts{
		SectionNumbers: []string{},
		CaseNames:      []string{},
		LegalTerms:     FindLegalTerms(text),
	}

	seen := make(map[string]struct{})
	for _, m := range sectionNumberRe.FindAllStringSubmatch(text, -1) {
		if _, ok := seen[m[1]]; !ok {
			seen[m[1]] = struct{}{}
			concepts.SectionNumbers = append(concepts.SectionNumbers, m[1])
		}
	}

	for _, m := range caseNameRe.FindAllString(text, -1) {
		name := strings.TrimSpace(m)
		if len(name) <= 10 {
			continue
		}
		concepts.CaseNames = append(concepts.CaseNames, name)
		if len(concepts.CaseNames) == maxCaseNames {
			break
		}
	}

	return concepts
}

// FindLegalTerms 按固定顺序返回文本中出现的法律术语
func FindLegalTerms(text string) []string {
	lower := strings.ToLower(text)
	found := []string{}
	for _, term := range legalTerms {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}
	return found
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
