// Package tokens estimates LLM token usage for context documents and
// derives optimization suggestions from document structure. Counting is a
// word-ratio heuristic; exact tokenizers differ per provider and are not
// worth the dependency here.
package tokens

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Estimation weights. Observable through the estimate contract.
const (
	wordsToTokens    = 1.3 // average tokens per whitespace-delimited word
	codeBlockTokens  = 50  // surcharge per fenced code block
	inlineCodeTokens = 2   // surcharge per inline code span
	urlTokens        = 5   // surcharge per URL
)

// costPer1K lists USD prices per thousand tokens by provider model.
var costPer1K = map[string]float64{
	"claude_sonnet": 0.003,
	"claude_haiku":  0.00025,
	"gpt4":          0.01,
	"gpt4_turbo":    0.01,
	"gpt35_turbo":   0.0005,
	"gemini_pro":    0.00025,
}

var (
	codeBlockRe  = regexp.MustCompile("```[\\s\\S]*?```")
	inlineCodeRe = regexp.MustCompile("`[^`]+`")
	urlRe        = regexp.MustCompile(`https?://\S+`)
	numberedRe   = regexp.MustCompile(`^\s*\d+\.\s`)
	sectionRe    = regexp.MustCompile(`(?m)^#+\s+(.+)`)
)

// SpecialContent counts the elements that attract token surcharges.
type SpecialContent struct {
	CodeBlocks int `json:"code_blocks"`
	InlineCode int `json:"inline_code"`
	URLs       int `json:"urls"`
}

// Breakdown splits an estimate by content type.
type Breakdown struct {
	BaseTokens       int            `json:"base_tokens"`
	CodeBlockTokens  int            `json:"code_block_tokens"`
	InlineCodeTokens int            `json:"inline_code_tokens"`
	URLTokens        int            `json:"url_tokens"`
	SpecialContent   SpecialContent `json:"special_content"`
}

// Structure describes the markdown layout of a document.
type Structure struct {
	TotalLines    int      `json:"total_lines"`
	Headers       int      `json:"headers"`
	BulletPoints  int      `json:"bullet_points"`
	NumberedLists int      `json:"numbered_lists"`
	EmptyLines    int      `json:"empty_lines"`
	Sections      []string `json:"sections"`
	SectionCount  int      `json:"section_count"`
}

// Estimate is the token estimation report for one document.
type Estimate struct {
	File            string             `json:"file"`
	FileSizeBytes   int                `json:"file_size_bytes"`
	CharacterCount  int                `json:"character_count"`
	WordCount       int                `json:"word_count"`
	EstimatedTokens int                `json:"estimated_tokens"`
	Breakdown       Breakdown          `json:"token_breakdown"`
	Analysis        Structure          `json:"content_analysis"`
	CostEstimates   map[string]float64 `json:"cost_estimates"`
	Potential       string             `json:"optimization_potential"`
}

// ErrorEstimate is the failure shape for estimates on unreadable files.
type ErrorEstimate struct {
	Error           string `json:"error"`
	EstimatedTokens int    `json:"estimated_tokens"`
}

// EstimateText computes the token estimate for a document's content.
// The File field is left to the caller, which knows the path it read.
func EstimateText(content string) *Estimate {
	words := len(strings.Fields(content))
	codeBlocks := len(codeBlockRe.FindAllString(content, -1))
	inlineCode := len(inlineCodeRe.FindAllString(content, -1))
	urls := len(urlRe.FindAllString(content, -1))

	breakdown := Breakdown{
		BaseTokens:       int(float64(words) * wordsToTokens),
		CodeBlockTokens:  codeBlocks * codeBlockTokens,
		InlineCodeTokens: inlineCode * inlineCodeTokens,
		URLTokens:        urls * urlTokens,
		SpecialContent: SpecialContent{
			CodeBlocks: codeBlocks,
			InlineCode: inlineCode,
			URLs:       urls,
		},
	}
	total := breakdown.BaseTokens + breakdown.CodeBlockTokens +
		breakdown.InlineCodeTokens + breakdown.URLTokens

	return &Estimate{
		FileSizeBytes:   len(content),
		CharacterCount:  utf8.RuneCountInString(content),
		WordCount:       words,
		EstimatedTokens: total,
		Breakdown:       breakdown,
		Analysis:        analyzeStructure(content),
		CostEstimates:   costEstimates(total),
		Potential:       potential(total),
	}
}

func analyzeStructure(content string) Structure {
	lines := strings.Split(content, "\n")

	s := Structure{TotalLines: len(lines), Sections: []string{}}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			s.EmptyLines++
		case strings.HasPrefix(trimmed, "#"):
			s.Headers++
		case strings.HasPrefix(trimmed, "-"):
			s.BulletPoints++
		}
		if numberedRe.MatchString(line) {
			s.NumberedLists++
		}
	}
	for _, m := range sectionRe.FindAllStringSubmatch(content, -1) {
		s.Sections = append(s.Sections, m[1])
	}
	s.SectionCount = len(s.Sections)
	return s
}

func costEstimates(tokenCount int) map[string]float64 {
	perK := float64(tokenCount) / 1000
	out := make(map[string]float64, len(costPer1K))
	for model, cost := range costPer1K {
		out[model] = math.Round(cost*perK*1e6) / 1e6
	}
	return out
}

func potential(tokenCount int) string {
	switch {
	case tokenCount < 1000:
		return "low"
	case tokenCount < 5000:
		return "medium"
	default:
		return "high"
	}
}
