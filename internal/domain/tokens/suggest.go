package tokens

import (
	"fmt"
	"regexp"
	"strings"
)

// Suggestion thresholds.
const (
	verboseWordCount  = 2000 // word count beyond which prose is worth condensing
	repeatedLineMin   = 11   // shortest line length considered for repetition
	exampleMaxCount   = 10   // example mentions tolerated before flagging
	longCodeBlockSize = 500  // characters before a code block counts as long
	boldMarkerLimit   = 50
	starMarkerLimit   = 100
)

var exampleRe = regexp.MustCompile(`(?i)example|sample|demo`)

// Suggestion is one optimization opportunity in a document.
type Suggestion struct {
	Type         string `json:"type"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	TokenSavings int    `json:"token_savings"`
	Priority     string `json:"priority"`
	Action       string `json:"action"`
}

// Optimization is the suggestion report for one document.
type Optimization struct {
	File             string       `json:"file"`
	CurrentTokens    int          `json:"current_tokens"`
	Suggestions      []Suggestion `json:"optimization_suggestions"`
	PotentialSavings int          `json:"potential_savings"`
	PriorityActions  []Suggestion `json:"priority_actions"`
	Difficulty       string       `json:"implementation_difficulty"`
}

// Optimize analyzes a document and derives token-saving suggestions.
// The File field is left to the caller.
func Optimize(content string) *Optimization {
	est := EstimateText(content)
	suggestions := suggest(content, est)

	opt := &Optimization{
		CurrentTokens:   est.EstimatedTokens,
		Suggestions:     suggestions,
		PriorityActions: []Suggestion{},
	}
	for _, s := range suggestions {
		opt.PotentialSavings += s.TokenSavings
		if s.Priority == "high" {
			opt.PriorityActions = append(opt.PriorityActions, s)
		}
	}
	opt.Difficulty = difficulty(suggestions, opt.PotentialSavings)
	return opt
}

func suggest(content string, est *Estimate) []Suggestion {
	suggestions := []Suggestion{}

	if est.WordCount > verboseWordCount {
		suggestions = append(suggestions, Suggestion{
			Type:         "verbosity",
			Title:        "Reduce verbose explanations",
			Description:  "Content is quite verbose. Consider condensing explanations and focusing on key points.",
			TokenSavings: int(float64(est.EstimatedTokens) * 0.2),
			Priority:     "medium",
			Action:       "Review and condense verbose sections",
		})
	}

	if repeats := repeatedLines(content); repeats > 0 {
		suggestions = append(suggestions, Suggestion{
			Type:         "repetition",
			Title:        "Remove repetitive content",
			Description:  fmt.Sprintf("Found %d potentially repetitive sections", repeats),
			TokenSavings: repeats * 10,
			Priority:     "high",
			Action:       "Consolidate or remove repeated information",
		})
	}

	if examples := len(exampleRe.FindAllString(content, -1)); examples > exampleMaxCount {
		suggestions = append(suggestions, Suggestion{
			Type:         "examples",
			Title:        "Reduce number of examples",
			Description:  fmt.Sprintf("Found %d example sections. Consider keeping only the most relevant ones.", examples),
			TokenSavings: examples * 20,
			Priority:     "medium",
			Action:       "Keep 3-5 most relevant examples, remove others",
		})
	}

	if long := longCodeBlocks(content); long > 0 {
		suggestions = append(suggestions, Suggestion{
			Type:         "code_blocks",
			Title:        "Shorten code examples",
			Description:  fmt.Sprintf("Found %d lengthy code blocks", long),
			TokenSavings: long * codeBlockTokens,
			Priority:     "medium",
			Action:       "Use shorter, focused code snippets or pseudocode",
		})
	}

	if strings.Count(content, "**") > boldMarkerLimit || strings.Count(content, "*") > starMarkerLimit {
		suggestions = append(suggestions, Suggestion{
			Type:         "formatting",
			Title:        "Simplify formatting",
			Description:  "Excessive markdown formatting may use extra tokens",
			TokenSavings: 20,
			Priority:     "low",
			Action:       "Use simpler formatting, focus on content over style",
		})
	}

	return suggestions
}

// repeatedLines counts distinct substantial lines that occur more than once.
func repeatedLines(content string) int {
	counts := make(map[string]int)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) >= repeatedLineMin {
			counts[trimmed]++
		}
	}
	repeats := 0
	for _, n := range counts {
		if n > 1 {
			repeats++
		}
	}
	return repeats
}

func longCodeBlocks(content string) int {
	long := 0
	for _, block := range codeBlockRe.FindAllString(content, -1) {
		if len(block) > longCodeBlockSize {
			long++
		}
	}
	return long
}

func difficulty(suggestions []Suggestion, totalSavings int) string {
	if len(suggestions) == 0 {
		return "none"
	}
	highPriority := 0
	for _, s := range suggestions {
		if s.Priority == "high" {
			highPriority++
		}
	}
	switch {
	case highPriority > 2 || totalSavings > 1000:
		return "moderate"
	case totalSavings > 200:
		return "easy"
	default:
		return "minimal"
	}
}
