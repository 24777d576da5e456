package evaluate

import (
	"fmt"
	"strings"
)

// Dimensions are the nine scoring dimensions, in reporting order. Each is
// scored in [0,10] by the remote evaluator.
var Dimensions = []string{
	"accuracy",
	"fluency",
	"consistency",
	"terminology",
	"completeness",
	"format_preservation",
	"spelling",
	"trademark_protection",
	"redundancy_removal",
}

var dimensionDescriptions = map[string]string{
	"accuracy":             "the translation conveys the source meaning without errors or invention",
	"fluency":              "the translated text reads naturally in the target language",
	"consistency":          "terms and phrasing are used consistently across the page",
	"terminology":          "domain terms follow the glossary and standard usage",
	"completeness":         "all translatable source text is present in the translation",
	"format_preservation":  "layout, typography, tables and graphics match the original",
	"spelling":             "no spelling or character errors in the translated text",
	"trademark_protection": "brand names, logos and trademarks are preserved untranslated",
	"redundancy_removal":   "content duplicated across languages in the source appears once",
}

// CriteriaText renders the full criteria block sent to the remote evaluator,
// including the scoring carve-outs. The carve-outs live here because the
// evaluator must apply them while scoring; filtering its response afterwards
// cannot undo a completeness penalty it already applied.
func CriteriaText() string {
	var b strings.Builder
	b.WriteString("Score each of the following dimensions from 0 to 10:\n")
	for _, dim := range Dimensions {
		fmt.Fprintf(&b, "- %s: %s\n", dim, dimensionDescriptions[dim])
	}
	b.WriteString("\nScoring carve-outs, apply while scoring:\n")
	b.WriteString("- Untranslated brand names, logos and trademarks are correct behavior. ")
	b.WriteString("Do not penalize completeness or accuracy for preserving them.\n")
	b.WriteString("- Where the source page showed the same content in multiple languages, ")
	b.WriteString("a single consolidated rendering is correct behavior. Do not penalize ")
	b.WriteString("completeness for the removed duplicate.\n")
	return b.String()
}
