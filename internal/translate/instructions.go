package translate

import (
	"fmt"
	"strings"

	"github.com/pagelingo/pagelingo/internal/providers"
)

// Mode selects the translation strategy.
type Mode string

const (
	// ModeDirect redraws the page translating from scratch in one call.
	ModeDirect Mode = "DIRECT"
	// ModeTwoStep extracts a segment mapping first, then redraws applying
	// the mapping verbatim.
	ModeTwoStep Mode = "TWO_STEP"
)

// InstructionParams carries everything the instruction builders need.
type InstructionParams struct {
	TargetLang string
	SourceLang string
	Glossary   string
	Feedback   string
	Segments   []providers.Segment // two-step only
}

// BuildInstructions composes the full redraw instruction text for the given
// mode. The redraw client is a dumb executor: everything mode-specific is
// encoded here.
func BuildInstructions(mode Mode, p InstructionParams) string {
	var clauses []string
	switch mode {
	case ModeTwoStep:
		clauses = []string{
			modeClauseTwoStep(p),
			mappingClause(p.Segments),
		}
	default:
		clauses = []string{modeClauseDirect(p)}
	}

	clauses = append(clauses,
		trademarkClause(),
		redundancyClause(p.TargetLang),
	)
	if g := glossaryClause(p.Glossary); g != "" {
		clauses = append(clauses, g)
	}
	if s := scriptDirective(p.TargetLang); s != "" {
		clauses = append(clauses, s)
	}
	if f := feedbackClause(p.Feedback); f != "" {
		clauses = append(clauses, f)
	}

	return strings.Join(clauses, "\n\n")
}

func modeClauseDirect(p InstructionParams) string {
	return fmt.Sprintf(
		"Redraw this entire page with every piece of %s text translated into %s. "+
			"Reproduce the layout, fonts, colors, images and graphical elements exactly; "+
			"only the language of the text changes.",
		sourceLabel(p.SourceLang), p.TargetLang)
}

func modeClauseTwoStep(p InstructionParams) string {
	return fmt.Sprintf(
		"Redraw this entire page in %s, applying the text replacements below verbatim. "+
			"Reproduce the layout, fonts, colors, images and graphical elements exactly; "+
			"replace each original text with its given translation.",
		p.TargetLang)
}

// mappingClause renders the extracted segment mapping one pair per line.
// An empty extraction must say so explicitly rather than injecting an
// empty block.
func mappingClause(segments []providers.Segment) string {
	if len(segments) == 0 {
		return "Text replacements: no corrections available. Translate the page text directly."
	}
	var b strings.Builder
	b.WriteString("Text replacements:\n")
	for i, seg := range segments {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s -> %s", seg.Original, seg.Translated)
	}
	return b.String()
}

func trademarkClause() string {
	return "Keep brand names, logos and trademarks in their original form. " +
		"Never translate or redraw trademarked wordmarks."
}

func redundancyClause(targetLang string) string {
	return fmt.Sprintf(
		"Where the page already shows the same content in multiple languages, "+
			"consolidate it into a single %s rendering instead of duplicating it.",
		targetLang)
}

func glossaryClause(glossary string) string {
	glossary = strings.TrimSpace(glossary)
	if glossary == "" {
		return ""
	}
	return "Use this terminology glossary for all matching terms:\n" + glossary
}

func feedbackClause(feedback string) string {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return ""
	}
	return "Apply the following corrections to this redraw:\n" + feedback
}

func sourceLabel(sourceLang string) string {
	if sourceLang == "" || strings.EqualFold(sourceLang, "auto-detect") || strings.EqualFold(sourceLang, "auto") {
		return "source-language"
	}
	return sourceLang
}
