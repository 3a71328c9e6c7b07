package triage

import (
	"fmt"
	"strings"
)

// jargon maps common prescription shorthand to plain English. Matching is
// case-insensitive on whole tokens.
var jargon = map[string]string{
	"od":   "once a day",
	"bd":   "twice a day",
	"tds":  "3 times a day",
	"qid":  "4 times a day",
	"prn":  "only when you need it",
	"po":   "by mouth",
	"im":   "as an injection",
	"stat": "right away",
	"mane": "in the morning",
	"noct": "at night",
	"ac":   "before meals",
	"pc":   "after meals",
}

// ExplainPrescription renders a short, warm, plain-language explanation of a
// clinic record for the patient. It only restates what the record says,
// translating shorthand; it never invents new medical advice. Output is
// deterministic for identical input.
func ExplainPrescription(diagnosis string, meds []string, notes string) string {
	var b strings.Builder
	b.WriteString("Sawubona! Here is what your record says. ")

	diagnosis = strings.TrimSpace(diagnosis)
	if diagnosis != "" {
		fmt.Fprintf(&b, "The doctor found that you have %s. ", strings.ToLower(diagnosis))
	}

	cleaned := make([]string, 0, len(meds))
	for _, m := range meds {
		if m = strings.TrimSpace(m); m != "" {
			cleaned = append(cleaned, translateShorthand(m))
		}
	}
	switch len(cleaned) {
	case 0:
		// No medication lines; nothing to translate.
	case 1:
		fmt.Fprintf(&b, "Please take %s. ", cleaned[0])
	default:
		fmt.Fprintf(&b, "Please take your medicines exactly as written: %s. ", strings.Join(cleaned, "; "))
	}

	if notes = strings.TrimSpace(notes); notes != "" {
		fmt.Fprintf(&b, "The doctor also noted: %s. ", strings.TrimRight(notes, "."))
	}

	b.WriteString("If anything is unclear, please ask the nurse before you leave.")
	return b.String()
}

// translateShorthand replaces dosing shorthand tokens inside a medication
// line with their plain-English meaning.
func translateShorthand(line string) string {
	fields := strings.Fields(line)
	for i, f := range fields {
		key := strings.ToLower(strings.Trim(f, ".,;()"))
		if plain, ok := jargon[key]; ok {
			fields[i] = plain
		}
	}
	return strings.Join(fields, " ")
}
