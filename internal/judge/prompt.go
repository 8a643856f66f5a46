package judge

import (
	"fmt"
	"strings"

	"github.com/abhisek/chartaudit/internal/codes"
)

const systemPrompt = `You review procedure notes for a clinical coding pipeline.
An automated audit believes a procedure code is missing from the structured
record extracted from the note. Your job is to decide whether the note truly
documents that procedure and, if so, propose the smallest set of record edits
that would make the rule-based deriver attribute the code.

Rules:
- Quote your evidence VERBATIM from the note. Do not paraphrase.
- Never treat negated statements ("no chest tube was placed") as evidence.
- Propose at most 5 operations. Use verb "set" to write a field whose parent
  block exists, "replace" to overwrite a field that already has a value.
- Only touch fields inside these record blocks: lavage, brushings, biopsy,
  ebus, needle_aspiration, therapeutic_aspiration, pleural, navigation,
  and the top-level procedure_type field.
- If the note does not clearly support the code, decline by returning an
  empty operations array and explain why in the rationale.`

// buildUserPrompt renders one omission into the judge's user message.
// note is the text the model quotes from, already chosen between the
// narrowed extraction and the raw note.
func buildUserPrompt(req Request, note string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Missing code: %s", req.TargetCode)
	if d := codes.Get(req.TargetCode); d != nil {
		fmt.Fprintf(&b, " (%s)", d.Label)
	}
	fmt.Fprintf(&b, "\nAudit confidence: %.2f\n\n", req.Probability)

	b.WriteString("Current record:\n")
	b.Write(req.Record.JSON())
	b.WriteString("\n\nProcedure note:\n")
	b.WriteString(note)

	return b.String()
}
