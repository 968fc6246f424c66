package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mesocyclon/docxpipeline/internal/model"
)

// planSchemaDescription documents the plan.v1 contract the model must
// reply with. Kept inline rather than loaded from a file so the gateway
// has no filesystem dependency beyond what structure.v1 already carries.
const planSchemaDescription = `plan.v1 is a JSON object with exactly two fields:
  "schema_version": must be the literal string "plan.v1"
  "ops": an array of operation objects. Each object is FLAT: the "operation"
    field plus that operation's own fields directly alongside it, e.g.
    {"operation": "delete_toc", "mode": "ALL"} — never nest fields under a
    "value" key, and never include a field not listed for that operation.

Allowed "operation" values and their fields:
  delete_section_by_heading: heading_text (string, required), level (1-9, required),
    match ("EXACT"|"CONTAINS"|"REGEX", required), case_sensitive (bool),
    occurrence_index (int, optional, 1-based)
  update_toc: no fields beyond "operation"
  delete_toc: mode ("ALL"|"FIRST"|"LAST", required)
  set_style_rule: target_style (string, required), plus any of
    font_east_asian, font_latin (strings), font_size_pt (number),
    font_bold, font_italic (bools), font_color_hex (string "#RRGGBB"),
    line_spacing_mode ("SINGLE"|"MULTIPLE"|"EXACTLY"), line_spacing_value (number),
    space_before_pt, space_after_pt (numbers),
    alignment ("LEFT"|"CENTER"|"RIGHT"|"JUSTIFY")
  reassign_paragraphs_to_style: selector (object with optional current_style,
    text_contains, heading_level, position ["starts_with"|"ends_with"|"contains"]),
    target_style (string, required), clear_direct_formatting (bool)
  clear_direct_formatting: scope ("DOCUMENT"|"SELECTION"|"STYLE", required),
    range_spec (string, required when scope is SELECTION), authorization
    (required, must be the literal string "EXPLICIT_USER_REQUEST")

No other operation names are permitted, and no field outside this list may
appear on any operation object. Reply with the JSON object only: no prose,
no markdown code fences, no trailing commentary.`

// assemblePrompt builds the full prompt sent to the language model: a
// system-style preamble, the document's structure.v1 skeleton as context,
// the user's free-form intent, and the plan.v1 schema contract.
func assemblePrompt(structure *model.Structure, userIntent string) (string, error) {
	if structure == nil {
		return "", fmt.Errorf("structure is nil")
	}
	structJSON, err := json.Marshal(structure)
	if err != nil {
		return "", fmt.Errorf("marshaling structure.v1: %w", err)
	}

	var b strings.Builder
	b.WriteString("You translate a user's editing request into a structured edit plan for a Word document.\n")
	b.WriteString("You may only use the whitelisted operations below. You never see the document's full text,\n")
	b.WriteString("only the structural skeleton given here. Never invent paragraph text or styles not present\n")
	b.WriteString("in the skeleton.\n\n")
	b.WriteString("Document structure (structure.v1):\n")
	b.Write(structJSON)
	b.WriteString("\n\nUser request:\n")
	b.WriteString(userIntent)
	b.WriteString("\n\n")
	b.WriteString(planSchemaDescription)

	return b.String(), nil
}
