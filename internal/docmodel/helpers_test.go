package docmodel

import (
	"testing"

	"github.com/mesocyclon/docxpipeline/internal/model"
)

func TestValidOutlineValue(t *testing.T) {
	t.Parallel()
	cases := map[string]bool{
		"0": true, "8": true, "5": true,
		"9": false, "10": false, "-1": false, "abc": false, "": true,
	}
	for in, want := range cases {
		if got := validOutlineValue(in); got != want {
			t.Errorf("validOutlineValue(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestClassifyFieldCode(t *testing.T) {
	t.Parallel()
	cases := map[string]model.FieldType{
		` TOC \o "1-3" \h `: model.FieldTOC,
		"PAGE":              model.FieldPage,
		"REF _Ref123":       model.FieldRef,
		"HYPERLINK \"x\"":   model.FieldHyperlink,
		"DATE \\@ \"MMMM\"": model.FieldDate,
		"SAVEDATE":          model.FieldDate,
		"FILENAME":          model.FieldFilename,
		"SEQ Figure":        model.FieldOther,
	}
	for code, want := range cases {
		if got := classifyFieldCode(code); got != want {
			t.Errorf("classifyFieldCode(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestParseRangeSpec(t *testing.T) {
	t.Parallel()
	start, end, err := parseRangeSpec("3-7")
	if err != nil || start != 3 || end != 7 {
		t.Errorf("parseRangeSpec(3-7) = %d, %d, %v", start, end, err)
	}
	if _, _, err := parseRangeSpec("not-a-range"); err == nil {
		t.Error("expected an error for a non-numeric range_spec")
	}
	if _, _, err := parseRangeSpec("5"); err == nil {
		t.Error("expected an error for a range_spec missing the separator")
	}
}

func TestTwipsToPt(t *testing.T) {
	t.Parallel()
	if got := twipsToPt("240"); got != 12 {
		t.Errorf("twipsToPt(240) = %v, want 12", got)
	}
	if got := twipsToPt("not-a-number"); got != 0 {
		t.Errorf("twipsToPt(invalid) = %v, want 0", got)
	}
}
