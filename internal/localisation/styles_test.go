package localisation_test

import (
	"testing"

	"github.com/mesocyclon/docxpipeline/internal/localisation"
)

func TestStyleAliasTable_Resolve_ExactKnownStyleMatch(t *testing.T) {
	t.Parallel()
	table := localisation.DefaultStyleAliasTable()
	resolved, found := table.Resolve("Heading 1", []string{"Heading 1", "Normal"})
	if !found || resolved != "Heading 1" {
		t.Errorf("expected an exact match to pass through unchanged, got %q, %v", resolved, found)
	}
}

func TestStyleAliasTable_Resolve_CanonicalToLocalised(t *testing.T) {
	t.Parallel()
	table := localisation.DefaultStyleAliasTable()
	resolved, found := table.Resolve("Heading 1", []string{"标题 1", "正文"})
	if !found || resolved != "标题 1" {
		t.Errorf("expected the canonical name to resolve to its localised document style, got %q, %v", resolved, found)
	}
}

func TestStyleAliasTable_Resolve_LocalisedToCanonical(t *testing.T) {
	t.Parallel()
	table := localisation.DefaultStyleAliasTable()
	resolved, found := table.Resolve("标题 1", []string{"Heading 1", "Normal"})
	if !found || resolved != "Heading 1" {
		t.Errorf("expected the localised name to resolve to its canonical document style, got %q, %v", resolved, found)
	}
}

func TestStyleAliasTable_Resolve_AliasWithNoMatchingDocumentStyleReturnsAliasName(t *testing.T) {
	t.Parallel()
	table := localisation.DefaultStyleAliasTable()
	resolved, found := table.Resolve("Heading 1", []string{"SomeOtherStyle"})
	if !found || resolved != "标题 1" {
		t.Errorf("expected the localised alias even without a live document match, got %q, %v", resolved, found)
	}
}

func TestStyleAliasTable_Resolve_CaseInsensitiveDynamicScanFallback(t *testing.T) {
	t.Parallel()
	table := localisation.NewStyleAliasTable(nil)
	resolved, found := table.Resolve("heading 1", []string{"Heading 1"})
	if !found || resolved != "Heading 1" {
		t.Errorf("expected a case-insensitive dynamic-scan match, got %q, %v", resolved, found)
	}
}

func TestStyleAliasTable_Resolve_NoMatchAnywhereReturnsNameUnchanged(t *testing.T) {
	t.Parallel()
	table := localisation.NewStyleAliasTable(nil)
	resolved, found := table.Resolve("TotallyUnknownStyle", []string{"Normal"})
	if found {
		t.Error("expected found=false when nothing matches")
	}
	if resolved != "TotallyUnknownStyle" {
		t.Errorf("expected the original name back on no match, got %q", resolved)
	}
}
