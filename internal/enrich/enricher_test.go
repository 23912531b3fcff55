package enrich

import (
	"reflect"
	"testing"

	"github.com/predictiff/companymatch/internal/models"
)

func TestEnricher_Enrich(t *testing.T) {
	e := NewEnricher()
	rec := &models.ReferenceRecord{
		Domain:   "microsoft.com",
		Name:     "Microsoft Corporation",
		Source:   "PDL",
		AltNames: []string{"MSFT", "Micro Soft"},
	}
	doc := e.Enrich(rec)

	if doc.ID != "microsoft.com" {
		t.Errorf("ID = %q, want domain fallback %q", doc.ID, "microsoft.com")
	}
	if doc.DomainPart != "microsoft" {
		t.Errorf("DomainPart = %q, want %q", doc.DomainPart, "microsoft")
	}
	if doc.NameNormalized != "microsoft corporation" {
		t.Errorf("NameNormalized = %q", doc.NameNormalized)
	}
	if doc.NamePhonetic == "" || doc.DomainPhonetic == "" {
		t.Error("expected phonetic codes for name and domain part")
	}
	if len(doc.DomainNgrams) == 0 || doc.DomainNgrams[0] != "mic" {
		t.Errorf("DomainNgrams = %v", doc.DomainNgrams)
	}
	if len(doc.AltNamePhonetics) != 2 {
		t.Errorf("AltNamePhonetics = %v, want 2 codes", doc.AltNamePhonetics)
	}
	if doc.SourceRank != 1 {
		t.Errorf("SourceRank = %d, want 1", doc.SourceRank)
	}
	if doc.QualityScore != 20 {
		t.Errorf("QualityScore = %d, want 20", doc.QualityScore)
	}
}

// Derived fields must be identical across repeated enrichment of the same
// record; the aggregator assumes codes are stable across index rebuilds.
func TestEnricher_Deterministic(t *testing.T) {
	e := NewEnricher()
	rec := &models.ReferenceRecord{
		ID:       "42",
		Domain:   "healwithin.com",
		Name:     "Heal Within®",
		Source:   "BOMBORA",
		AltNames: []string{"Heal Within Clinic"},
	}
	first := e.Enrich(rec)
	for i := 0; i < 5; i++ {
		if got := e.Enrich(rec); !reflect.DeepEqual(got, first) {
			t.Fatalf("Enrich not deterministic:\n got %+v\nwant %+v", got, first)
		}
	}
}

func TestEnricher_MissingIDWithoutDomain(t *testing.T) {
	e := NewEnricher()
	doc := e.Enrich(&models.ReferenceRecord{Name: "No Domain Co"})
	if doc.ID == "" {
		t.Error("expected generated ID for record without domain")
	}
}

func TestDomainPart(t *testing.T) {
	tests := []struct {
		domain string
		want   string
	}{
		{"microsoft.com", "microsoft"},
		{"sub.example.co.uk", "sub"},
		{"nodot", "nodot"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DomainPart(tt.domain); got != tt.want {
			t.Errorf("DomainPart(%q) = %q, want %q", tt.domain, got, tt.want)
		}
	}
}
