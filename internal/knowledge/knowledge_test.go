package knowledge

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/krishisakhi/backend/internal/domain"
)

func mustLoad(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}

func TestEmbeddedCatalogCoversCrops(t *testing.T) {
	c := mustLoad(t)

	var names []string
	for _, crop := range c.Crops {
		names = append(names, crop.Name)
	}
	want := []string{"Rice", "Coconut", "Pepper", "Cardamom", "Rubber"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("crop names mismatch (-want +got):\n%s", diff)
	}

	rice, ok := c.Crop("rice")
	if !ok {
		t.Fatalf("expected case-insensitive crop lookup")
	}
	want3 := []Candidate{
		{Disease: "Blast Disease", Confidence: 0.85},
		{Disease: "Brown Spot", Confidence: 0.75},
		{Disease: "Bacterial Blight", Confidence: 0.65},
	}
	if diff := cmp.Diff(want3, rice.Detections); diff != "" {
		t.Fatalf("rice candidates mismatch (-want +got):\n%s", diff)
	}
	if c.DefaultCrop().Name != "Rice" {
		t.Fatalf("expected Rice as default crop, got %s", c.DefaultCrop().Name)
	}
}

func TestDiseaseInfo(t *testing.T) {
	c := mustLoad(t)

	blast := c.DiseaseInfo("Blast Disease")
	if diff := cmp.Diff([]string{
		"Apply Tricyclazole fungicide",
		"Use resistant varieties",
		"Improve field drainage",
	}, blast.Treatment.In(domain.LanguageEnglish)); diff != "" {
		t.Fatalf("blast treatment mismatch (-want +got):\n%s", diff)
	}
	if got := blast.Symptoms.In(domain.LanguageMalayalam); len(got) != 3 || got[0] == blast.Symptoms.In(domain.LanguageEnglish)[0] {
		t.Fatalf("expected Malayalam symptoms, got %v", got)
	}

	// Brown Spot has no Malayalam text and falls back to English.
	brown := c.DiseaseInfo("brown spot")
	if diff := cmp.Diff(brown.Symptoms.In(domain.LanguageEnglish), brown.Symptoms.In(domain.LanguageMalayalam)); diff != "" {
		t.Fatalf("expected English fallback (-en +ml):\n%s", diff)
	}

	unknown := c.DiseaseInfo("Pink Disease")
	if diff := cmp.Diff([]string{"Consult agricultural extension officer"}, unknown.Treatment.In(domain.LanguageEnglish)); diff != "" {
		t.Fatalf("fallback mismatch (-want +got):\n%s", diff)
	}
}

func TestArticles(t *testing.T) {
	c := mustLoad(t)

	schemes, err := c.Articles(KindSchemes, domain.LanguageEnglish)
	if err != nil {
		t.Fatalf("schemes: %v", err)
	}
	want := Article{
		Title:       "PM-KISAN",
		Description: "Income support scheme",
		Details: map[string]string{
			"eligibility": "Small and marginal farmers",
			"benefits":    "₹6,000 per year paid directly to the farmer's account",
		},
		URL: "https://pmkisan.gov.in/",
	}
	if diff := cmp.Diff(want, schemes[0]); diff != "" {
		t.Fatalf("first scheme mismatch (-want +got):\n%s", diff)
	}

	crops, err := c.Articles(KindCrops, domain.LanguageMalayalam)
	if err != nil {
		t.Fatalf("crops: %v", err)
	}
	if crops[0].Title != "Rice (നെല്ല്)" || crops[0].Details["yield"] != "ഹെക്ടറിന് 4-6 ടൺ" {
		t.Fatalf("unexpected Malayalam crop article: %+v", crops[0])
	}

	diseases, err := c.Articles(KindDiseases, domain.LanguageEnglish)
	if err != nil || len(diseases) != len(c.Diseases) {
		t.Fatalf("diseases: %d %v", len(diseases), err)
	}

	if _, err := c.Articles("recipes", domain.LanguageEnglish); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown kind, got %v", err)
	}
}

func TestParseRejectsCropWithoutCandidates(t *testing.T) {
	_, err := Parse([]byte("crops:\n  - name: Banana\n"))
	if err == nil {
		t.Fatalf("expected error for crop without detection candidates")
	}
	if _, err := Parse([]byte("crops: [")); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}
