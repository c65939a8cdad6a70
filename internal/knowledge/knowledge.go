package knowledge

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/krishisakhi/backend/internal/domain"
)

// embeddedCatalog is the catalog baked into the binary.
//
//go:embed catalog.yaml
var embeddedCatalog []byte

// Kinds served by Articles.
const (
	KindCrops    = "crops"
	KindDiseases = "diseases"
	KindSchemes  = "schemes"
)

// Text is a string in each supported language.
type Text map[domain.Language]string

// In returns the text in lang, falling back to English.
func (t Text) In(lang domain.Language) string {
	if s, ok := t[lang]; ok && s != "" {
		return s
	}
	return t[domain.LanguageEnglish]
}

// List is a list of strings in each supported language.
type List map[domain.Language][]string

// In returns the list in lang, falling back to English.
func (l List) In(lang domain.Language) []string {
	if v, ok := l[lang]; ok && len(v) > 0 {
		return v
	}
	return l[domain.LanguageEnglish]
}

// Candidate is a disease the mock detector may report for a crop.
type Candidate struct {
	Disease    string  `yaml:"disease"`
	Confidence float64 `yaml:"confidence"`
}

// Crop is one catalog crop.
type Crop struct {
	Name        string      `yaml:"name"`
	Local       string      `yaml:"local"`
	Description Text        `yaml:"description"`
	Seasons     Text        `yaml:"seasons"`
	Yield       Text        `yaml:"yield"`
	Detections  []Candidate `yaml:"detections"`
}

// DiseaseInfo holds the advice attached to a disease.
type DiseaseInfo struct {
	Symptoms   List `yaml:"symptoms"`
	Treatment  List `yaml:"treatment"`
	Prevention List `yaml:"prevention"`
}

// Disease is one catalog disease.
type Disease struct {
	Name        string   `yaml:"name"`
	Crops       []string `yaml:"crops"`
	DiseaseInfo `yaml:",inline"`
}

// Scheme is a government support scheme.
type Scheme struct {
	Name        string `yaml:"name"`
	Description Text   `yaml:"description"`
	Eligibility Text   `yaml:"eligibility"`
	Benefits    Text   `yaml:"benefits"`
	URL         string `yaml:"url"`
}

// Catalog is the parsed knowledge base. It is read-only after Parse.
type Catalog struct {
	Crops    []Crop      `yaml:"crops"`
	Diseases []Disease   `yaml:"diseases"`
	Fallback DiseaseInfo `yaml:"fallback"`
	Schemes  []Scheme    `yaml:"schemes"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// Parse decodes a catalog document and checks that every crop can be
// classified.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge catalog: %w", err)
	}
	if len(c.Crops) == 0 {
		return nil, fmt.Errorf("knowledge catalog has no crops")
	}
	for _, crop := range c.Crops {
		if len(crop.Detections) == 0 {
			return nil, fmt.Errorf("crop %q has no detection candidates", crop.Name)
		}
	}
	return &c, nil
}

// Crop finds a crop by name, ignoring case.
func (c *Catalog) Crop(name string) (Crop, bool) {
	name = strings.TrimSpace(name)
	for _, crop := range c.Crops {
		if strings.EqualFold(crop.Name, name) {
			return crop, true
		}
	}
	return Crop{}, false
}

// DefaultCrop is the crop used when a request names one the catalog lacks.
func (c *Catalog) DefaultCrop() Crop {
	return c.Crops[0]
}

// DiseaseInfo returns the advice for a disease, or the generic advice when
// the catalog has no entry for it.
func (c *Catalog) DiseaseInfo(name string) DiseaseInfo {
	for _, d := range c.Diseases {
		if strings.EqualFold(d.Name, name) {
			return d.DiseaseInfo
		}
	}
	return c.Fallback
}

// Article is the localized listing shape of any catalog entry.
type Article struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Details     map[string]string   `json:"details,omitempty"`
	Lists       map[string][]string `json:"lists,omitempty"`
	URL         string              `json:"url,omitempty"`
}

// Articles renders one kind of entry in lang. An unknown kind returns
// domain.ErrNotFound.
func (c *Catalog) Articles(kind string, lang domain.Language) ([]Article, error) {
	switch kind {
	case KindCrops:
		out := make([]Article, 0, len(c.Crops))
		for _, crop := range c.Crops {
			title := crop.Name
			if crop.Local != "" {
				title = fmt.Sprintf("%s (%s)", crop.Name, crop.Local)
			}
			out = append(out, Article{
				Title:       title,
				Description: crop.Description.In(lang),
				Details: map[string]string{
					"seasons": crop.Seasons.In(lang),
					"yield":   crop.Yield.In(lang),
				},
			})
		}
		return out, nil
	case KindDiseases:
		out := make([]Article, 0, len(c.Diseases))
		for _, d := range c.Diseases {
			out = append(out, Article{
				Title:       d.Name,
				Description: strings.Join(d.Crops, ", "),
				Lists: map[string][]string{
					"symptoms":   d.Symptoms.In(lang),
					"treatment":  d.Treatment.In(lang),
					"prevention": d.Prevention.In(lang),
				},
			})
		}
		return out, nil
	case KindSchemes:
		out := make([]Article, 0, len(c.Schemes))
		for _, s := range c.Schemes {
			out = append(out, Article{
				Title:       s.Name,
				Description: s.Description.In(lang),
				Details: map[string]string{
					"eligibility": s.Eligibility.In(lang),
					"benefits":    s.Benefits.In(lang),
				},
				URL: s.URL,
			})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("knowledge kind %q: %w", kind, domain.ErrNotFound)
	}
}
