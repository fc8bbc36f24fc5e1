package leadgen

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultTemplates rotate search modifiers so repeated calls surface
// different businesses. {niche} and {location} are substituted.
var DefaultTemplates = []string{
	"{niche} em {location} contato",
	"{niche} {location} telefone whatsapp",
	"lista de {niche} {location} guia diretório",
	"melhores {niche} em {location}",
	"{niche} {location} instagram whatsapp",
	"{niche} inaugurado recentemente em {location}",
}

// Rotation picks a search phrasing per attempt, round-robin.
type Rotation struct {
	templates []string
}

// NewRotation builds a rotation over templates, falling back to
// DefaultTemplates when none are given. Blank templates are dropped and
// adjacent repeats (including last-to-first) are collapsed so two
// consecutive attempts never share a phrasing.
func NewRotation(templates []string) *Rotation {
	var out []string
	for _, t := range templates {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == t {
			continue
		}
		out = append(out, t)
	}
	for len(out) > 1 && out[len(out)-1] == out[0] {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		out = append(out, DefaultTemplates...)
	}
	return &Rotation{templates: out}
}

// Len returns the number of templates in the rotation.
func (r *Rotation) Len() int { return len(r.templates) }

// Phrase returns the phrasing for a zero-based attempt index.
func (r *Rotation) Phrase(attempt int, niche, location string) string {
	if attempt < 0 {
		attempt = -attempt
	}
	t := r.templates[attempt%len(r.templates)]
	return strings.NewReplacer("{niche}", niche, "{location}", location).Replace(t)
}

type templateFile struct {
	Templates []string `yaml:"templates"`
}

// LoadTemplates reads phrasing templates from a YAML file with a top-level
// "templates" list.
func LoadTemplates(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "leadgen: read templates %s", path)
	}
	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "leadgen: parse templates %s", path)
	}
	if len(f.Templates) == 0 {
		return nil, eris.Errorf("leadgen: no templates in %s", path)
	}
	return f.Templates, nil
}
