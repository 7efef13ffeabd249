package tags

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arawak/annales/internal/catalog"
	"github.com/arawak/annales/internal/textnorm"
)

// Rule rewrites any normalized topic containing Contains to Replace.
type Rule struct {
	Contains string `yaml:"contains"`
	Replace  string `yaml:"replace"`
}

// Standardizer maps free-form topics onto a smaller vocabulary. Rules are
// tried in order and the first match wins; Aliases apply to topics no rule
// matched.
type Standardizer struct {
	Rules   []Rule            `yaml:"rules"`
	Aliases map[string]string `yaml:"aliases"`
}

// DefaultStandardizer returns the rules used for the NSI catalog.
func DefaultStandardizer() *Standardizer {
	return &Standardizer{
		Rules: []Rule{
			{"objet", "poo"},
			{"gloutons", "algorithmes gloutons"},
			{"arbres", "arbres"},
			{"arbre", "arbres"},
			{"algo", "programmation"},
			{"securite", "chiffrement"},
			{"sql", "bases de donnees"},
			{"programmation", "programmation"},
			{"graphe", "graphes"},
			{"liste", "listes"},
			{"tableau", "tableaux"},
			{"huffman", "divers"},
			{"goban", "divers"},
		},
		Aliases: map[string]string{
			"poo":                                "programmation orientee objet",
			"programmation orientee objet (poo)": "programmation orientee objet",
		},
	}
}

// LoadStandardizer reads rules from YAML, for example:
//
//	rules:
//	  - {contains: graphe, replace: graphes}
//	aliases:
//	  poo: programmation orientee objet
func LoadStandardizer(path string) (*Standardizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topic rules: %w", err)
	}
	var s Standardizer
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse topic rules: %w", err)
	}
	for i, r := range s.Rules {
		if textnorm.Normalize(r.Contains) == "" || strings.TrimSpace(r.Replace) == "" {
			return nil, fmt.Errorf("topic rule %d needs both contains and replace", i)
		}
	}
	return &s, nil
}

// Topic standardizes a single topic. Blank topics yield "".
func (s *Standardizer) Topic(topic string) string {
	t := strings.ReplaceAll(topic, "’", "'")
	t = strings.Join(strings.Fields(textnorm.Normalize(t)), " ")
	if t == "" {
		return ""
	}
	for _, r := range s.Rules {
		if strings.Contains(t, textnorm.Normalize(r.Contains)) {
			return r.Replace
		}
	}
	if alias, ok := s.Aliases[t]; ok {
		return alias
	}
	return t
}

// Topics standardizes a topic list, dropping blanks and later repeats.
func (s *Standardizer) Topics(topics []string) []string {
	seen := make(map[string]struct{}, len(topics))
	out := make([]string, 0, len(topics))
	for _, topic := range topics {
		t := s.Topic(topic)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Apply returns a copy of exercises with standardized topics.
func (s *Standardizer) Apply(exercises []catalog.Exercise) []catalog.Exercise {
	out := make([]catalog.Exercise, len(exercises))
	for i := range exercises {
		out[i] = exercises[i]
		out[i].Topics = s.Topics(exercises[i].Topics)
	}
	return out
}
