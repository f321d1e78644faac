// Package rules holds the configurable phrase and intent tables used by the
// shortcut matcher and the answer heuristics.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

type Greeting struct {
	Keys  []string `yaml:"keys"`
	Reply string   `yaml:"reply"`
}

type QuickFact struct {
	Key      string   `yaml:"key"`
	Triggers []string `yaml:"triggers"`
	Reply    string   `yaml:"reply"`
}

type Clarification struct {
	Key      string   `yaml:"key"`
	Prompt   string   `yaml:"prompt"`
	Accepted []string `yaml:"accepted"`
}

type PersonalFact struct {
	Keywords []string `yaml:"keywords"`
	Subject  string   `yaml:"subject"`
	Value    string   `yaml:"value"`
}

type Rules struct {
	Synonyms          map[string]string `yaml:"synonyms"`
	Greetings         []Greeting        `yaml:"greetings"`
	QuickFacts        []QuickFact       `yaml:"quick_facts"`
	Clarifications    []Clarification   `yaml:"clarifications"`
	PersonalFacts     []PersonalFact    `yaml:"personal_facts"`
	IrrelevantPhrases []string          `yaml:"irrelevant_phrases"`
	WeakPhrases       []string          `yaml:"weak_phrases"`
}

// Load reads the rules file at path, or the built-in defaults when path is empty.
// ${VAR} references resolve from the environment first, then from defaults.
func Load(path string, defaults map[string]string) (*Rules, error) {
	data := defaultRules
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rules file: %w", err)
		}
		data = b
	}
	return Parse(data, func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return defaults[key]
	})
}

// Parse expands ${VAR} references with lookup, decodes the YAML and
// normalizes every key to lower case.
func Parse(data []byte, lookup func(string) string) (*Rules, error) {
	expanded := os.Expand(string(data), lookup)

	var r Rules
	if err := yaml.Unmarshal([]byte(expanded), &r); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	r.normalize()
	return &r, nil
}

func (r *Rules) normalize() {
	synonyms := make(map[string]string, len(r.Synonyms))
	for k, v := range r.Synonyms {
		synonyms[lower(k)] = lower(v)
	}
	r.Synonyms = synonyms

	for i := range r.Greetings {
		r.Greetings[i].Keys = lowerAll(r.Greetings[i].Keys)
	}
	for i := range r.QuickFacts {
		r.QuickFacts[i].Key = lower(r.QuickFacts[i].Key)
		r.QuickFacts[i].Triggers = lowerAll(r.QuickFacts[i].Triggers)
	}
	for i := range r.Clarifications {
		r.Clarifications[i].Key = lower(r.Clarifications[i].Key)
		r.Clarifications[i].Accepted = lowerAll(r.Clarifications[i].Accepted)
	}

	// a fact without a value would produce "The principal of X is ."
	facts := r.PersonalFacts[:0]
	for _, f := range r.PersonalFacts {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		f.Keywords = lowerAll(f.Keywords)
		facts = append(facts, f)
	}
	r.PersonalFacts = facts

	r.IrrelevantPhrases = lowerAll(r.IrrelevantPhrases)
	r.WeakPhrases = lowerAll(r.WeakPhrases)
}

// ContainsAny reports whether text contains one of phrases, ignoring case.
func ContainsAny(text string, phrases []string) bool {
	lowered := strings.ToLower(text)
	for _, p := range phrases {
		if p != "" && strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = lower(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
