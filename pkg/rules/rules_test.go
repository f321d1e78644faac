package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	env := map[string]string{
		"SCHOOL_NAME":      "Test College",
		"SCHOOL_PRINCIPAL": "Ms. Example",
	}
	r, err := Parse(defaultRules, func(k string) string { return env[k] })
	require.NoError(t, err)

	assert.Equal(t, "school based assessment", r.Synonyms["sba"])
	assert.NotEmpty(t, r.Greetings)
	assert.Contains(t, r.Greetings[0].Reply, "Test College")
	assert.Contains(t, r.IrrelevantPhrases, "i don't know")
	assert.Contains(t, r.WeakPhrases, "according to my knowledge")

	// vice principal has no value in env and is dropped
	require.Len(t, r.PersonalFacts, 1)
	assert.Equal(t, "Ms. Example", r.PersonalFacts[0].Value)
}

func TestParseNormalizesCase(t *testing.T) {
	data := []byte(`
synonyms:
  SBA: School Based Assessment
quick_facts:
  - key: Motto
    triggers: [" School Motto ", ""]
    reply: "Keep Case"
weak_phrases: ["I Believe"]
`)
	r, err := Parse(data, func(string) string { return "" })
	require.NoError(t, err)

	assert.Equal(t, "school based assessment", r.Synonyms["sba"])
	assert.Equal(t, "motto", r.QuickFacts[0].Key)
	assert.Equal(t, []string{"school motto"}, r.QuickFacts[0].Triggers)
	assert.Equal(t, "Keep Case", r.QuickFacts[0].Reply)
	assert.Equal(t, []string{"i believe"}, r.WeakPhrases)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("greetings: [unclosed"), func(string) string { return "" })
	assert.Error(t, err)
}

func TestContainsAny(t *testing.T) {
	phrases := []string{"i don't know", "i'm sorry"}
	assert.True(t, ContainsAny("Well, I DON'T KNOW that.", phrases))
	assert.True(t, ContainsAny("I'm sorry, but no.", phrases))
	assert.False(t, ContainsAny("The library opens at 8am.", phrases))
	assert.False(t, ContainsAny("anything", []string{""}))
}

func TestLoadUsesDefaultsForUnsetVariables(t *testing.T) {
	t.Setenv("SCHOOL_PHONE", "555-0100")
	r, err := Load("", map[string]string{
		"SCHOOL_NAME":  "Fallback College",
		"SCHOOL_PHONE": "ignored",
		"SCHOOL_EMAIL": "office@example.org",
	})
	require.NoError(t, err)

	var contact string
	for _, f := range r.QuickFacts {
		if f.Key == "contact" {
			contact = f.Reply
		}
	}
	assert.Equal(t, "You can reach Fallback College by phone at 555-0100 or by email at office@example.org.", contact)
}
