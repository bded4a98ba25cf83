package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProductName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: "COVER"},
		{name: "whitespace only", raw: "   \t ", want: "COVER"},
		{name: "placeholder unchanged", raw: "COVER", want: "COVER"},
		{name: "consecutive duplicate", raw: "SILVER SILVER", want: "SILVER"},
		{name: "consecutive duplicate mixed case", raw: "Gold GOLD table", want: "Gold table"},
		{name: "whole phrase repeated", raw: "NYE BRONZE NYE BRONZE", want: "NYE BRONZE"},
		{name: "price annotation and N/A", raw: "GENERAL ACCESS (23,000.00) N/A", want: "GENERAL ACCESS"},
		{name: "annotation between words", raw: "VIP (1,000.00) ACCESS", want: "VIP ACCESS"},
		{name: "N A token", raw: "MESA N A TERRAZA", want: "MESA TERRAZA"},
		{name: "NA token", raw: "MESA na TERRAZA", want: "MESA TERRAZA"},
		{name: "NA inside a word is kept", raw: "NATIONAL ACCESS", want: "NATIONAL ACCESS"},
		{name: "only noise", raw: "(500.00) N/A", want: "COVER"},
		{name: "collapses whitespace", raw: "  BACKSTAGE    PASS  ", want: "BACKSTAGE PASS"},
		{
			name: "truncated trailing repeat",
			raw:  "NYE Dinner Table Experience NYE Dinner Table Expe",
			want: "NYE Dinner Table Experience",
		},
		{name: "trailing repeat with middle token", raw: "GOLD TABLE VIP GOLD TABLE", want: "GOLD TABLE VIP"},
		{name: "venue bookends", raw: "VAGALUME GENERAL ACCESS VAGALUME", want: "GENERAL ACCESS"},
		{name: "bookends need a known venue", raw: "ROOF GENERAL ACCESS ROOF", want: "ROOF GENERAL ACCESS ROOF"},
		{name: "repeated keyword", raw: "GA VIP GA", want: "GA VIP"},
		{name: "repeated keyword in longer label", raw: "NYE GOLD TABLE NYE EXTRA ZONE", want: "NYE GOLD TABLE EXTRA ZONE"},
		{
			name: "keyword filter skipped when it strips too much",
			raw:  "NYE VIP GA NYE GA VIP NYE",
			want: "NYE VIP GA NYE GA VIP NYE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeProductName(tt.raw))
		})
	}
}

func TestNormalizeProductName_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"COVER",
		"SILVER SILVER",
		"NYE BRONZE NYE BRONZE",
		"GENERAL ACCESS (23,000.00) N/A",
		"NYE Dinner Table Experience NYE Dinner Table Expe",
		"GOLD TABLE VIP GOLD TABLE",
		"VAGALUME GENERAL ACCESS VAGALUME",
		"NYE VIP GA NYE GA VIP NYE",
		"NYE - GA - Early Bird",
		"Mesa Platinum (4 pax)",
	}
	for _, in := range inputs {
		once := NormalizeProductName(in)
		assert.Equal(t, once, NormalizeProductName(once), "input %q", in)
		assert.NotEmpty(t, once)
	}
}

func TestNormalizer_CustomVocabulary(t *testing.T) {
	n := NewNormalizer([]string{"Club"}, []string{"zone"})

	assert.Equal(t, "ROOFTOP", n.Normalize("CLUB ROOFTOP CLUB"))
	assert.Equal(t, "VAGALUME GENERAL ACCESS VAGALUME", n.Normalize("VAGALUME GENERAL ACCESS VAGALUME"))
	assert.Equal(t, "ZONE A B C", n.Normalize("ZONE A B C ZONE"))
}
