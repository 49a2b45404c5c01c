package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello,   World!!", "helo worldi"},
		{"I w4nt t0 d!e", "i want to die"},
		{"soooo tiiired", "so tired"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clean(tt.in), tt.in)
	}
}

func TestSelfHarmSignals(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"plain phrase", "Some days I just want to die.", []string{"want to die"}},
		{"obfuscated", "thinking about su1c1de again", []string{"suicide"}},
		{"repeated letters in phrase", "I could kiiill myself", []string{"kil myself"}},
		{"whole word only", "Read about suicideprevention week", nil},
		{"phrase inside a longer word", "The weekend it all came together and I felt proud.", nil},
		{"phrase spanning a word", "I want to attend my life coaching class tomorrow.", nil},
		{"phrase at start and end", "End it all, I wrote, then crossed it out", []string{"end it al"}},
		{"ordinary entry", "Went for a long walk and felt calm afterwards.", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelfHarmSignals(tt.text))
		})
	}
}

func TestNeedsSupport(t *testing.T) {
	assert.True(t, NeedsSupport("I feel like I'm better off dead"))
	assert.False(t, NeedsSupport("Better off with a good night's sleep"))
}
