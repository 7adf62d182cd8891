package config

import (
	"testing"
	"time"

	"taxonomy-service/internal/taxonomy"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TAXONOMY_TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("TAXONOMY_TEST_INT", 7))

	t.Setenv("TAXONOMY_TEST_INT", "forty-two")
	assert.Equal(t, 7, getEnvInt("TAXONOMY_TEST_INT", 7))

	assert.Equal(t, 7, getEnvInt("TAXONOMY_TEST_UNSET", 7))
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{raw: "", want: 30 * time.Second},
		{raw: "45s", want: 45 * time.Second},
		{raw: "1500", want: 1500 * time.Millisecond},
		{raw: "soon", want: 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("TAXONOMY_TEST_DURATION", tt.raw)
			assert.Equal(t, tt.want, getEnvDuration("TAXONOMY_TEST_DURATION", 30*time.Second))
		})
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TAXONOMY_TEST_LIST", " http://localhost:4301, ,https://admin.example.com ")
	assert.Equal(t, []string{"http://localhost:4301", "https://admin.example.com"}, getEnvList("TAXONOMY_TEST_LIST"))

	t.Setenv("TAXONOMY_TEST_LIST", "")
	assert.Empty(t, getEnvList("TAXONOMY_TEST_LIST"))
}

func TestDescriptionFilter(t *testing.T) {
	cfg := &Config{
		DescriptionMaxChars:      40,
		DescriptionMaxWords:      5,
		DescriptionSentenceWords: 3,
		DescriptionCommaWords:    4,
	}

	assert.Equal(t, taxonomy.DescriptionFilter{
		MaxChars:      40,
		MaxWords:      5,
		SentenceWords: 3,
		CommaWords:    4,
	}, cfg.DescriptionFilter())
}
