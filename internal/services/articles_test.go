// internal/services/articles_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeArticleNumbersAllClauses(t *testing.T) {
	numbers := ComputeArticleNumbers(ArticleOptions{
		Confidentialite:         true,
		NonConcurrence:          true,
		ProprieteIntellectuelle: true,
		Responsabilite:          true,
	})

	expected := map[string]int{
		ArticleObjet:                   1,
		ArticleDuree:                   2,
		ArticleConditionsFinancieres:   3,
		ArticleModalitesFacturation:    4,
		ArticleObligationsPrestataire:  5,
		ArticleConfidentialite:         6,
		ArticleNonConcurrence:          7,
		ArticleProprieteIntellectuelle: 8,
		ArticleResponsabilite:          9,
		ArticleResiliation:             10,
		ArticleDroitApplicable:         11,
	}
	assert.Equal(t, expected, numbers)
}

func TestComputeArticleNumbersNoOptionalClauses(t *testing.T) {
	numbers := ComputeArticleNumbers(ArticleOptions{})

	expected := map[string]int{
		ArticleObjet:                  1,
		ArticleDuree:                  2,
		ArticleConditionsFinancieres:  3,
		ArticleModalitesFacturation:   4,
		ArticleObligationsPrestataire: 5,
		ArticleResiliation:            6,
		ArticleDroitApplicable:        7,
	}
	assert.Equal(t, expected, numbers)

	// Disabled clauses are absent, not zero-numbered.
	_, ok := numbers[ArticleConfidentialite]
	assert.False(t, ok)
}

func TestComputeArticleNumbersNoGaps(t *testing.T) {
	combos := []ArticleOptions{
		{Confidentialite: true},
		{Responsabilite: true},
		{Confidentialite: true, Responsabilite: true},
		{NonConcurrence: true, ProprieteIntellectuelle: true},
	}
	for _, opts := range combos {
		numbers := ComputeArticleNumbers(opts)

		seen := make([]bool, len(numbers))
		for _, n := range numbers {
			assert.GreaterOrEqual(t, n, 1)
			assert.LessOrEqual(t, n, len(numbers))
			assert.False(t, seen[n-1], "duplicate article number %d", n)
			seen[n-1] = true
		}

		// The closing articles always take the last two slots.
		assert.Equal(t, len(numbers)-1, numbers[ArticleResiliation])
		assert.Equal(t, len(numbers), numbers[ArticleDroitApplicable])
	}
}

func TestArticleOptionsFromConfig(t *testing.T) {
	opts := ArticleOptionsFromConfig(map[string]interface{}{
		ArticleConfidentialite: true,
		ArticleResponsabilite:  true,
		ArticleNonConcurrence:  false,
	})
	assert.True(t, opts.Confidentialite)
	assert.True(t, opts.Responsabilite)
	assert.False(t, opts.NonConcurrence)
	assert.False(t, opts.ProprieteIntellectuelle)

	// Non-boolean values and a nil config read as disabled.
	opts = ArticleOptionsFromConfig(map[string]interface{}{ArticleConfidentialite: "yes"})
	assert.False(t, opts.Confidentialite)
	assert.Equal(t, ArticleOptions{}, ArticleOptionsFromConfig(nil))
}
