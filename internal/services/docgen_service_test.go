// internal/services/docgen_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderDraft(t *testing.T, opts ArticleOptions) string {
	t.Helper()
	svc, err := NewDocgenService()
	require.NoError(t, err)

	draft, err := svc.GenerateDraft(context.Background(), map[string]interface{}{
		"reference":       "CR-2026-0001",
		"version":         1,
		"daily_rate":      650.0,
		"article_numbers": ComputeArticleNumbers(opts),
	})
	require.NoError(t, err)
	return string(draft)
}

func TestGenerateDraftRendersToggledClauses(t *testing.T) {
	html := renderDraft(t, ArticleOptions{Confidentialite: true, Responsabilite: true})

	assert.Contains(t, html, "CR-2026-0001")
	assert.Contains(t, html, "Article 6 - Confidentialité")
	assert.Contains(t, html, "Article 7 - Responsabilité")
	assert.Contains(t, html, "Article 8 - Résiliation")
	assert.Contains(t, html, "Article 9 - Droit applicable")
	assert.NotContains(t, html, "Non-concurrence")
	assert.NotContains(t, html, "Propriété intellectuelle")
}

func TestGenerateDraftWithoutOptionalClauses(t *testing.T) {
	html := renderDraft(t, ArticleOptions{})

	assert.Contains(t, html, "Article 5 - Obligations du prestataire")
	assert.Contains(t, html, "Article 6 - Résiliation")
	assert.Contains(t, html, "Article 7 - Droit applicable")
	assert.NotContains(t, html, "Confidentialité")
}
