// internal/services/articles.go
package services

// Article names in template order. The five opening articles and the two
// closing ones are always present; the four in the middle are toggled per
// contract via the request's contract configuration.
const (
	ArticleObjet                   = "objet"
	ArticleDuree                   = "duree"
	ArticleConditionsFinancieres   = "conditions_financieres"
	ArticleModalitesFacturation    = "modalites_facturation"
	ArticleObligationsPrestataire  = "obligations_prestataire"
	ArticleConfidentialite         = "confidentialite"
	ArticleNonConcurrence          = "non_concurrence"
	ArticleProprieteIntellectuelle = "propriete_intellectuelle"
	ArticleResponsabilite          = "responsabilite"
	ArticleResiliation             = "resiliation"
	ArticleDroitApplicable         = "droit_applicable"
)

// ArticleOptions are the per-contract clause toggles.
type ArticleOptions struct {
	Confidentialite         bool
	NonConcurrence          bool
	ProprieteIntellectuelle bool
	Responsabilite          bool
}

// ArticleOptionsFromConfig reads the clause toggles out of a contract
// request's free-form configuration. Absent keys default to false.
func ArticleOptionsFromConfig(config map[string]interface{}) ArticleOptions {
	flag := func(key string) bool {
		v, ok := config[key].(bool)
		return ok && v
	}
	return ArticleOptions{
		Confidentialite:         flag(ArticleConfidentialite),
		NonConcurrence:          flag(ArticleNonConcurrence),
		ProprieteIntellectuelle: flag(ArticleProprieteIntellectuelle),
		Responsabilite:          flag(ArticleResponsabilite),
	}
}

// ComputeArticleNumbers assigns sequential article numbers to the clauses
// present in a contract. Disabled optional clauses are skipped entirely, so
// the rendered document never shows a gap, and the two closing articles
// always take the last two numbers.
func ComputeArticleNumbers(opts ArticleOptions) map[string]int {
	ordered := []string{
		ArticleObjet,
		ArticleDuree,
		ArticleConditionsFinancieres,
		ArticleModalitesFacturation,
		ArticleObligationsPrestataire,
	}
	if opts.Confidentialite {
		ordered = append(ordered, ArticleConfidentialite)
	}
	if opts.NonConcurrence {
		ordered = append(ordered, ArticleNonConcurrence)
	}
	if opts.ProprieteIntellectuelle {
		ordered = append(ordered, ArticleProprieteIntellectuelle)
	}
	if opts.Responsabilite {
		ordered = append(ordered, ArticleResponsabilite)
	}
	ordered = append(ordered, ArticleResiliation, ArticleDroitApplicable)

	numbers := make(map[string]int, len(ordered))
	for i, name := range ordered {
		numbers[name] = i + 1
	}
	return numbers
}
