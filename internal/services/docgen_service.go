// internal/services/docgen_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
)

// DocgenService renders contract drafts from an HTML template and the
// computed article-number map. Rendering to PDF is delegated downstream; this
// service produces the HTML document bytes the converter consumes.
type DocgenService struct {
	tmpl *template.Template
}

func NewDocgenService() (*DocgenService, error) {
	tmpl, err := template.New("contract").Parse(contractTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract template: %w", err)
	}
	return &DocgenService{tmpl: tmpl}, nil
}

func (s *DocgenService) GenerateDraft(ctx context.Context, templateCtx map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, templateCtx); err != nil {
		return nil, fmt.Errorf("failed to render contract draft: %w", err)
	}
	return buf.Bytes(), nil
}

const contractTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Contrat {{.reference}}</title></head>
<body>
	<h1>Contrat de prestation {{.reference}} (version {{.version}})</h1>

	<h2>Article {{index .article_numbers "objet"}} - Objet</h2>
	<p>Le présent contrat définit les conditions dans lesquelles le prestataire réalise la mission.</p>

	<h2>Article {{index .article_numbers "duree"}} - Durée</h2>
	<p>{{if .start_date}}La mission débute le {{.start_date}}{{if .end_date}} et se termine le {{.end_date}}{{end}}.{{else}}La durée de la mission est précisée au bon de commande.{{end}}</p>

	<h2>Article {{index .article_numbers "conditions_financieres"}} - Conditions financières</h2>
	<p>{{if .daily_rate}}Le taux journalier est fixé à {{.daily_rate}} € HT.{{else}}Les conditions financières sont précisées au bon de commande.{{end}}</p>

	<h2>Article {{index .article_numbers "modalites_facturation"}} - Modalités de facturation</h2>
	<p>Le prestataire facture mensuellement sur la base du compte-rendu d'activité validé.</p>

	<h2>Article {{index .article_numbers "obligations_prestataire"}} - Obligations du prestataire</h2>
	<p>Le prestataire maintient à jour ses documents de vigilance pendant toute la durée du contrat.</p>

	{{if index .article_numbers "confidentialite"}}
	<h2>Article {{index .article_numbers "confidentialite"}} - Confidentialité</h2>
	<p>Le prestataire s'engage à ne divulguer aucune information confidentielle.</p>
	{{end}}

	{{if index .article_numbers "non_concurrence"}}
	<h2>Article {{index .article_numbers "non_concurrence"}} - Non-concurrence</h2>
	<p>Le prestataire s'interdit de démarcher directement le client final pendant la durée du contrat et douze mois après.</p>
	{{end}}

	{{if index .article_numbers "propriete_intellectuelle"}}
	<h2>Article {{index .article_numbers "propriete_intellectuelle"}} - Propriété intellectuelle</h2>
	<p>Les livrables produits dans le cadre de la mission sont cédés au client.</p>
	{{end}}

	{{if index .article_numbers "responsabilite"}}
	<h2>Article {{index .article_numbers "responsabilite"}} - Responsabilité</h2>
	<p>La responsabilité du prestataire est limitée au montant des sommes perçues au titre du contrat.</p>
	{{end}}

	<h2>Article {{index .article_numbers "resiliation"}} - Résiliation</h2>
	<p>Chaque partie peut résilier le contrat avec un préavis de trente jours.</p>

	<h2>Article {{index .article_numbers "droit_applicable"}} - Droit applicable</h2>
	<p>Le présent contrat est soumis au droit français.</p>
</body>
</html>`
