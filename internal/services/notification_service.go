// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/talentflow/tf-backend/internal/config"
	"github.com/talentflow/tf-backend/internal/models"
)

// NotificationService sends the platform's transactional emails over SMTP.
// Without an SMTP host configured it logs instead of sending, so local
// environments behave without a mail relay.
type NotificationService struct {
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{config: config}
}

var documentTypeLabels = map[models.DocumentType]string{
	models.DocumentTypeKbis:           "Extrait Kbis",
	models.DocumentTypeUrssaf:         "Attestation de vigilance URSSAF",
	models.DocumentTypeFiscal:         "Attestation de régularité fiscale",
	models.DocumentTypeRCPro:          "Attestation d'assurance RC Pro",
	models.DocumentTypeIDCard:         "Pièce d'identité du dirigeant",
	models.DocumentTypeRIB:            "RIB",
	models.DocumentTypeSocialSecurity: "Attestation de déclarations sociales",
	models.DocumentTypeForeignWorkers: "Liste des travailleurs étrangers",
}

// DocumentTypeLabel returns the human-readable French label for a document
// type, falling back to the raw value for unknown types.
func DocumentTypeLabel(t models.DocumentType) string {
	if label, ok := documentTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

func (s *NotificationService) SendDocumentCollectionRequest(tp *models.ThirdParty, portalURL string) error {
	data := map[string]interface{}{
		"CompanyName": tp.CompanyName,
		"PortalURL":   portalURL,
	}

	subject := "Documents de vigilance à transmettre"
	body, err := s.renderTemplate(s.getEmailTemplate("document_collection").Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(tp.ContactEmail, subject, body)
}

func (s *NotificationService) SendDocumentRejected(tp *models.ThirdParty, doc *models.VigilanceDocument, portalURL string) error {
	data := map[string]interface{}{
		"CompanyName":  tp.CompanyName,
		"DocumentName": DocumentTypeLabel(doc.DocumentType),
		"Reason":       doc.RejectionReason,
		"PortalURL":    portalURL,
	}

	subject := "Document refusé - " + DocumentTypeLabel(doc.DocumentType)
	body, err := s.renderTemplate(s.getEmailTemplate("document_rejected").Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(tp.ContactEmail, subject, body)
}

func (s *NotificationService) SendDocumentExpiring(tp *models.ThirdParty, doc *models.VigilanceDocument, daysRemaining int) error {
	data := map[string]interface{}{
		"CompanyName":   tp.CompanyName,
		"DocumentName":  DocumentTypeLabel(doc.DocumentType),
		"DaysRemaining": daysRemaining,
	}

	subject := fmt.Sprintf("Document expirant dans %d jours - %s", daysRemaining, DocumentTypeLabel(doc.DocumentType))
	body, err := s.renderTemplate(s.getEmailTemplate("document_expiring").Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(tp.ContactEmail, subject, body)
}

func (s *NotificationService) SendDocumentExpired(tp *models.ThirdParty, doc *models.VigilanceDocument) error {
	data := map[string]interface{}{
		"CompanyName":  tp.CompanyName,
		"DocumentName": DocumentTypeLabel(doc.DocumentType),
	}

	subject := "Document expiré - " + DocumentTypeLabel(doc.DocumentType)
	body, err := s.renderTemplate(s.getEmailTemplate("document_expired").Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(tp.ContactEmail, subject, body)
}

func (s *NotificationService) SendContractReviewRequest(tp *models.ThirdParty, contract *models.Contract, reviewURL string) error {
	data := map[string]interface{}{
		"CompanyName": tp.CompanyName,
		"Reference":   contract.Reference,
		"Version":     contract.Version,
		"ReviewURL":   reviewURL,
	}

	subject := "Contrat à relire - " + contract.Reference
	body, err := s.renderTemplate(s.getEmailTemplate("contract_review").Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(tp.ContactEmail, subject, body)
}

func (s *NotificationService) SendContractChangesRequested(commercialEmail string, contract *models.Contract, comments string) error {
	data := map[string]interface{}{
		"Reference": contract.Reference,
		"Version":   contract.Version,
		"Comments":  comments,
	}

	subject := "Modifications demandées - " + contract.Reference
	body, err := s.renderTemplate(s.getEmailTemplate("contract_changes_requested").Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(commercialEmail, subject, body)
}

func (s *NotificationService) SendContractSigned(commercialEmail string, contract *models.Contract) error {
	data := map[string]interface{}{
		"Reference": contract.Reference,
		"SignedAt":  contract.SignedAt,
	}

	subject := "Contrat signé - " + contract.Reference
	body, err := s.renderTemplate(s.getEmailTemplate("contract_signed").Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(commercialEmail, subject, body)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		fmt.Printf("Email would be sent to %s: %s\n", to, subject)
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	// In a real implementation, these would be loaded from files or database
	templates := map[string]EmailTemplate{
		"document_collection": {
			Subject: "Documents de vigilance à transmettre",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Bonjour,</h2>
	<p>Dans le cadre de votre collaboration avec nous, nous avons besoin des documents de vigilance de {{.CompanyName}}.</p>
	<p>Vous pouvez les déposer en toute sécurité via le lien ci-dessous :</p>
	<a href="{{.PortalURL}}">Déposer mes documents</a>
	<p>Ce lien est personnel et expire sous 7 jours.</p>
	<p>L'équipe TalentFlow</p>
</body>
</html>`,
		},
		"document_rejected": {
			Subject: "Document refusé",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Bonjour,</h2>
	<p>Le document <strong>{{.DocumentName}}</strong> transmis pour {{.CompanyName}} n'a pas pu être accepté :</p>
	<p><em>{{.Reason}}</em></p>
	<p>Merci de déposer une nouvelle version via le lien ci-dessous :</p>
	<a href="{{.PortalURL}}">Déposer un nouveau document</a>
	<p>L'équipe TalentFlow</p>
</body>
</html>`,
		},
		"document_expiring": {
			Subject: "Document expirant prochainement",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Bonjour,</h2>
	<p>Le document <strong>{{.DocumentName}}</strong> de {{.CompanyName}} expire dans {{.DaysRemaining}} jours.</p>
	<p>Merci de nous transmettre une version à jour avant son expiration.</p>
	<p>L'équipe TalentFlow</p>
</body>
</html>`,
		},
		"document_expired": {
			Subject: "Document expiré",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Bonjour,</h2>
	<p>Le document <strong>{{.DocumentName}}</strong> de {{.CompanyName}} est arrivé à expiration.</p>
	<p>Votre dossier de vigilance n'est plus conforme tant qu'une version à jour n'a pas été validée.</p>
	<p>L'équipe TalentFlow</p>
</body>
</html>`,
		},
		"contract_review": {
			Subject: "Contrat à relire",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Bonjour,</h2>
	<p>Le contrat <strong>{{.Reference}}</strong> (version {{.Version}}) est prêt pour votre relecture.</p>
	<a href="{{.ReviewURL}}">Consulter le contrat</a>
	<p>Vous pourrez l'approuver ou demander des modifications directement depuis cette page.</p>
	<p>L'équipe TalentFlow</p>
</body>
</html>`,
		},
		"contract_changes_requested": {
			Subject: "Modifications demandées",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Bonjour,</h2>
	<p>Le partenaire a demandé des modifications sur le contrat <strong>{{.Reference}}</strong> (version {{.Version}}) :</p>
	<p><em>{{.Comments}}</em></p>
	<p>L'équipe TalentFlow</p>
</body>
</html>`,
		},
		"contract_signed": {
			Subject: "Contrat signé",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Bonjour,</h2>
	<p>Le contrat <strong>{{.Reference}}</strong> a été signé.</p>
	<p>Le document signé est disponible dans l'espace de gestion.</p>
	<p>L'équipe TalentFlow</p>
</body>
</html>`,
		},
	}

	if template, exists := templates[templateType]; exists {
		return template
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
