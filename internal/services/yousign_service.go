// internal/services/yousign_service.go
package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talentflow/tf-backend/internal/config"
	"github.com/talentflow/tf-backend/internal/models"
)

// YouSignService is the e-signature provider client. Completion is
// webhook-driven; the handler verifies the webhook signature with
// VerifyWebhookSignature before trusting the payload.
type YouSignService struct {
	config     *config.Config
	httpClient *http.Client
}

func NewYouSignService(config *config.Config) *YouSignService {
	return &YouSignService{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type yousignProcedurePayload struct {
	Name        string              `json:"name"`
	DocumentURL string              `json:"document_url"`
	Signers     []yousignSignerInfo `json:"signers"`
}

type yousignSignerInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type yousignProcedureResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (s *YouSignService) CreateProcedure(ctx context.Context, contract *models.Contract, draftURL, signerEmail, signerName string) (string, error) {
	payload := yousignProcedurePayload{
		Name:        fmt.Sprintf("Contrat %s v%d", contract.Reference, contract.Version),
		DocumentURL: draftURL,
		Signers: []yousignSignerInfo{
			{Email: signerEmail, Name: signerName},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.YouSign.BaseURL+"/signature_requests", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.config.YouSign.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("YouSign request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("YouSign returned status %d", resp.StatusCode)
	}

	var procedure yousignProcedureResponse
	if err := json.NewDecoder(resp.Body).Decode(&procedure); err != nil {
		return "", fmt.Errorf("failed to decode YouSign response: %w", err)
	}

	return procedure.ID, nil
}

func (s *YouSignService) GetProcedureStatus(ctx context.Context, procedureID string) (models.SignatureStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.YouSign.BaseURL+"/signature_requests/"+procedureID, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.config.YouSign.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("YouSign request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("YouSign returned status %d for procedure %s", resp.StatusCode, procedureID)
	}

	var procedure yousignProcedureResponse
	if err := json.NewDecoder(resp.Body).Decode(&procedure); err != nil {
		return "", fmt.Errorf("failed to decode YouSign response: %w", err)
	}

	switch procedure.Status {
	case "done":
		return models.SignatureStatusDone, nil
	case "ongoing", "approval":
		return models.SignatureStatusOngoing, nil
	case "declined", "rejected":
		return models.SignatureStatusRefused, nil
	case "canceled", "expired":
		return models.SignatureStatusCanceled, nil
	default:
		return models.SignatureStatusPending, nil
	}
}

func (s *YouSignService) GetSignedDocument(ctx context.Context, procedureID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.YouSign.BaseURL+"/signature_requests/"+procedureID+"/documents/download", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.config.YouSign.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("YouSign request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("YouSign returned status %d downloading procedure %s", resp.StatusCode, procedureID)
	}

	return io.ReadAll(resp.Body)
}

// VerifyWebhookSignature checks the HMAC-SHA256 signature YouSign sets on
// webhook deliveries.
func (s *YouSignService) VerifyWebhookSignature(body []byte, signature string) bool {
	if s.config.YouSign.WebhookSecret == "" {
		// No secret configured (local development): accept everything.
		return true
	}

	mac := hmac.New(sha256.New, []byte(s.config.YouSign.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
