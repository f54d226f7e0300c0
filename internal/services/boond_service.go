// internal/services/boond_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/talentflow/tf-backend/internal/config"
	"github.com/talentflow/tf-backend/internal/models"
)

// BoondService is the BoondManager CRM client. The pipeline uses it at the
// tail end only: provider registration and purchase-order creation during the
// CRM push, plus read-only positioning lookups for display.
type BoondService struct {
	config     *config.Config
	httpClient *http.Client
}

func NewBoondService(config *config.Config) *BoondService {
	return &BoondService{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type boondProviderPayload struct {
	CompanyName    string `json:"companyName"`
	LegalForm      string `json:"legalForm,omitempty"`
	Siren          string `json:"registrationNumber"`
	Address        string `json:"address,omitempty"`
	ContactEmail   string `json:"email"`
	Representative string `json:"civilityName,omitempty"`
}

type boondPurchaseOrderPayload struct {
	PositioningID string     `json:"positioningId"`
	ProviderID    string     `json:"providerId"`
	DailyRate     float64    `json:"dailyRate"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	EndDate       *time.Time `json:"endDate,omitempty"`
}

type boondIDResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (s *BoondService) CreateProvider(ctx context.Context, tp *models.ThirdParty) (string, error) {
	payload := boondProviderPayload{
		CompanyName:    tp.CompanyName,
		LegalForm:      tp.LegalForm,
		Siren:          tp.Siren,
		Address:        tp.RegisteredOffice,
		ContactEmail:   tp.ContactEmail,
		Representative: tp.Representative,
	}

	var resp boondIDResponse
	if err := s.post(ctx, "/providers", payload, &resp); err != nil {
		return "", fmt.Errorf("failed to create Boond provider: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"third_party_id": tp.ID,
		"provider_id":    resp.Data.ID,
	}).Info("Boond provider created")

	return resp.Data.ID, nil
}

func (s *BoondService) CreatePurchaseOrder(ctx context.Context, positioningID, providerID string, dailyRate float64, startDate, endDate *time.Time) (string, error) {
	payload := boondPurchaseOrderPayload{
		PositioningID: positioningID,
		ProviderID:    providerID,
		DailyRate:     dailyRate,
		StartDate:     startDate,
		EndDate:       endDate,
	}

	var resp boondIDResponse
	if err := s.post(ctx, "/purchases", payload, &resp); err != nil {
		return "", fmt.Errorf("failed to create Boond purchase order: %w", err)
	}

	return resp.Data.ID, nil
}

func (s *BoondService) GetPositioning(ctx context.Context, positioningID string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.Boond.BaseURL+"/positionings/"+positioningID, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.config.Boond.Username, s.config.Boond.Password)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Boond request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Boond returned status %d for positioning %s", resp.StatusCode, positioningID)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode Boond response: %w", err)
	}

	return body, nil
}

func (s *BoondService) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Boond.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.config.Boond.Username, s.config.Boond.Password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Boond request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("Boond returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
