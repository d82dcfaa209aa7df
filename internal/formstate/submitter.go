package formstate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/moralknight/outreach-server/internal/models"
)

// HTTPSubmitter encodes a payload as JSON and posts it to the submission
// endpoint. The attachment rides along base64-encoded inside the
// "attachment" object, which is how encoding/json transports []byte.
type HTTPSubmitter struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPSubmitter creates a submitter for the given endpoint URL.
func NewHTTPSubmitter(endpoint string) *HTTPSubmitter {
	return &HTTPSubmitter{Endpoint: endpoint, Client: http.DefaultClient}
}

// Submit posts the payload and interprets the API response.
func (s *HTTPSubmitter) Submit(ctx context.Context, p *models.SubmissionPayload) (*models.ReportRecord, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit form: %w", err)
	}
	defer resp.Body.Close()

	var apiResp models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !apiResp.Success {
		if apiResp.Message != "" {
			return nil, errors.New(apiResp.Message)
		}
		return nil, fmt.Errorf("submission failed with status %d", resp.StatusCode)
	}

	return &models.ReportRecord{
		ReportID: apiResp.ReportID,
		FormType: p.FormType,
	}, nil
}
