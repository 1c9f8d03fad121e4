package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/models"
)

const uploadPath = "/api/upload-leads"

// Uploader POSTs lead payloads to the website ingest endpoint.
type Uploader struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  arbor.ILogger
}

func NewUploader(baseURL, apiKey string, client *http.Client, logger arbor.ILogger) (*Uploader, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("upload base URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("upload API key is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Uploader{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		logger:  logger,
	}, nil
}

// Upload sends the payload. Any non-200 response is an error carrying
// the response body for diagnosis.
func (u *Uploader) Upload(ctx context.Context, upload *models.LeadUpload) error {
	body, err := json.Marshal(upload)
	if err != nil {
		return fmt.Errorf("failed to marshal lead payload: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+uploadPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("X-API-Key", u.apiKey)

	u.logger.Info().
		Int("leads", len(upload.Leads)).
		Str("location", upload.Location).
		Msg("Uploading leads")

	response, err := u.client.Do(request)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(response.Body, 2048))
		return fmt.Errorf("upload returned status %d: %s", response.StatusCode, strings.TrimSpace(string(detail)))
	}

	u.logger.Info().Int("leads", len(upload.Leads)).Msg("Upload complete")
	return nil
}
