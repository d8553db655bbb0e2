// internal/common/marketplace/client.go
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"agreement-workers/internal/models"
)

// TokenProvider attaches service-account credentials to outgoing requests.
// Satisfied by auth.KeycloakClient.
type TokenProvider interface {
	AuthorizeRequest(ctx context.Context, req *http.Request) error
}

// Client wraps the marketplace core REST API (agreement and contract
// services). All state transitions happen server-side; the client only
// submits actions and re-fetches the authoritative snapshot.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	uploadClient  *http.Client
	tokenProvider TokenProvider
	maxUploadSize int64
}

// APIError carries the server-provided error detail verbatim so callers can
// surface it to the user unchanged.
type APIError struct {
	StatusCode int
	Operation  string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("marketplace %s failed (status %d): %s", e.Operation, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("marketplace %s failed (status %d)", e.Operation, e.StatusCode)
}

// errorEnvelope is the core API's error body shape.
type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

// NewClient creates a marketplace API client. uploadTimeout applies only to
// custom document uploads, which can be substantially slower.
func NewClient(baseURL string, timeout, uploadTimeout time.Duration, maxUploadSize int64, tokens TokenProvider) *Client {
	return &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		uploadClient:  &http.Client{Timeout: uploadTimeout},
		tokenProvider: tokens,
		maxUploadSize: maxUploadSize,
	}
}

// GetAgreementDetails fetches the full agreement snapshot.
func (c *Client) GetAgreementDetails(ctx context.Context, agreementID string) (*models.Agreement, error) {
	url := fmt.Sprintf("%s/agreements/%s", c.baseURL, agreementID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.do(ctx, c.httpClient, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &APIError{StatusCode: resp.StatusCode, Operation: "get agreement", Detail: "agreement not found"}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp, "get agreement")
	}

	var agreement models.Agreement
	if err := json.NewDecoder(resp.Body).Decode(&agreement); err != nil {
		return nil, fmt.Errorf("failed to decode agreement: %w", err)
	}

	return &agreement, nil
}

// UpdateAgreementFees submits the placement fee for a fee-bearing applicant.
// It does not sign anything; the signature step is unlocked only once the
// re-fetched snapshot confirms the fees persisted.
func (c *Client) UpdateAgreementFees(ctx context.Context, agreementID string, fees *models.FeeSubmission) error {
	url := fmt.Sprintf("%s/agreements/%s/fees", c.baseURL, agreementID)

	jsonData, err := json.Marshal(fees)
	if err != nil {
		return fmt.Errorf("failed to marshal fees: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, c.httpClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.apiError(resp, "update fees")
	}

	return nil
}

// SignAgreement submits a signature on behalf of the acting user. The
// response's both_signed flag reports whether this signature completed the
// agreement (server moves the contract to booked in that case).
func (c *Client) SignAgreement(ctx context.Context, agreementID string, sig *models.SignatureSubmission) (*models.SignResult, error) {
	url := fmt.Sprintf("%s/agreements/%s/sign", c.baseURL, agreementID)

	jsonData, err := json.Marshal(sig)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signature: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, c.httpClient, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp, "sign agreement")
	}

	var result models.SignResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode sign response: %w", err)
	}

	return &result, nil
}

// ChoosePlatformAgreement selects the system-generated template document.
// Publisher-only, valid while the agreement is in draft.
func (c *Client) ChoosePlatformAgreement(ctx context.Context, agreementID string) error {
	url := fmt.Sprintf("%s/agreements/%s/document/platform", c.baseURL, agreementID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.do(ctx, c.httpClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.apiError(resp, "choose platform agreement")
	}

	return nil
}

// UploadCustomAgreement uploads a publisher-provided PDF or DOCX in place of
// the platform template. Size and extension are checked before any bytes go
// over the wire.
func (c *Client) UploadCustomAgreement(ctx context.Context, agreementID, filename string, content []byte) error {
	if err := c.validateUpload(filename, int64(len(content))); err != nil {
		return err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("document", filepath.Base(filename))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/agreements/%s/document/custom", c.baseURL, agreementID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.do(ctx, c.uploadClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return c.apiError(resp, "upload custom agreement")
	}

	return nil
}

// PreviewCustomAgreement fetches the uploaded custom document for preview.
// The caller owns closing the returned reader.
func (c *Client) PreviewCustomAgreement(ctx context.Context, agreementID string) (io.ReadCloser, string, error) {
	url := fmt.Sprintf("%s/agreements/%s/document/preview", c.baseURL, agreementID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.do(ctx, c.uploadClient, req)
	if err != nil {
		return nil, "", err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, "", c.apiError(resp, "preview custom agreement")
	}

	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// RecordActionLog writes an audit entry through the core API's action-log
// service. The worker also persists audit rows locally; this call keeps the
// marketplace's own log in step.
func (c *Client) RecordActionLog(ctx context.Context, record *models.AuditRecord) error {
	url := fmt.Sprintf("%s/action-logs", c.baseURL)

	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal action log: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, c.httpClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return c.apiError(resp, "record action log")
	}

	return nil
}

var allowedUploadExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}

func (c *Client) validateUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedUploadExtensions[ext] {
		return fmt.Errorf("unsupported document type %q: only PDF and DOCX are accepted", ext)
	}
	if size == 0 {
		return fmt.Errorf("document is empty")
	}
	if c.maxUploadSize > 0 && size > c.maxUploadSize {
		return fmt.Errorf("document size %d exceeds limit of %d bytes", size, c.maxUploadSize)
	}
	return nil
}

func (c *Client) do(ctx context.Context, httpClient *http.Client, req *http.Request) (*http.Response, error) {
	if c.tokenProvider != nil {
		if err := c.tokenProvider.AuthorizeRequest(ctx, req); err != nil {
			return nil, fmt.Errorf("failed to authorize request: %w", err)
		}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	return resp, nil
}

// apiError extracts the server's own error message so it can be shown to the
// user verbatim. Falls back to the raw body when the envelope doesn't parse.
func (c *Client) apiError(resp *http.Response, operation string) error {
	body, _ := io.ReadAll(resp.Body)

	detail := ""
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Message != "":
			detail = envelope.Message
		case envelope.Detail != "":
			detail = envelope.Detail
		case envelope.Error != "":
			detail = envelope.Error
		}
	}
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Operation:  operation,
		Detail:     detail,
	}
}
