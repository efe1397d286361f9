package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"blip/internal/model"
)

// IPFSClient client for an IPFS node HTTP API
type IPFSClient struct {
	baseURL string
	client  *http.Client
}

// NewIPFSClient creates a new IPFS API client
func NewIPFSClient(baseURL string, timeout time.Duration) *IPFSClient {
	return &IPFSClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type ipfsAddResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// Add uploads a blob to the node and returns its content identifier
func (c *IPFSClient) Add(ctx context.Context, name string, data io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/api/v0/add", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &model.NetworkError{Op: "ipfs add", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &model.NetworkError{Op: "ipfs add", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var added ipfsAddResponse
	if err := json.NewDecoder(resp.Body).Decode(&added); err != nil {
		return "", fmt.Errorf("failed to decode ipfs response: %w", err)
	}
	if added.Hash == "" {
		return "", fmt.Errorf("ipfs node returned no hash")
	}
	return added.Hash, nil
}
