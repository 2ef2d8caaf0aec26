// Package cloudflare calls the Workers AI run endpoint directly over HTTP;
// there is no official Go SDK for it.
package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dvillegas/scam-radar/internal/domain/llm"
)

const (
	defaultModel   = "@cf/meta/llama-3.1-8b-instruct"
	defaultBaseURL = "https://api.cloudflare.com/client/v4"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	accountID  string
	model      string
}

func NewClient(token, accountID, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		httpClient: &http.Client{},
		baseURL:    defaultBaseURL,
		token:      token,
		accountID:  accountID,
		model:      model,
	}
}

type runRequest struct {
	Prompt string `json:"prompt"`
}

type runResponse struct {
	Result struct {
		Response string `json:"response"`
	} `json:"result"`
	Success bool `json:"success"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Chat flattens the message list into a single role-prefixed prompt; Workers
// AI's run endpoint takes one prompt string, not a message array. wantJSON is
// advisory only here: the output contract lives in the prompt itself.
func (c *Client) Chat(ctx context.Context, messages []llm.Message, wantJSON bool) (string, error) {
	var prompt strings.Builder
	for i, m := range messages {
		if i > 0 {
			prompt.WriteString("\n")
		}
		prompt.WriteString(strings.ToUpper(m.Role))
		prompt.WriteString(": ")
		prompt.WriteString(m.Content)
	}

	body, err := json.Marshal(runRequest{Prompt: prompt.String()})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/accounts/%s/ai/run/%s", c.baseURL, c.accountID, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cloudflare request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out runResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("cloudflare response decode failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		msg := "cloudflare_error"
		if len(out.Errors) > 0 {
			msg = out.Errors[0].Message
		}
		return "", fmt.Errorf("cloudflare api error: %s", msg)
	}
	if out.Result.Response == "" {
		return "", llm.ErrEmptyResponse
	}
	return out.Result.Response, nil
}
