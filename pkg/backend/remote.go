package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/pario-ai/ipstrategy/pkg/config"
	"github.com/pario-ai/ipstrategy/pkg/models"
	"github.com/pario-ai/ipstrategy/pkg/prompt"
)

const (
	maxResponseBytes = 4 << 20
	maxDetailBytes   = 512
)

// Remote calls a hosted text-generation inference endpoint that answers with
// a JSON array whose first element carries generated_text.
type Remote struct {
	cfg        config.RemoteConfig
	httpClient *http.Client
}

type remoteRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters remoteParameters `json:"parameters"`
}

type remoteParameters struct {
	MaxNewTokens      int     `json:"max_new_tokens,omitempty"`
	Temperature       float64 `json:"temperature,omitempty"`
	TopP              float64 `json:"top_p,omitempty"`
	RepetitionPenalty float64 `json:"repetition_penalty,omitempty"`
}

// NewRemote creates a Remote backend. timeout bounds each HTTP exchange.
func NewRemote(cfg config.RemoteConfig, timeout time.Duration) *Remote {
	return &Remote{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: httpTimeout(timeout)},
	}
}

func (*Remote) Name() string { return "remote" }

func (r *Remote) Call(ctx context.Context, req Request) (models.Strategy, error) {
	if r.cfg.Token == "" {
		return models.Strategy{}, models.Configurationf(
			"remote backend token is not set: set remote.token or IPSTRATEGY_REMOTE_TOKEN")
	}
	if r.cfg.URL == "" {
		return models.Strategy{}, models.Configurationf("remote backend url is not set")
	}

	body, err := json.Marshal(remoteRequest{
		Inputs: req.Prompt,
		Parameters: remoteParameters{
			MaxNewTokens:      r.cfg.MaxNewTokens,
			Temperature:       r.cfg.Temperature,
			TopP:              r.cfg.TopP,
			RepetitionPenalty: r.cfg.RepetitionPenalty,
		},
	})
	if err != nil {
		return models.Strategy{}, models.BackendFailure(0, "encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return models.Strategy{}, models.Configurationf("invalid remote backend url: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+r.cfg.Token)

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return models.Strategy{}, transportFailure(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return models.Strategy{}, transportFailure(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.Strategy{}, models.BackendFailure(resp.StatusCode,
			"remote backend returned "+http.StatusText(resp.StatusCode)+detail(respBody), nil)
	}

	text, err := parseGenerated(respBody)
	if err != nil {
		return models.Strategy{}, models.BackendFailure(resp.StatusCode, err.Error(), nil)
	}

	text = prompt.StripEcho(text, req.Prompt)
	if text == "" {
		return models.Strategy{}, models.BackendFailure(resp.StatusCode, "remote backend returned an empty generation", nil)
	}
	return models.Strategy{Text: text, Backend: r.Name()}, nil
}

// parseGenerated extracts [0].generated_text from an inference response.
func parseGenerated(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", errors.New("malformed response: not JSON")
	}
	parsed := gjson.ParseBytes(body)
	if msg := parsed.Get("error"); msg.Exists() {
		return "", fmt.Errorf("remote backend error: %s", msg.String())
	}
	if !parsed.IsArray() {
		return "", errors.New("malformed response: expected a JSON array")
	}
	gen := parsed.Get("0.generated_text")
	if !gen.Exists() || gen.Type != gjson.String {
		return "", errors.New("malformed response: missing generated_text")
	}
	return gen.String(), nil
}

func transportFailure(err error) *models.Failure {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return models.NetworkFailure("request timed out", err)
	}
	return models.NetworkFailure("request failed: "+err.Error(), err)
}

func detail(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return ""
	}
	if len(s) > maxDetailBytes {
		s = s[:maxDetailBytes] + "..."
	}
	return ": " + s
}
