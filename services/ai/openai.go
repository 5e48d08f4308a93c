package aisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/njia/core"
)

const systemPrompt = "You are a careful assistant for a learning platform. " +
	"Always answer with a single fenced ```json code block and nothing else of consequence."

type (
	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	chatRequest struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
	}

	chatResponse struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
)

// openAIService calls an OpenAI-compatible chat-completions endpoint.
// Every call carries a bounded timeout: the upstream has no SLA and an
// unbounded call would tie up the request indefinitely.
type openAIService struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	timeout     time.Duration
	client      *http.Client
	logger      core.Logger
}

var _ core.TextGenerator = (*openAIService)(nil)

func NewOpenAIService(conf *core.Config, logger core.Logger) *openAIService {
	return &openAIService{
		baseURL:     strings.TrimRight(conf.AI.BaseURL, "/"),
		apiKey:      conf.AI.APIKey,
		model:       conf.AI.Model,
		temperature: conf.AI.Temperature,
		timeout:     conf.AI.RequestTimeout,
		client:      new(http.Client),
		logger:      logger,
	}
}

func (svc *openAIService) GenerateJSON(ctx context.Context, prompt string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, svc.timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: svc.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: svc.temperature,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshalling chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+svc.apiKey)

	res, err := svc.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, core.ErrUpstreamTimeout
		}
		return nil, errors.Wrap(err, "calling generative endpoint")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		data, _ := ioutil.ReadAll(res.Body)
		svc.logger.Error(fmt.Sprintf("generative endpoint - status: %d - body: %s", res.StatusCode, data))
		return nil, errors.Errorf("generative endpoint returned status %d", res.StatusCode)
	}

	var cres chatResponse
	if err = json.NewDecoder(res.Body).Decode(&cres); err != nil {
		return nil, errors.Wrap(err, "decoding chat response")
	}
	if len(cres.Choices) == 0 {
		return nil, errors.Wrap(core.ErrUpstreamFormat, "chat response has no choices")
	}
	return ExtractFencedJSON(cres.Choices[0].Message.Content)
}

func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() == context.DeadlineExceeded {
		return true
	}
	if uerr, ok := err.(*url.Error); ok && uerr.Timeout() {
		return true
	}
	return false
}
