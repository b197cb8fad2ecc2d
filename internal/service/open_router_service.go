package service

import (
	"context"
	"fmt"

	"github.com/fadilmartias/hiring-pipeline/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

type OpenRouterServiceInterface interface {
	Summarize(ctx context.Context, in SummaryInput) (CandidateSummary, error)
}

type OpenRouterService struct {
	APIKey  string
	Model   string
	BaseURL string
	client  *resty.Client
}

func NewOpenRouterService(cfg *config.OpenRouterConfig) *OpenRouterService {
	return &OpenRouterService{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		client:  resty.New().SetTimeout(cfg.Timeout),
	}
}

func (s *OpenRouterService) Summarize(ctx context.Context, in SummaryInput) (CandidateSummary, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"model": s.Model,
			"messages": []map[string]string{
				{"role": "system", "content": "You are an AI summarizing structured interview feedback for a hiring panel."},
				{"role": "user", "content": buildSummaryPrompt(in)},
			},
			"response_format": map[string]string{"type": "json_object"},
		}).
		Post(s.BaseURL + "/chat/completions")
	if err != nil {
		return CandidateSummary{}, err
	}
	if resp.IsError() {
		msg := gjson.Get(resp.String(), "error.message").String()
		return CandidateSummary{}, fmt.Errorf("openrouter returned %s: %s", resp.Status(), msg)
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return CandidateSummary{}, fmt.Errorf("no response from LLM")
	}
	return parseSummary("openrouter", text)
}
