package service

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

// geminiGenerator 抽象 Gemini 调用，测试中可替换。
type geminiGenerator interface {
	Generate(ctx context.Context, apiKey, model string, req aiChatRequest) (aiChatResponse, error)
}

// genaiGenerator 使用 google.golang.org/genai 调用 Gemini API。
type genaiGenerator struct{}

func (genaiGenerator) Generate(ctx context.Context, apiKey, model string, req aiChatRequest) (aiChatResponse, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return aiChatResponse{}, err
	}

	config := &genai.GenerateContentConfig{}
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(req.UserPrompt), config)
	if err != nil {
		return aiChatResponse{}, err
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return aiChatResponse{}, errors.New("Gemini 接口未返回结果")
	}

	resp := aiChatResponse{Content: text}
	if usage := result.UsageMetadata; usage != nil {
		resp.PromptTokens = int(usage.PromptTokenCount)
		resp.CompletionTokens = int(usage.CandidatesTokenCount)
	}
	return resp, nil
}
