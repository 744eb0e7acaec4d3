package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"autoapply/config"
	"autoapply/models"
)

// PageAnalysis is the advisory strategy for a generic application page.
type PageAnalysis struct {
	NeedsApplyClick  bool     `json:"needsApplyClick"`
	HasLoginRequired bool     `json:"hasLoginRequired"`
	FormFields       []string `json:"formFields"`
	SubmitButtonText string   `json:"submitButtonText"`
	Strategy         string   `json:"strategy"`
}

// DefaultPageAnalysis is used whenever no usable analysis comes back.
func DefaultPageAnalysis() PageAnalysis {
	return PageAnalysis{
		NeedsApplyClick:  true,
		HasLoginRequired: false,
		FormFields:       []string{"name", "email", "phone"},
		SubmitButtonText: "Submit",
		Strategy:         "Standard form filling",
	}
}

// ContentGenerator produces page analyses and cover letters. Implementations
// never fail: they fall back to fixed content instead.
type ContentGenerator interface {
	AnalyzePage(ctx context.Context, pageText string, profile models.UserProfile) PageAnalysis
	GenerateCoverLetter(ctx context.Context, profile models.UserProfile) string
}

// FallbackCoverLetter is the letter used when generation is unavailable.
func FallbackCoverLetter(profile models.UserProfile) string {
	years := profile.YearsOfExperience
	if years <= 0 {
		years = 3
	}
	return fmt.Sprintf("I am %s, and I am excited to apply for this position. With %d years of experience, I believe I would be a great fit for your team.",
		profile.Name, years)
}

var errEmptyCompletion = errors.New("empty completion")

type textCompleter interface {
	Complete(ctx context.Context, prompt string, maxTokens int64, temperature float64) (string, error)
}

// LLMContentGenerator backs ContentGenerator with a chat-completion model.
// A nil completer makes it a pure fallback generator.
type LLMContentGenerator struct {
	completer textCompleter
}

// NewLLMContentGenerator picks the backend named by cfg.Provider.
func NewLLMContentGenerator(cfg config.LLMConfig) *LLMContentGenerator {
	switch cfg.Provider {
	case "groq", "openai":
		if cfg.APIKey == "" {
			log.Printf("LLM provider %s configured without an API key, using fallbacks", cfg.Provider)
			return &LLMContentGenerator{}
		}
		return &LLMContentGenerator{completer: newOpenAICompleter(cfg)}
	case "gemini":
		return &LLMContentGenerator{completer: newGeminiCompleter(cfg)}
	default:
		return &LLMContentGenerator{}
	}
}

func (g *LLMContentGenerator) AnalyzePage(ctx context.Context, pageText string, profile models.UserProfile) PageAnalysis {
	if g.completer == nil {
		return DefaultPageAnalysis()
	}

	prompt := buildAnalysisPrompt(excerpt(pageText, PageExcerptLimit), profile)
	response, err := g.completer.Complete(ctx, prompt, 500, 0.3)
	if err != nil {
		log.Printf("Page analysis failed, using default strategy: %v", err)
		return DefaultPageAnalysis()
	}

	analysis, err := parsePageAnalysis(response)
	if err != nil {
		log.Printf("Page analysis unparseable, using default strategy: %v", err)
		return DefaultPageAnalysis()
	}
	return analysis
}

func (g *LLMContentGenerator) GenerateCoverLetter(ctx context.Context, profile models.UserProfile) string {
	if g.completer == nil {
		return FallbackCoverLetter(profile)
	}
	letter, err := g.completer.Complete(ctx, buildCoverLetterPrompt(profile), 300, 0.7)
	if err != nil {
		log.Printf("Cover letter generation failed, using fallback: %v", err)
		return FallbackCoverLetter(profile)
	}
	letter = strings.TrimSpace(letter)
	if letter == "" {
		return FallbackCoverLetter(profile)
	}
	return letter
}

func buildAnalysisPrompt(pageText string, profile models.UserProfile) string {
	return fmt.Sprintf(`Analyze this job application page and provide a strategy:

Page Content:
%s

Candidate: %s, %s, %s

Respond in JSON only:
{
  "needsApplyClick": boolean,
  "hasLoginRequired": boolean,
  "formFields": ["name", "email", "phone", "resume", "coverLetter"],
  "submitButtonText": "Submit" or "Apply",
  "strategy": "brief description"
}`, pageText, profile.Name, profile.Email, profile.Phone)
}

func buildCoverLetterPrompt(profile models.UserProfile) string {
	skills := "Software Development"
	if len(profile.Skills) > 0 {
		skills = strings.Join(profile.Skills, ", ")
	}
	years := profile.YearsOfExperience
	if years <= 0 {
		years = 3
	}
	return fmt.Sprintf(`Write a brief professional cover letter (150 words max) for:
Name: %s
Skills: %s
Experience: %d years

Keep it concise and enthusiastic.`, profile.Name, skills, years)
}

// parsePageAnalysis accepts a bare JSON object, optionally wrapped in a
// markdown code fence or surrounding prose.
func parsePageAnalysis(response string) (PageAnalysis, error) {
	text := strings.TrimSpace(response)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return PageAnalysis{}, fmt.Errorf("no JSON object in response")
	}

	var analysis PageAnalysis
	if err := json.Unmarshal([]byte(text[start:end+1]), &analysis); err != nil {
		return PageAnalysis{}, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return analysis, nil
}

// openAICompleter talks to any OpenAI-compatible endpoint; Groq by default.
type openAICompleter struct {
	client openai.Client
	model  string
}

func newOpenAICompleter(cfg config.LLMConfig) *openAICompleter {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &openAICompleter{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (c *openAICompleter) Complete(ctx context.Context, prompt string, maxTokens int64, temperature float64) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(maxTokens),
		Temperature:         openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
