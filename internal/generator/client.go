package generator

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	openai "github.com/sashabaranov/go-openai"
	"github.com/ssat-prep/backend/internal/models"
)

// LLMClient is the interface all provider implementations satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Generator wraps an LLMClient and adds SSAT-specific typed generation
// methods. Every call is bounded by a per-call timeout; expiry surfaces as
// an ordinary error to the caller, never a crash.
type Generator struct {
	llm      LLMClient
	provider string
	model    string
	timeout  time.Duration
}

func NewGenerator() *Generator {
	var llm LLMClient
	provider := "mock"
	model := "mock"

	switch {
	case os.Getenv("MOCK_GENERATOR") == "true":
		llm = NewMockClient()
		log.Println("Generator using mock data")
	case os.Getenv("USE_CLI_GENERATOR") == "true":
		provider = "cli"
		model = "claude-cli"
		cliPath := os.Getenv("CLAUDE_CLI_PATH")
		if cliPath == "" {
			cliPath = "claude"
		}
		llm = NewCLIClient(cliPath)
		log.Println("Generator using claude CLI:", cliPath)
	case os.Getenv("LLM_PROVIDER") == "openai":
		provider = "openai"
		model = os.Getenv("OPENAI_MODEL")
		if model == "" {
			model = openai.GPT4o
		}
		llm = NewOpenAIClient(model)
		log.Println("Generator using OpenAI API:", model)
	default:
		provider = "anthropic"
		model = os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-sonnet-4-20250514"
		}
		llm = NewAPIClient(model)
		log.Println("Generator using Anthropic API:", model)
	}

	timeout := 120 * time.Second
	if v := os.Getenv("LLM_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = time.Duration(n) * time.Second
		}
	}

	return &Generator{llm: llm, provider: provider, model: model, timeout: timeout}
}

func (g *Generator) Provider() string {
	return g.provider
}

func (g *Generator) ModelName() string {
	return g.model
}

// GenerateQuestions produces count standalone questions of the given type.
func (g *Generator) GenerateQuestions(ctx context.Context, ct models.ContentType, difficulty models.Difficulty, topic string, count int) ([]Question, *LLMResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	systemPrompt := QuestionSystemPrompt(ct)
	userPrompt := BuildQuestionUserPrompt(ct, difficulty, topic, count)

	resp, err := g.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, nil, fmt.Errorf("generate %s questions: %w", ct, err)
	}

	questions, err := ParseQuestions(resp.Content)
	if err != nil {
		return nil, resp, fmt.Errorf("parse %s response: %w", ct, err)
	}

	return questions, resp, nil
}

// GeneratePassages produces count reading passages, each with exactly 4
// sub-questions.
func (g *Generator) GeneratePassages(ctx context.Context, difficulty models.Difficulty, topic string, count int) ([]Passage, *LLMResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	systemPrompt := PassageSystemPrompt()
	userPrompt := BuildPassageUserPrompt(difficulty, topic, count)

	resp, err := g.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, nil, fmt.Errorf("generate reading passages: %w", err)
	}

	passages, err := ParsePassages(resp.Content)
	if err != nil {
		return nil, resp, fmt.Errorf("parse reading response: %w", err)
	}

	return passages, resp, nil
}

// GeneratePrompts produces count writing prompts. Difficulty does not apply.
func (g *Generator) GeneratePrompts(ctx context.Context, topic string, count int) ([]Prompt, *LLMResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	systemPrompt := WritingSystemPrompt()
	userPrompt := BuildWritingUserPrompt(topic, count)

	resp, err := g.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, nil, fmt.Errorf("generate writing prompts: %w", err)
	}

	prompts, err := ParsePrompts(resp.Content)
	if err != nil {
		return nil, resp, fmt.Errorf("parse writing response: %w", err)
	}

	return prompts, resp, nil
}

// ── APIClient — Anthropic SDK ──────────────────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(model string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   8192,
		Temperature: param.NewOpt(0.8),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			select {
			case <-time.After(sleepDuration):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── OpenAIClient — Alternate Provider ──────────────────────

type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(os.Getenv("OPENAI_API_KEY")),
		model:  model,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.8,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai API: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      resp.Choices[0].Message.Content,
		PromptTokens: resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

// ── MockClient — Local Development ─────────────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

// Generate inspects the user prompt to decide which payload shape to fake.
func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	var content string
	switch {
	case strings.Contains(userPrompt, "reading passage"):
		content = buildMockPassagesJSON(extractMockCount(userPrompt))
	case strings.Contains(userPrompt, "writing prompt"):
		content = buildMockPromptsJSON(extractMockCount(userPrompt))
	default:
		content = buildMockQuestionsJSON(extractMockCount(userPrompt))
	}
	return &LLMResponse{
		Content:      content,
		PromptTokens: 1500,
		OutputTokens: 3000,
	}, nil
}

// extractMockCount pulls the leading "Generate N ..." count out of a user
// prompt so the mock returns the requested number of items.
func extractMockCount(userPrompt string) int {
	fields := strings.Fields(userPrompt)
	for i, f := range fields {
		if f == "Generate" && i+1 < len(fields) {
			if n, err := strconv.Atoi(fields[i+1]); err == nil && n > 0 {
				return n
			}
		}
	}
	return 1
}

func buildMockQuestionsJSON(count int) string {
	correctAnswers := []string{"A", "B", "C", "D", "E"}
	topics := []string{
		"fractions", "ratios", "geometry", "word relationships",
		"vocabulary in context", "number properties",
	}

	questions := "["
	for i := 0; i < count; i++ {
		correctID := correctAnswers[i%5]
		topic := topics[i%len(topics)]
		if i > 0 {
			questions += ","
		}

		choices := "["
		for j, id := range correctAnswers {
			if j > 0 {
				choices += ","
			}
			choices += fmt.Sprintf(`{"id":"%s","text":"[Mock] Answer option %s concerning %s with enough detail to be plausible."}`, id, id, topic)
		}
		choices += "]"

		questions += fmt.Sprintf(`{"question_text":"[Mock] A practice question about %s that tests the underlying concept in a multiple-choice format.","choices":%s,"correct_answer_id":"%s","explanation":"[Mock] The correct answer is %s because it follows from the %s concept being tested."}`,
			topic, choices, correctID, correctID, topic)
	}
	questions += "]"

	return fmt.Sprintf(`{"questions":%s}`, questions)
}

func buildMockPassagesJSON(count int) string {
	passages := "["
	for i := 0; i < count; i++ {
		if i > 0 {
			passages += ","
		}

		questions := "["
		for q := 0; q < 4; q++ {
			if q > 0 {
				questions += ","
			}
			choices := "["
			for j, id := range []string{"A", "B", "C", "D", "E"} {
				if j > 0 {
					choices += ","
				}
				choices += fmt.Sprintf(`{"id":"%s","text":"[Mock] Reading answer option %s with plausible supporting detail."}`, id, id)
			}
			choices += "]"
			questions += fmt.Sprintf(`{"question_text":"[Mock] Comprehension question %d about the passage main idea or a supporting detail.","choices":%s,"correct_answer_id":"A","explanation":"[Mock] Choice A is supported directly by the passage."}`, q+1, choices)
		}
		questions += "]"

		passages += fmt.Sprintf(`{"title":"[Mock] Passage %d","passage_text":"%s","questions":%s}`,
			i+1, strings.Repeat("[Mock] A short narrative paragraph suitable for middle-school readers. ", 12), questions)
	}
	passages += "]"

	return fmt.Sprintf(`{"passages":%s}`, passages)
}

func buildMockPromptsJSON(count int) string {
	prompts := "["
	for i := 0; i < count; i++ {
		if i > 0 {
			prompts += ","
		}
		prompts += fmt.Sprintf(`{"prompt_text":"[Mock] Writing prompt %d: Describe a moment when you had to make a difficult choice. What did you decide, and what did you learn?"}`, i+1)
	}
	prompts += "]"

	return fmt.Sprintf(`{"prompts":%s}`, prompts)
}
