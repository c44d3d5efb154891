package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/textpulse/internal/cache"
)

const (
	defaultLLMTimeout  = 30 * time.Second
	defaultLLMMaxChars = 8000
)

// ChatClient mirrors the subset we need from the OpenAI client for testability.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LLMScorer asks an OpenAI-compatible chat model for a polarity score. Any
// failure (transport, empty reply, unparseable number) falls back to
// Fallback, so Score always returns a value. Replies are cached by model and
// prompt so repeated runs over the same text agree.
type LLMScorer struct {
	Client   ChatClient
	Model    string
	Cache    *cache.LLMCache
	Fallback Scorer
	// Timeout bounds one model call. Zero means 30s.
	Timeout time.Duration
	// MaxChars caps the number of runes sent to the model. Zero means 8000.
	MaxChars int
	// SystemPrompt, when non-empty, overrides the default system message.
	SystemPrompt string
}

type polarityReply struct {
	Polarity *float64 `json:"polarity"`
}

var errNoPolarity = errors.New("no polarity in model reply")

func (s *LLMScorer) Score(text string) float64 {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	score, err := s.ScoreContext(ctx, text)
	if err != nil {
		log.Warn().Err(err).Str("model", s.Model).Msg("llm polarity failed; using fallback scorer")
		return s.fallback().Score(text)
	}
	return score
}

// ScoreContext performs the model call and reports failures instead of
// falling back.
func (s *LLMScorer) ScoreContext(ctx context.Context, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	if s.Client == nil || strings.TrimSpace(s.Model) == "" {
		return 0, errors.New("llm scorer not configured")
	}
	sys := buildSystemMessage()
	if strings.TrimSpace(s.SystemPrompt) != "" {
		sys = s.SystemPrompt
	}
	user := buildUserMessage(text, s.maxChars())
	key := cache.KeyFrom(s.Model, sys+"\n\n"+user)
	if s.Cache != nil {
		if raw, ok, _ := s.Cache.Get(ctx, key); ok {
			if score, err := parsePolarity(string(raw)); err == nil {
				return score, nil
			}
		}
	}
	req := openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sys},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.0,
		N:           1,
	}
	resp, err := s.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, errNoPolarity
	}
	score, err := parsePolarity(resp.Choices[0].Message.Content)
	if err != nil {
		return 0, err
	}
	if s.Cache != nil {
		if b, err := json.Marshal(polarityReply{Polarity: &score}); err == nil {
			_ = s.Cache.Save(ctx, key, b)
		}
	}
	return score, nil
}

func (s *LLMScorer) fallback() Scorer {
	if s.Fallback != nil {
		return s.Fallback
	}
	return NewLexiconScorer(nil)
}

func (s *LLMScorer) maxChars() int {
	if s.MaxChars > 0 {
		return s.MaxChars
	}
	return defaultLLMMaxChars
}

func buildSystemMessage() string {
	return "You are a sentiment analyzer. Respond with strict JSON only: {\"polarity\": number}. The polarity is a number between -1.0 (very negative) and 1.0 (very positive); 0.0 means neutral or no opinion."
}

func buildUserMessage(text string, maxChars int) string {
	r := []rune(text)
	if len(r) > maxChars {
		text = string(r[:maxChars])
	}
	var sb strings.Builder
	sb.WriteString("Rate the overall sentiment polarity of the following text.\n\nText:\n\n")
	sb.WriteString(text)
	return sb.String()
}

var numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// parsePolarity accepts the JSON reply, optionally wrapped in a code fence,
// or text containing exactly one number, and clamps the value to [-1, 1].
func parsePolarity(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	var reply polarityReply
	if err := json.Unmarshal([]byte(s), &reply); err == nil && reply.Polarity != nil {
		return checked(*reply.Polarity)
	}
	// free text is only trusted when it holds a single number
	nums := numberRe.FindAllString(s, -1)
	if len(nums) != 1 {
		return 0, errNoPolarity
	}
	m := nums[0]
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, fmt.Errorf("parse polarity %q: %w", m, err)
	}
	return checked(v)
}

func checked(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNoPolarity
	}
	return clamp(v), nil
}
