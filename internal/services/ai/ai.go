// Package ai генерирует аффирмации и подсказки для дневника и определяет
// тональность записей. Без ключа OpenAI или при ошибке API используются
// заготовленные тексты.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/models"
	"github.com/magabrotheeeer/mindwell/internal/openai"
)

// Completer клиент языковой модели.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, messages []openai.Message, maxTokens int, temperature float64) (string, error)
}

var (
	offlineAffirmations = []string{
		"You are stronger than you think and capable of amazing things.",
		"Every small step forward is progress worth celebrating.",
		"You have the power to create positive change in your life.",
		"Your mental health journey is unique and valid.",
		"You deserve peace, happiness, and all good things.",
		"Today is a new opportunity to practice self-compassion.",
		"You are worthy of love and kindness, especially from yourself.",
	}
	errorAffirmations = []string{
		"You are resilient and capable of overcoming challenges.",
		"Each moment is a chance to choose peace and positivity.",
		"Your journey matters, and you're doing better than you know.",
	}
	offlinePrompts = []string{
		"What are three things you're grateful for today, and how did they make you feel?",
		"Describe a moment today when you felt most like yourself. What was happening?",
		"What challenge are you facing right now, and what strengths can you use to address it?",
		"Write about a person who made you smile recently. What did they do?",
		"If you could give advice to your past self from a week ago, what would it be?",
		"What emotion have you been carrying today? Where do you feel it in your body?",
		"Describe your ideal peaceful moment. What would it look, sound, and feel like?",
		"What's one small thing you did today that you're proud of?",
		"How did you practice self-care today, or how could you tomorrow?",
		"What pattern in your thoughts or behavior have you noticed lately?",
	}
	errorPrompts = []string{
		"Reflect on one thing that brought you peace today, no matter how small.",
		"What would you like to let go of, and what would you like to welcome into your life?",
		"Describe how you've grown in the past month, even in small ways.",
	}
)

var sentiments = map[string]bool{
	models.SentimentPositive: true,
	models.SentimentNegative: true,
	models.SentimentNeutral:  true,
	models.SentimentMixed:    true,
}

// Service AI-помощник.
type Service struct {
	llm  Completer
	log  *slog.Logger
	pick func(n int) int
}

// New создаёт Service.
func New(llm Completer, log *slog.Logger) *Service {
	return &Service{llm: llm, log: log, pick: rand.IntN}
}

// Enabled сообщает, подключена ли языковая модель.
func (s *Service) Enabled() bool {
	return s.llm != nil && s.llm.Configured()
}

func (s *Service) choose(texts []string) string {
	return texts[s.pick(len(texts))]
}

// Affirmation возвращает аффирмацию на день.
func (s *Service) Affirmation(ctx context.Context) string {
	const op = "ai.Affirmation"

	if !s.Enabled() {
		return s.choose(offlineAffirmations)
	}
	text, err := s.llm.Complete(ctx, []openai.Message{
		{Role: "system", Content: "You are a supportive wellness coach. Generate a positive, encouraging affirmation for mental wellness. Keep it under 50 words and make it personal and uplifting."},
		{Role: "user", Content: "Generate a daily affirmation for my mental wellness journey."},
	}, 100, 0.7)
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Warn("affirmation generation failed, using fallback", slog.String("op", op), sl.Err(err))
		return s.choose(errorAffirmations)
	}
	return strings.TrimSpace(text)
}

// JournalPrompt возвращает подсказку для записи в дневнике. mood от 1 до 5
// добавляется в контекст запроса, 0 означает, что настроение неизвестно.
func (s *Service) JournalPrompt(ctx context.Context, mood int) string {
	const op = "ai.JournalPrompt"

	if !s.Enabled() {
		return s.choose(offlinePrompts)
	}
	var moodContext string
	if mood >= models.MoodMin && mood <= models.MoodMax {
		moodContext = fmt.Sprintf(" The user's current mood is %d/5.", mood)
	}
	text, err := s.llm.Complete(ctx, []openai.Message{
		{Role: "system", Content: "You are a therapeutic writing coach. Generate a thoughtful journal prompt for mental wellness and self-reflection." + moodContext + " Make it encouraging and introspective, under 100 words."},
		{Role: "user", Content: "Give me a journal writing prompt for today."},
	}, 150, 0.7)
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Warn("journal prompt generation failed, using fallback", slog.String("op", op), sl.Err(err))
		return s.choose(errorPrompts)
	}
	return strings.TrimSpace(text)
}

// Sentiment определяет тональность текста. Всё, что не удалось распознать,
// считается нейтральным.
func (s *Service) Sentiment(ctx context.Context, text string) string {
	const op = "ai.Sentiment"

	if !s.Enabled() {
		return models.SentimentNeutral
	}
	answer, err := s.llm.Complete(ctx, []openai.Message{
		{Role: "system", Content: "You are a sentiment analysis expert. Analyze the emotional tone of the given text and respond with only one word: positive, negative, neutral, or mixed."},
		{Role: "user", Content: text},
	}, 10, 0.1)
	if err != nil {
		s.log.Warn("sentiment analysis failed", slog.String("op", op), sl.Err(err))
		return models.SentimentNeutral
	}
	answer = strings.Trim(strings.ToLower(strings.TrimSpace(answer)), ".!")
	if !sentiments[answer] {
		return models.SentimentNeutral
	}
	return answer
}
