package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driven"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driving"
	"github.com/halcyon-labs/lore-cli/internal/logger"
)

const (
	offTopicMessage = "I can only help with SEO and search-related questions. " +
		"Try asking about rankings, indexing, content optimisation, or search engine behaviour."

	noEvidenceMessage = "I couldn't find any relevant material for that question, " +
		"so I'd rather not guess. Try rephrasing or narrowing it down."
)

const answerPromptTemplate = `You are an SEO knowledge assistant. Answer the question using only the evidence below.
Cite evidence by its [number]. If the evidence does not cover the question, say so plainly.

Question: %s

Evidence:
%s

Answer:`

// Answerer turns a raw question into a grounded answer: it gates the
// query on topic, routes it, retrieves evidence, and asks the
// completion model to synthesise from that evidence only.
type Answerer struct {
	router    *LexicalRouter
	retriever driving.RetrievalService
	llm       driven.LLMService
	policy    domain.Policy
}

var _ driving.AnswerService = (*Answerer)(nil)

// NewAnswerer creates an answer service.
func NewAnswerer(
	router *LexicalRouter,
	retriever driving.RetrievalService,
	llm driven.LLMService,
	policy domain.Policy,
) *Answerer {
	return &Answerer{
		router:    router,
		retriever: retriever,
		llm:       llm,
		policy:    policy,
	}
}

// Ask answers one question. Off-topic questions are refused without
// touching retrieval or the model; on-topic questions with no
// evidence get an honest "nothing found" rather than a guess.
func (a *Answerer) Ask(ctx context.Context, text string) (*driving.Answer, error) {
	session := uuid.New().String()[:8]
	logger.Debug("ask[%s]: %q", session, text)

	if !a.router.OnTopic(text) {
		logger.Info("ask[%s]: off topic, refusing", session)
		return &driving.Answer{Text: offTopicMessage, OffTopic: true}, nil
	}

	result, err := a.retriever.Retrieve(ctx, text, a.policy.TopK)
	if err != nil {
		return nil, err
	}
	logger.Info("ask[%s]: route=%s, %d evidence", session, result.Route, len(result.Evidence))
	for prov, n := range result.Breakdown() {
		logger.Debug("ask[%s]: %d evidence from %s", session, n, prov)
	}

	if result.Empty() {
		return &driving.Answer{Text: noEvidenceMessage, Result: result}, nil
	}

	prompt := buildPrompt(text, result.Evidence)
	answer, err := a.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   1024,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	return &driving.Answer{Text: answer, Result: result}, nil
}

// buildPrompt renders numbered evidence into the answer prompt.
func buildPrompt(question string, evidence []domain.Evidence) string {
	var b strings.Builder
	for i, ev := range evidence {
		fmt.Fprintf(&b, "[%d] (%s) %s\n%s\n\n", i+1, ev.Provenance, ev.Title, ev.Content)
	}
	return fmt.Sprintf(answerPromptTemplate, question, strings.TrimSpace(b.String()))
}
