// ABOUTME: AnswerGenerator produces grounded, cited answers from note excerpts
// ABOUTME: Owns the Ask system prompt and the user prompt layout
package core

import (
	"context"
	"strings"

	"github.com/harper/voicenotes/internal/llm"
)

// RefusalPhrase is what the model says when the notes do not cover a question
const RefusalPhrase = "I couldn't find information about this in your notes."

// AnswerTemperature keeps answers grounded and repeatable
const AnswerTemperature float32 = 0.5

const askSystemPrompt = `You are a helpful assistant that answers questions using only the user's own voice notes.

Rules:
- Answer ONLY from the note excerpts provided. Do not use outside knowledge or make anything up.
- Cite sources with their bracketed number at the end of the sentence they support, e.g. "The launch moved to March [2]."
- When a sentence draws on several notes, combine the markers like [1][3].
- Never cite a number that was not provided.
- If the excerpts do not contain the answer, reply exactly: "` + RefusalPhrase + `"
- Use the previous conversation only to understand follow-up questions; facts still come from the excerpts.
- Be concise and professional.`

// BuildUserPrompt lays out conversation, excerpts, and the question. With
// no excerpts it tells the model nothing relevant was found.
func BuildUserPrompt(query string, askCtx AskContext) string {
	var sb strings.Builder

	if askCtx.Conversation != "" {
		sb.WriteString("Previous conversation:\n")
		sb.WriteString(askCtx.Conversation)
		sb.WriteString("\n\n")
	}

	if len(askCtx.Citations) == 0 || askCtx.NoteContext == "" {
		sb.WriteString("No relevant content was found in the user's notes for this question.\n")
		sb.WriteString("Do not cite any sources. Respond with: \"" + RefusalPhrase + "\"\n\n")
	} else {
		sb.WriteString("Here are the relevant excerpts from the user's notes:\n\n")
		sb.WriteString(askCtx.NoteContext)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Question: ")
	sb.WriteString(query)
	return sb.String()
}

// AnswerGenerator calls the chat model with the grounding prompt
type AnswerGenerator struct {
	chat        ChatCompleter
	temperature float32
}

// NewAnswerGenerator creates an AnswerGenerator. temperature <= 0 uses
// AnswerTemperature.
func NewAnswerGenerator(chat ChatCompleter, temperature float32) *AnswerGenerator {
	if temperature <= 0 {
		temperature = AnswerTemperature
	}
	return &AnswerGenerator{chat: chat, temperature: temperature}
}

// Generate returns the model's answer for query over askCtx
func (g *AnswerGenerator) Generate(ctx context.Context, query string, askCtx AskContext) (string, error) {
	answer, err := g.chat.Complete(ctx, llm.CompletionRequest{
		System:      askSystemPrompt,
		User:        BuildUserPrompt(query, askCtx),
		Temperature: g.temperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
