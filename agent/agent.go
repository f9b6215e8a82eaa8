// Package agent implements the interactive assistant that answers questions
// about a computed tax report through a Gemini chat session.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

const systemPrompt = `You are a careful assistant helping a retail investor
understand the yearly tax report computed from their broker transaction
history. The report groups realized trades per tax year into filing buckets:
partial-exemption fund profits, option profit/loss buckets and the option
netting differential, plus cash movement totals. Answer questions about the
report below. You are not a tax advisor; for filing decisions, refer the user
to a professional.`

// Agent runs the interactive question/answer session over a report.
type Agent struct {
	w    io.Writer
	r    *bufio.Reader
	chat *genai.Chat
}

// New creates an agent reading questions from r and writing answers to w.
func New(w io.Writer, r io.Reader) *Agent {
	return &Agent{w: w, r: bufio.NewReader(r)}
}

// Start opens the chat session, seeding it with the report markdown.
func (a *Agent) Start(ctx context.Context, client *genai.Client, report string) error {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt + "\n\n" + report}},
		},
	}
	chat, err := client.Chats.Create(ctx, model, config, nil)
	if err != nil {
		return err
	}
	a.chat = chat
	return nil
}

// Ask sends one question and returns the assistant's text answer.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	resp, err := a.chat.Send(ctx, &genai.Part{Text: question})
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from the assistant")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

const prompt = "assist> "

// Run starts the interactive REPL session. Initial prompts, if any, are
// consumed before reading from the input.
func (a *Agent) Run(ctx context.Context, client *genai.Client, report string, prompts ...string) error {
	if a.chat == nil {
		if err := a.Start(ctx, client, report); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Ask about your tax report. Type 'bye' to exit.")

	for {
		fmt.Fprint(a.w, prompt)
		var input string

		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
		}

		if strings.TrimSpace(input) == "bye" {
			return nil
		}

		answer, err := a.Ask(ctx, strings.TrimSpace(input))
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, answer)
	}
}
