// Package assistant wraps the OpenAI Assistants API behind the
// core.Assistant interface. Retrieval happens through a single function
// tool the model calls with a similarity-search query.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/aakhterov/github-repo-analyzer/internal/core"
)

const instruction = `As a knowledgeable software development assistant, you provide insightful answers
to questions about a concrete GitHub repository. Utilize the given functions effectively
to extract data from the concrete GitHub repository and deliver precise and informative responses.
Important notes: Provide code snippets if code exists in the function output.`

const extractorToolName = "github_repository_data_extractor"

// toolDoc is what one retrieved chunk looks like inside a tool output.
type toolDoc struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float32        `json:"score"`
}

type OpenAIAssistant struct {
	client         *openai.Client
	vector         core.VectorStore
	model          string
	searchK        int
	scoreThreshold float32
	pollInterval   time.Duration
}

func NewOpenAIAssistant(apiKey, model string, vector core.VectorStore, searchK int, scoreThreshold float32) *OpenAIAssistant {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return &OpenAIAssistant{
		client:         openai.NewClient(apiKey),
		vector:         vector,
		model:          model,
		searchK:        searchK,
		scoreThreshold: scoreThreshold,
		pollInterval:   time.Second,
	}
}

// CreateAssistant registers a named assistant carrying the repository
// extractor tool.
func (a *OpenAIAssistant) CreateAssistant(ctx context.Context, name string) (string, error) {
	instructions := instruction
	assistant, err := a.client.CreateAssistant(ctx, openai.AssistantRequest{
		Name:         &name,
		Model:        a.model,
		Instructions: &instructions,
		Tools: []openai.AssistantTool{
			{
				Type: openai.AssistantToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name: extractorToolName,
					Description: "Retrieve data from a specific GitHub repository. " +
						"Build a clear and specific query because it will be used " +
						"for a similarity search on the GitHub repository",
					Parameters: jsonschema.Definition{
						Type: jsonschema.Object,
						Properties: map[string]jsonschema.Definition{
							"query": {
								Type:        jsonschema.String,
								Description: "Query the code you need",
							},
						},
						Required: []string{"query"},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}

	log.Printf("An OpenAI assistant has been created. id=%s", assistant.ID)
	return assistant.ID, nil
}

func (a *OpenAIAssistant) CreateThread(ctx context.Context) (string, error) {
	thread, err := a.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}

	log.Printf("An OpenAI thread has been created. id=%s", thread.ID)
	return thread.ID, nil
}

// MakeConversation posts the user message and drives the run to
// completion, answering extractor tool calls from the repository's
// collection. Returns the id of the assistant's reply message.
func (a *OpenAIAssistant) MakeConversation(ctx context.Context, userMessage, assistantID, threadID, collection string) (string, error) {
	_, err := a.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}

	log.Printf("Assistant %s. Thread %s. Conversation has started.", assistantID, threadID)

	run, err := a.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: assistantID,
	})
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		run, err = a.client.RetrieveRun(ctx, threadID, run.ID)
		if err != nil {
			return "", fmt.Errorf("retrieve run: %w", err)
		}

		switch run.Status {
		case openai.RunStatusQueued, openai.RunStatusInProgress:
			time.Sleep(a.pollInterval)

		case openai.RunStatusRequiresAction:
			if err := a.submitToolOutputs(ctx, threadID, run, collection, assistantID); err != nil {
				return "", err
			}

		case openai.RunStatusCompleted:
			return a.latestMessageID(ctx, threadID)

		default:
			return "", fmt.Errorf("run %s ended with status %s", run.ID, run.Status)
		}
	}
}

// submitToolOutputs answers every extractor call in a requires_action
// run with the matching similarity-search hits.
func (a *OpenAIAssistant) submitToolOutputs(ctx context.Context, threadID string, run openai.Run, collection, assistantID string) error {
	if run.RequiredAction == nil || run.RequiredAction.SubmitToolOutputs == nil {
		return fmt.Errorf("run %s requires action but carries no tool calls", run.ID)
	}

	var outputs []openai.ToolOutput
	for _, call := range run.RequiredAction.SubmitToolOutputs.ToolCalls {
		if call.Function.Name != extractorToolName {
			continue
		}

		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return fmt.Errorf("parse tool arguments: %w", err)
		}

		log.Printf("Assistant %s. Thread %s. Query for the vector store: %s.",
			assistantID, threadID, args.Query)

		docs, err := a.vector.Query(ctx, collection, args.Query, a.searchK, a.scoreThreshold)
		if err != nil {
			return fmt.Errorf("vector query: %w", err)
		}

		log.Printf("Assistant %s. Thread %s. %d doc(s) were found.",
			assistantID, threadID, len(docs))

		rendered := make([]string, 0, len(docs))
		for _, d := range docs {
			buf, err := json.Marshal(toolDoc{Content: d.Content, Metadata: d.Metadata, Score: d.Score})
			if err != nil {
				return fmt.Errorf("marshal tool output: %w", err)
			}
			rendered = append(rendered, string(buf))
		}

		outputs = append(outputs, openai.ToolOutput{
			ToolCallID: call.ID,
			Output:     strings.Join(rendered, "\n======\n"),
		})
	}

	if len(outputs) == 0 {
		log.Printf("Assistant %s. Thread %s. No tool outputs to submit.", assistantID, threadID)
		return fmt.Errorf("run %s requested an unknown tool", run.ID)
	}

	_, err := a.client.SubmitToolOutputs(ctx, threadID, run.ID, openai.SubmitToolOutputsRequest{
		ToolOutputs: outputs,
	})
	if err != nil {
		return fmt.Errorf("submit tool outputs: %w", err)
	}

	log.Printf("Assistant %s. Thread %s. Tool outputs submitted successfully.", assistantID, threadID)
	return nil
}

func (a *OpenAIAssistant) latestMessageID(ctx context.Context, threadID string) (string, error) {
	limit := 1
	order := "desc"
	msgs, err := a.client.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}
	if len(msgs.Messages) == 0 {
		return "", fmt.Errorf("thread %s has no messages after run completion", threadID)
	}
	return msgs.Messages[0].ID, nil
}

// GetConversationResult joins the text parts of one assistant message.
func (a *OpenAIAssistant) GetConversationResult(ctx context.Context, threadID, aiMessageID string) (string, error) {
	msg, err := a.client.RetrieveMessage(ctx, threadID, aiMessageID)
	if err != nil {
		return "", fmt.Errorf("retrieve message: %w", err)
	}

	var parts []string
	for _, content := range msg.Content {
		if content.Type == "text" && content.Text != nil {
			parts = append(parts, content.Text.Value)
		}
	}
	return strings.Join(parts, "\n"), nil
}

var _ core.Assistant = (*OpenAIAssistant)(nil)
