// Package agent wraps the hosted language model that turns natural-language
// questions into answers about a connected database. The model is an opaque
// external collaborator: it may run its own SQL against the data source via
// the run_sql tool while formulating an answer.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"datachat-backend/internal/db"
	"datachat-backend/internal/schema"
)

var (
	// ErrMissingAPIKey is returned when no credential is available for the
	// session.
	ErrMissingAPIKey = errors.New("no API key provided")

	// ErrNotConnected is returned when an agent is requested before a
	// database connection exists.
	ErrNotConnected = errors.New("no database connected")
)

const (
	// DefaultModel matches the hosted model the demo was built against.
	DefaultModel = "gemma2-9b-it"

	// DefaultBaseURL points at Groq's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	maxToolRounds   = 3
	toolResultLimit = 20
)

// Config carries the credential and model settings for one agent.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Agent is a stateful assistant bound to one data source and one credential.
// Construction inspects the schema once; a changed data source requires a new
// agent (see Cache).
type Agent struct {
	client        *openai.Client
	model         string
	database      *db.Database
	schemaContext string
}

// New constructs an agent bound to the given database. Missing credential and
// schema-inspection failures are surfaced as distinct construction errors.
func New(cfg Config, database *db.Database) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if database == nil {
		return nil, ErrNotConnected
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	snapshot, _, err := schema.Inspect(context.Background(), database)
	if err != nil {
		return nil, fmt.Errorf("failed to build agent schema context: %w", err)
	}

	return &Agent{
		client:        &client,
		model:         model,
		database:      database,
		schemaContext: formatSchemaContext(snapshot),
	}, nil
}

// Model returns the model this agent queries.
func (a *Agent) Model() string {
	return a.model
}

// Ask sends the question to the model along with the schema context and
// returns its free-text answer, which may embed a SQL statement. The model
// may call the run_sql tool up to maxToolRounds times; each call is executed
// against the bound database and its result fed back.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(a.systemPrompt()),
		openai.UserMessage(enhanceQuestion(question)),
	}

	tools := []openai.ChatCompletionToolParam{
		{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        "run_sql",
				Description: openai.String("Execute a SQL query against the connected database and return its rows."),
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"query": map[string]interface{}{
							"type":        "string",
							"description": "SQL statement to execute",
						},
					},
					"required": []string{"query"},
				},
			},
		},
	}

	for round := 0; round <= maxToolRounds; round++ {
		params := openai.ChatCompletionNewParams{
			Model:       a.model,
			Messages:    messages,
			Temperature: openai.Float(0),
		}
		if round < maxToolRounds {
			params.Tools = tools
		}

		resp, err := a.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("agent call failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("agent returned no choices")
		}

		choice := resp.Choices[0]
		if len(choice.Message.ToolCalls) == 0 {
			return choice.Message.Content, nil
		}

		messages = append(messages, choice.Message.ToParam())
		for _, call := range choice.Message.ToolCalls {
			result := a.runTool(ctx, call.Function.Name, call.Function.Arguments)
			messages = append(messages, openai.ToolMessage(result, call.ID))
		}
	}

	return "", fmt.Errorf("agent exceeded %d tool rounds without answering", maxToolRounds)
}

// runTool executes one tool call and renders its outcome as text for the
// model. Tool failures are reported back to the model rather than aborting
// the interaction.
func (a *Agent) runTool(ctx context.Context, name, arguments string) string {
	if name != "run_sql" {
		return fmt.Sprintf("unknown tool: %s", name)
	}

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil || strings.TrimSpace(args.Query) == "" {
		return "invalid run_sql arguments: expected {\"query\": \"...\"}"
	}

	log.Printf("agent: running tool query: %s", args.Query)
	result, _, err := a.database.Execute(ctx, args.Query)
	if err != nil {
		return fmt.Sprintf("query failed: %v", err)
	}
	return renderResult(result)
}

func (a *Agent) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a data analyst answering questions about a relational database.\n")
	b.WriteString("Use the run_sql tool to look up data when needed.\n")
	b.WriteString("Always include the final SQL query you used in a ```sql code block.\n\n")
	b.WriteString("Database schema:\n")
	b.WriteString(a.schemaContext)
	return b.String()
}

// enhanceQuestion nudges the model to include its SQL, and swaps table-list
// questions for a cheaper prompt.
func enhanceQuestion(question string) string {
	lower := strings.ToLower(question)
	if strings.Contains(lower, "what tables") || strings.Contains(lower, "tables do we have") {
		return "list all table names and show the SQL query"
	}
	return question + ". Please also show the SQL query you used to get this result."
}

func formatSchemaContext(snapshot *schema.Snapshot) string {
	if snapshot == nil || len(snapshot.Tables) == 0 {
		return "(no tables)"
	}

	var b strings.Builder
	for _, table := range snapshot.Tables {
		fmt.Fprintf(&b, "- %s (%d rows):", table.Name, table.RowCount)
		for i, col := range table.Columns {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, " %s %s", col.Name, col.Type)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderResult formats a result set as a compact text table for the model,
// truncated to toolResultLimit rows.
func renderResult(result *db.ResultSet) string {
	if result == nil || result.RowCount == 0 {
		return "(no rows)"
	}

	var b strings.Builder
	b.WriteString(strings.Join(result.ColumnNames(), " | "))
	b.WriteString("\n")

	shown := result.Rows
	if len(shown) > toolResultLimit {
		shown = shown[:toolResultLimit]
	}
	for _, row := range shown {
		cells := make([]string, len(row.Values))
		for i, v := range row.Values {
			cells[i] = v.Display()
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString("\n")
	}
	if result.RowCount > toolResultLimit {
		fmt.Fprintf(&b, "... (%d rows total)\n", result.RowCount)
	}
	return b.String()
}
