package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"erp-backend/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
	"github.com/shopspring/decimal"
)

// AgentService turns a natural-language expense description into a
// structured draft. The draft is a proposal only; persisting it is a
// separate, explicit confirmation step.
type AgentService interface {
	InterpretExpense(ctx context.Context, naturalLanguage string) (*core.ExpenseDraft, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

func (a *Agent) InterpretExpense(ctx context.Context, naturalLanguage string) (*core.ExpenseDraft, error) {
	prompt := fmt.Sprintf(`You are a bookkeeping assistant for a manufacturing business.
Your goal is to interpret an operating expense described in natural language and extract its fields.
Rules:
1. The amount must be an exact positive decimal string (e.g. "1250.00").
2. Pick a short, reusable category such as "Utilities", "Transport", "Maintenance", "Office".
3. Dates are YYYY-MM-DD; today is %s. Resolve relative dates ("yesterday", "last Friday") against it.
4. Provide a confidence score (0.0-1.0).
5. Explain your reasoning.

Expense: %s`, time.Now().Format("2006-01-02"), naturalLanguage)

	// Dynamically generate the JSON schema from the Go struct
	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "expense_draft",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A structured draft of an operating expense"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var draft core.ExpenseDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if err := validateDraft(&draft); err != nil {
		return nil, fmt.Errorf("expense draft validation failed: %w", err)
	}
	return &draft, nil
}

func validateDraft(d *core.ExpenseDraft) error {
	if d.Category == "" {
		return fmt.Errorf("missing category")
	}
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return fmt.Errorf("amount %q is not a decimal: %w", d.Amount, err)
	}
	if amount.Sign() <= 0 {
		return fmt.Errorf("amount must be positive, got %s", d.Amount)
	}
	if _, err := time.Parse("2006-01-02", d.ExpenseDate); err != nil {
		return fmt.Errorf("expense date %q is not YYYY-MM-DD: %w", d.ExpenseDate, err)
	}
	return nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v core.ExpenseDraft
	return reflector.Reflect(v)
}
