package prompts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
)

// Loader resolves the prompt template for a pipeline stage: external store
// first, embedded default when the store is unreachable or empty.
type Loader struct {
	store  Store
	logger *slog.Logger
}

// NewLoader creates a template loader. A nil store means defaults only.
func NewLoader(store Store, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	return &Loader{store: store, logger: logger.With("module", "prompts")}
}

// Template returns the template text for a stage. Store failures are logged
// and absorbed; the embedded default is always available.
func (l *Loader) Template(ctx context.Context, stage string) string {
	if l.store != nil {
		tmpl, err := l.store.Get(ctx, stage)
		if err == nil && strings.TrimSpace(tmpl) != "" {
			return tmpl
		}

		if err != nil && !errors.Is(err, ErrTemplateNotFound) {
			l.logger.WarnContext(ctx, "Prompt store unreachable, using embedded default",
				"stage", stage, "error", err)
		}
	}

	return Default(stage)
}

// Render substitutes the stage input into the template's {{.Input}}
// placeholder. Non-string inputs are serialized as indented JSON so the
// model sees the upstream stage's structured output verbatim.
func Render(tmpl string, input any) (string, error) {
	rendered, err := template.New("stage").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	text, ok := input.(string)
	if !ok {
		encoded, err := json.MarshalIndent(input, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode stage input: %w", err)
		}

		text = string(encoded)
	}

	var buf strings.Builder

	err = rendered.Execute(&buf, map[string]string{"Input": text})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}

	return buf.String(), nil
}
