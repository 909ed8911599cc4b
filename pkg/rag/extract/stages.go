package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"product-chat-be/internal/entity"
)

var errEmptyOutput = errors.New("empty model output")

// IntentStage turns the user's story into a free-text description of who they
// are and what they need. The fallback is the prompt itself, so retrieval
// still has a query.
var IntentStage = Stage[string]{
	Name:            "INTENT",
	DefaultTemplate: IntentPromptTemplate,
	Parse: func(raw string) (string, error) {
		text := strings.TrimSpace(raw)
		if text == "" {
			return "", errEmptyOutput
		}
		return text, nil
	},
	Fallback: func(input string) string { return input },
}

// AttributesStage extracts gender and price bounds. Values are sanitized
// before they leave the stage.
var AttributesStage = Stage[*entity.CustomerAttributes]{
	Name:            "ATTRIBUTES",
	DefaultTemplate: AttributesPromptTemplate,
	Parse: func(raw string) (*entity.CustomerAttributes, error) {
		var attrs *entity.CustomerAttributes
		if err := decodeJSON(extractJSON(raw), &attrs); err != nil {
			return nil, err
		}
		if attrs == nil {
			return nil, fmt.Errorf("attributes: null object")
		}
		attrs.Sanitize()
		return attrs, nil
	},
	Fallback: func(string) *entity.CustomerAttributes { return nil },
}

var ExtraQuestionsStage = Stage[[]string]{
	Name:            "EXTRA_QUESTIONS",
	DefaultTemplate: ExtraQuestionsPromptTemplate,
	Parse: func(raw string) ([]string, error) {
		var questions []string
		if err := decodeJSON(extractJSONArray(raw), &questions); err != nil {
			return nil, err
		}
		if questions == nil {
			return nil, fmt.Errorf("extra questions: null array")
		}
		return questions, nil
	},
	Fallback: func(string) []string { return nil },
}

// CategoriesStage maps raw category paths to human-readable group names.
var CategoriesStage = Stage[map[string]string]{
	Name:            "CATEGORIES",
	DefaultTemplate: CategoriesPromptTemplate,
	SystemMessage:   CategorySystemMessage,
	Fill: func(template, _ string, input string) string {
		return strings.ReplaceAll(template, CategoriesListMarker, input)
	},
	Parse: func(raw string) (map[string]string, error) {
		var mapping map[string]string
		if err := decodeJSON(extractJSON(raw), &mapping); err != nil {
			return nil, err
		}
		if mapping == nil {
			return nil, fmt.Errorf("categories: null object")
		}
		return mapping, nil
	},
	Fallback: func(string) map[string]string { return nil },
}

func (r *Runner) Intent(ctx context.Context, sessionId, template, history, prompt string) Result[string] {
	return Run(ctx, r, IntentStage, sessionId, template, history, prompt)
}

func (r *Runner) Attributes(ctx context.Context, sessionId, template, history, prompt string) Result[*entity.CustomerAttributes] {
	return Run(ctx, r, AttributesStage, sessionId, template, history, prompt)
}

func (r *Runner) ExtraQuestions(ctx context.Context, sessionId, template, history, prompt string) Result[[]string] {
	return Run(ctx, r, ExtraQuestionsStage, sessionId, template, history, prompt)
}

// NormalizeCategories asks the model to group the products' raw categories
// and returns copies of products with Category set. The model is not called
// when no product has a category path.
func (r *Runner) NormalizeCategories(ctx context.Context, sessionId string, products []entity.Product) ([]entity.Product, Result[map[string]string]) {
	list := CategoriesList(products)
	if list == "" {
		return AssignCategories(products, nil), Result[map[string]string]{Status: StatusOK}
	}

	res := Run(ctx, r, CategoriesStage, sessionId, "", "", list)
	return AssignCategories(products, res.Value), res
}

// CategoriesList joins the non-blank raw category paths, one per line,
// keeping duplicates.
func CategoriesList(products []entity.Product) string {
	paths := make([]string, 0, len(products))
	for _, p := range products {
		if strings.TrimSpace(p.Categories) != "" {
			paths = append(paths, p.Categories)
		}
	}
	return strings.Join(paths, "\n")
}

// AssignCategories resolves each product's group: a direct match on the full
// path first, then the first pipe-separated segment that matches, then
// DefaultProductCategory.
func AssignCategories(products []entity.Product, mapping map[string]string) []entity.Product {
	out := make([]entity.Product, len(products))
	for i, p := range products {
		p.Category = resolveCategory(p.Categories, mapping)
		out[i] = p
	}
	return out
}

func resolveCategory(path string, mapping map[string]string) string {
	if len(mapping) == 0 || strings.TrimSpace(path) == "" {
		return entity.DefaultProductCategory
	}
	if category, ok := mapping[path]; ok {
		return category
	}
	for _, segment := range strings.Split(path, "|") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if category, ok := mapping[segment]; ok {
			return category
		}
	}
	return entity.DefaultProductCategory
}

func decodeJSON(raw string, dst interface{}) error {
	if raw == "" {
		return errEmptyOutput
	}
	return json.Unmarshal([]byte(raw), dst)
}

// extractJSON cuts the outermost {...} out of a reply that may carry prose or
// code fences around it.
func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}

func extractJSONArray(response string) string {
	startIdx := strings.Index(response, "[")
	endIdx := strings.LastIndex(response, "]")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
