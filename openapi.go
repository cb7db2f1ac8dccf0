package choices

import (
	"context"
	"fmt"

	"github.com/goliatone/go-choices/pkg/openapi"
)

// NewOpenAPILoader constructs a loader for OpenAPI documents.
func NewOpenAPILoader(options ...openapi.LoaderOption) *openapi.Loader {
	return openapi.NewLoader(options...)
}

// FieldsFromOpenAPI loads src and returns the choice fields of operationID.
func FieldsFromOpenAPI(ctx context.Context, loader *openapi.Loader, src openapi.Source, operationID string) ([]FieldConfig, error) {
	if loader == nil {
		loader = openapi.NewLoader()
	}
	raw, err := loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	operations, err := openapi.Parse(ctx, raw)
	if err != nil {
		return nil, err
	}
	for _, op := range operations {
		if op.ID == operationID {
			return op.Fields, nil
		}
	}
	return nil, fmt.Errorf("choices: operation %q has no choice fields", operationID)
}
