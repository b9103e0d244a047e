package parquetread

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// ValidateSchema checks that the schema is a flat table: every top-level field
// is a non-repeated leaf column. Nested groups and lists cannot be mapped onto
// flat records.
func ValidateSchema(schema *parquet.Schema) error {
	var nested []string
	for _, field := range schema.Fields() {
		if !field.Leaf() || field.Repeated() {
			nested = append(nested, field.Name())
		}
	}
	if len(nested) > 0 {
		return fmt.Errorf("nested or repeated columns not supported: %s", strings.Join(nested, ", "))
	}
	return nil
}
