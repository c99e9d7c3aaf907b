package prompt

import "finvoapi/internal/model"

// Shape names the four possible schema variants. The variant is a pure
// function of the extraction option flags; no schema fields are injected
// at runtime beyond picking a shape.
type Shape string

const (
	ShapeBase  Shape = "base"
	ShapeFuel  Shape = "base+fuel"
	ShapeItems Shape = "base+items"
	ShapeFull  Shape = "base+fuel+items"
)

// ShapeFor selects the schema shape for the given options.
func ShapeFor(opts model.ExtractionOptions) Shape {
	switch {
	case opts.ExtractFuelInfo && opts.ExtractLineItems:
		return ShapeFull
	case opts.ExtractFuelInfo:
		return ShapeFuel
	case opts.ExtractLineItems:
		return ShapeItems
	default:
		return ShapeBase
	}
}

// BuildSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is sent to the model as the required output contract and used locally
// to validate the response. fuel_info and items appear only when the
// corresponding option is set, keeping the model's output surface minimal.
func BuildSchema(opts model.ExtractionOptions) map[string]any {
	props := map[string]any{
		"merchant_name":    nullable("string"),
		"transaction_date": nullableWithPattern("string", `^\d{4}-\d{2}-\d{2}$`),
		"transaction_time": nullableWithPattern("string", `^\d{2}:\d{2}$`),
		"total_amount":     nullable("number"),
		"tax_amount":       nullable("number"),
		"subtotal":         nullable("number"),
		"invoice_number":   nullable("string"),
		"payment_method":   nullable("string"),
		"currency":         map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
		"confidence_score": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
	}

	if opts.ExtractLineItems {
		props["items"] = map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"item_name":   map[string]any{"type": "string", "minLength": 1},
					"quantity":    nullable("number"),
					"unit_price":  nullable("number"),
					"total_price": nullable("number"),
					"category":    nullable("string"),
				},
				"required": []string{"item_name"},
			},
		}
	}

	if opts.ExtractFuelInfo {
		props["fuel_info"] = map[string]any{
			"type": []string{"object", "null"},
			"properties": map[string]any{
				"fuel_type":        nullable("string"),
				"gallons_filled":   nullable("number"),
				"price_per_gallon": nullable("number"),
			},
			"additionalProperties": false,
		}
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"total_amount", "currency"},
	}
}

func nullable(typ string) map[string]any {
	return map[string]any{"type": []string{typ, "null"}}
}

func nullableWithPattern(typ, pattern string) map[string]any {
	return map[string]any{
		"anyOf": []any{
			map[string]any{"type": typ, "pattern": pattern},
			map[string]any{"type": "null"},
		},
	}
}
