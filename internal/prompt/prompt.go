package prompt

import (
	"encoding/json"
	"strings"

	"finvoapi/internal/model"
)

// BuildInstructions composes the extraction instruction text for the
// given options. Pure function: same options always produce the same text.
func BuildInstructions(opts model.ExtractionOptions) string {
	parts := []string{
		"You are an expert financial document analyzer. Read all text in the attached receipt or invoice pages and extract the financial data.",
		"Return ONLY a single JSON object that matches the provided JSON Schema. No markdown code blocks, no text before or after the JSON.",
		"Numeric fields must be plain numbers (e.g. 42.25), never strings with currency symbols.",
		"Dates must be ISO 8601 (YYYY-MM-DD); times must be 24-hour HH:MM.",
		"Use null for any field you cannot read from the document. Never invent values.",
		"currency is the 3-letter ISO 4217 code; infer it from symbols or merchant locale, defaulting to USD.",
		"payment_method is one of: cash, credit_card, debit_card, mobile_payment, bank_transfer, check, interac, other, unknown.",
		"Include confidence_score between 0.0 and 1.0 reflecting how reliably you could read the document.",
	}

	if opts.ExtractLineItems {
		parts = append(parts,
			"Extract every line item into the items array. Each item uses the field item_name (not name), with quantity, unit_price, total_price as numbers or null.",
			"Item category is one of: food, fuel, utilities, transportation, groceries, entertainment, healthcare, shopping, services, other.")
	}
	if opts.ExtractFuelInfo {
		parts = append(parts,
			"If this is a fuel receipt, fill fuel_info with fuel_type (gasoline, diesel, electric, hybrid, other), gallons_filled, and price_per_gallon; otherwise set fuel_info to null.")
	}

	return strings.Join(parts, " ")
}

// SchemaJSON renders the schema map as indented JSON for inclusion in
// the model request.
func SchemaJSON(schema map[string]any) string {
	b, _ := json.MarshalIndent(schema, "", "  ")
	return string(b)
}
