package parse

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"finvoapi/internal/model"
)

// amountTolerance is the slack allowed when cross-checking totals; OCR
// and model rounding make exact equality unrealistic.
const amountTolerance = 0.05

// requiredFields drive the derived confidence estimate when the model
// does not self-report one.
var requiredFields = []string{"merchant_name", "transaction_date", "total_amount", "subtotal", "tax_amount"}

// Parse turns raw model output text into a validated FinancialRecord.
// It is a pure function: identical input always yields an identical
// record. Only structurally unusable output (no JSON at all) fails;
// every field-level problem degrades to a null plus a lower confidence
// score so the caller can still decide what to accept.
func Parse(raw string, opts model.ExtractionOptions, schema map[string]any) (*model.FinancialRecord, error) {
	text, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, model.WrapError(model.KindMalformedModelOutput,
			fmt.Sprintf("model output is not valid JSON: %.200s", raw), err)
	}

	rec := &model.FinancialRecord{Currency: "USD", PaymentMethod: model.PaymentUnknown}
	failures := 0

	if schema != nil {
		var generic any
		_ = json.Unmarshal([]byte(text), &generic)
		if verr := validateAgainstSchema(schema, generic); verr != nil {
			rec.Warnings = append(rec.Warnings, "model output deviated from the requested schema")
			failures++
		}
	}

	if s, ok := coerceString(doc["merchant_name"]); ok {
		rec.MerchantName = &s
	}
	if s, ok := coerceString(doc["transaction_date"]); ok {
		if iso, ok := coerceDate(s); ok {
			rec.TransactionDate = &iso
		} else {
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("unrecognized date format %q", s))
			failures++
		}
	}
	if s, ok := coerceString(doc["transaction_time"]); ok {
		if hm, ok := coerceTime(s); ok {
			rec.TransactionTime = &hm
		} else {
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("unrecognized time format %q", s))
			failures++
		}
	}
	rec.TotalAmount = coerceAmount(doc, "total_amount", rec, &failures)
	rec.TaxAmount = coerceAmount(doc, "tax_amount", rec, &failures)
	rec.Subtotal = coerceAmount(doc, "subtotal", rec, &failures)
	if s, ok := coerceString(doc["invoice_number"]); ok {
		rec.InvoiceNumber = &s
	}
	if s, ok := coerceString(doc["payment_method"]); ok {
		rec.PaymentMethod = model.NormalizePaymentMethod(s)
	}
	if s, ok := coerceString(doc["currency"]); ok && len(s) == 3 {
		rec.Currency = strings.ToUpper(s)
	}

	if opts.ExtractLineItems {
		rec.Items = parseItems(doc["items"], &failures)
	}
	if opts.ExtractFuelInfo {
		rec.FuelInfo = parseFuelInfo(doc["fuel_info"])
	}

	rec.ConfidenceScore = confidence(doc, rec, failures)
	crossCheck(rec)

	return rec, nil
}

// extractJSON strips markdown fences and slices the first balanced-looking
// JSON object out of the model's text.
func extractJSON(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", model.NewError(model.KindMalformedModelOutput,
			fmt.Sprintf("no JSON object found in model output: %.200s", raw))
	}
	return text[start : end+1], nil
}

func coerceAmount(doc map[string]any, key string, rec *model.FinancialRecord, failures *int) *float64 {
	v, present := doc[key]
	if !present || v == nil {
		return nil
	}
	f, ok := coerceNumber(v)
	if !ok {
		rec.Warnings = append(rec.Warnings, fmt.Sprintf("could not read %s value %v", key, v))
		*failures++
		return nil
	}
	return &f
}

func parseItems(v any, failures *int) []model.LineItem {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	items := make([]model.LineItem, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			*failures++
			continue
		}
		name, ok := coerceString(m["item_name"])
		if !ok {
			// Some models still emit "name" despite instructions.
			if name, ok = coerceString(m["name"]); !ok {
				*failures++
				continue
			}
		}
		item := model.LineItem{ItemName: name, Category: model.CategoryOther}
		if f, ok := coerceNumber(m["quantity"]); ok {
			item.Quantity = &f
		}
		if f, ok := coerceNumber(m["unit_price"]); ok {
			item.UnitPrice = &f
		}
		if f, ok := coerceNumber(m["total_price"]); ok {
			item.TotalPrice = &f
		}
		if s, ok := coerceString(m["category"]); ok {
			item.Category = model.NormalizeCategory(s)
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

func parseFuelInfo(v any) *model.FuelInfo {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	fi := &model.FuelInfo{FuelType: model.FuelOther}
	populated := false
	if s, ok := coerceString(m["fuel_type"]); ok {
		fi.FuelType = model.NormalizeFuelType(s)
		populated = true
	}
	if f, ok := coerceNumber(m["gallons_filled"]); ok {
		fi.GallonsFilled = &f
		populated = true
	}
	if f, ok := coerceNumber(m["price_per_gallon"]); ok {
		fi.PricePerGallon = &f
		populated = true
	}
	if !populated {
		return nil
	}
	return fi
}

// confidence prefers the model's self-reported score, clamped to [0,1].
// Without one it falls back to the fraction of required fields the record
// actually carries. Coercion failures drag the score down either way, and
// a record with no readable total is floored low.
func confidence(doc map[string]any, rec *model.FinancialRecord, failures int) float64 {
	var score float64
	if f, ok := coerceNumber(doc["confidence_score"]); ok {
		score = clamp01(f)
	} else {
		populated := 0
		if rec.MerchantName != nil {
			populated++
		}
		if rec.TransactionDate != nil {
			populated++
		}
		if rec.TotalAmount != nil {
			populated++
		}
		if rec.Subtotal != nil {
			populated++
		}
		if rec.TaxAmount != nil {
			populated++
		}
		score = float64(populated) / float64(len(requiredFields))
	}

	score -= 0.1 * float64(failures)
	score = clamp01(score)

	if rec.TotalAmount == nil {
		rec.Warnings = append(rec.Warnings, "total_amount missing from model output")
		if score > 0.3 {
			score = 0.3
		}
	}
	return score
}

// crossCheck applies the soft arithmetic invariants: mismatches are
// reported as warnings, never rejections.
func crossCheck(rec *model.FinancialRecord) {
	if rec.TotalAmount != nil && rec.Subtotal != nil && rec.TaxAmount != nil {
		expected := *rec.Subtotal + *rec.TaxAmount
		if math.Abs(expected-*rec.TotalAmount) > amountTolerance {
			rec.Warnings = append(rec.Warnings,
				fmt.Sprintf("total_amount %.2f differs from subtotal+tax %.2f", *rec.TotalAmount, expected))
		}
	}
	if rec.Subtotal != nil && len(rec.Items) > 0 {
		sum := 0.0
		counted := 0
		for _, item := range rec.Items {
			if item.TotalPrice != nil {
				sum += *item.TotalPrice
				counted++
			}
		}
		if counted == len(rec.Items) && math.Abs(sum-*rec.Subtotal) > amountTolerance {
			rec.Warnings = append(rec.Warnings,
				fmt.Sprintf("line items sum %.2f differs from subtotal %.2f", sum, *rec.Subtotal))
		}
	}
}
