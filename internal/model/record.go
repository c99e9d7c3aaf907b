package model

import "strings"

// PaymentMethod enumerates recognized payment instruments.
type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentCreditCard    PaymentMethod = "credit_card"
	PaymentDebitCard     PaymentMethod = "debit_card"
	PaymentMobilePayment PaymentMethod = "mobile_payment"
	PaymentBankTransfer  PaymentMethod = "bank_transfer"
	PaymentCheck         PaymentMethod = "check"
	PaymentInterac       PaymentMethod = "interac"
	PaymentOther         PaymentMethod = "other"
	PaymentUnknown       PaymentMethod = "unknown"
)

// ExpenseCategory enumerates line-item categories.
type ExpenseCategory string

const (
	CategoryFood           ExpenseCategory = "food"
	CategoryFuel           ExpenseCategory = "fuel"
	CategoryUtilities      ExpenseCategory = "utilities"
	CategoryTransportation ExpenseCategory = "transportation"
	CategoryGroceries      ExpenseCategory = "groceries"
	CategoryEntertainment  ExpenseCategory = "entertainment"
	CategoryHealthcare     ExpenseCategory = "healthcare"
	CategoryShopping       ExpenseCategory = "shopping"
	CategoryServices       ExpenseCategory = "services"
	CategoryOther          ExpenseCategory = "other"
)

// FuelType enumerates fuel kinds seen on fuel receipts.
type FuelType string

const (
	FuelGasoline FuelType = "gasoline"
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
	FuelOther    FuelType = "other"
)

// LineItem is a single purchased item or service on the document.
// Nullable numeric fields stay nil when the model could not read them.
type LineItem struct {
	ItemName   string          `json:"item_name"`
	Quantity   *float64        `json:"quantity"`
	UnitPrice  *float64        `json:"unit_price"`
	TotalPrice *float64        `json:"total_price"`
	Category   ExpenseCategory `json:"category"`
}

// FuelInfo carries fuel-specific transaction details.
type FuelInfo struct {
	FuelType       FuelType `json:"fuel_type"`
	GallonsFilled  *float64 `json:"gallons_filled"`
	PricePerGallon *float64 `json:"price_per_gallon"`
}

// FinancialRecord is the canonical structured result of an extraction.
// Every field the model could not confidently read is an explicit null,
// never a fabricated default.
type FinancialRecord struct {
	MerchantName    *string       `json:"merchant_name"`
	TransactionDate *string       `json:"transaction_date"` // YYYY-MM-DD
	TransactionTime *string       `json:"transaction_time"` // HH:MM
	TotalAmount     *float64      `json:"total_amount"`
	TaxAmount       *float64      `json:"tax_amount"`
	Subtotal        *float64      `json:"subtotal"`
	Items           []LineItem    `json:"items,omitempty"`
	FuelInfo        *FuelInfo     `json:"fuel_info,omitempty"`
	InvoiceNumber   *string       `json:"invoice_number"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Currency        string        `json:"currency"`
	ConfidenceScore float64       `json:"confidence_score"`
	Warnings        []string      `json:"warnings,omitempty"`
}

// paymentSynonyms maps common model outputs onto the enum.
var paymentSynonyms = map[string]PaymentMethod{
	"visa":             PaymentCreditCard,
	"mastercard":       PaymentCreditCard,
	"amex":             PaymentCreditCard,
	"american express": PaymentCreditCard,
	"discover":         PaymentCreditCard,
	"credit":           PaymentCreditCard,
	"debit":            PaymentDebitCard,
	"interac":          PaymentInterac,
	"e-transfer":       PaymentBankTransfer,
	"etransfer":        PaymentBankTransfer,
	"wire":             PaymentBankTransfer,
	"apple pay":        PaymentMobilePayment,
	"google pay":       PaymentMobilePayment,
	"paypal":           PaymentMobilePayment,
	"venmo":            PaymentMobilePayment,
	"cheque":           PaymentCheck,
}

// NormalizePaymentMethod maps free-form payment text to an enum member.
// Empty input yields "unknown"; unrecognized input yields "other".
func NormalizePaymentMethod(v string) PaymentMethod {
	s := strings.ToLower(strings.TrimSpace(v))
	if s == "" || s == "null" || s == "unknown" {
		return PaymentUnknown
	}
	if m, ok := paymentSynonyms[s]; ok {
		return m
	}
	for _, m := range []PaymentMethod{
		PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentMobilePayment,
		PaymentBankTransfer, PaymentCheck, PaymentInterac, PaymentOther,
	} {
		if s == string(m) {
			return m
		}
	}
	return PaymentOther
}

var categorySynonyms = map[string]ExpenseCategory{
	"beverage":        CategoryFood,
	"beverages":       CategoryFood,
	"drinks":          CategoryFood,
	"restaurant":      CategoryFood,
	"dining":          CategoryFood,
	"takeout":         CategoryFood,
	"fast food":       CategoryFood,
	"clothing":        CategoryShopping,
	"clothes":         CategoryShopping,
	"apparel":         CategoryShopping,
	"electronics":     CategoryShopping,
	"stationery":      CategoryShopping,
	"office supplies": CategoryShopping,
	"supplies":        CategoryShopping,
	"household":       CategoryShopping,
	"furniture":       CategoryShopping,
	"personal care":   CategoryHealthcare,
	"hygiene":         CategoryHealthcare,
	"pharmacy":        CategoryHealthcare,
	"gas":             CategoryFuel,
	"gasoline":        CategoryFuel,
	"petrol":          CategoryFuel,
	"parking":         CategoryTransportation,
	"transit":         CategoryTransportation,
}

// NormalizeCategory maps free-form category text to an enum member,
// falling back to "other" for anything unrecognized.
func NormalizeCategory(v string) ExpenseCategory {
	s := strings.ToLower(strings.TrimSpace(v))
	if s == "" || s == "null" {
		return CategoryOther
	}
	if c, ok := categorySynonyms[s]; ok {
		return c
	}
	for _, c := range []ExpenseCategory{
		CategoryFood, CategoryFuel, CategoryUtilities, CategoryTransportation,
		CategoryGroceries, CategoryEntertainment, CategoryHealthcare,
		CategoryShopping, CategoryServices, CategoryOther,
	} {
		if s == string(c) {
			return c
		}
	}
	return CategoryOther
}

var fuelSynonyms = map[string]FuelType{
	"gas":      FuelGasoline,
	"petrol":   FuelGasoline,
	"regular":  FuelGasoline,
	"premium":  FuelGasoline,
	"unleaded": FuelGasoline,
	"ev":       FuelElectric,
}

// NormalizeFuelType maps free-form fuel text to an enum member.
func NormalizeFuelType(v string) FuelType {
	s := strings.ToLower(strings.TrimSpace(v))
	if s == "" || s == "null" {
		return FuelOther
	}
	if f, ok := fuelSynonyms[s]; ok {
		return f
	}
	for _, f := range []FuelType{FuelGasoline, FuelDiesel, FuelElectric, FuelHybrid, FuelOther} {
		if s == string(f) {
			return f
		}
	}
	return FuelOther
}
