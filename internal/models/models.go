package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SOALineStatus represents the lifecycle state of a statement-of-account line.
// The matching engine only ever reads lines; transitions to matched/disputed
// are performed by the downstream reconciliation workflow.
type SOALineStatus string

const (
	SOALinePending  SOALineStatus = "pending"
	SOALineMatched  SOALineStatus = "matched"
	SOALineDisputed SOALineStatus = "disputed"
)

// String returns the string representation of SOALineStatus
func (s SOALineStatus) String() string {
	return string(s)
}

// IsValid checks if the SOA line status is a known value
func (s SOALineStatus) IsValid() bool {
	return s == SOALinePending || s == SOALineMatched || s == SOALineDisputed
}

// InvoiceStatus represents the lifecycle state of a ledger invoice
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceVoid      InvoiceStatus = "void"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// SOALine represents one reported charge from a vendor's statement of account.
// Lines are produced by an ingestion process and consumed read-only by the
// matching engine.
type SOALine struct {
	ID            string          `json:"id" csv:"id"`
	VendorID      string          `json:"vendorId" csv:"vendorId"`
	InvoiceNumber string          `json:"invoiceNumber" csv:"invoiceNumber"`
	Amount        decimal.Decimal `json:"amount" csv:"amount"`
	CurrencyCode  string          `json:"currencyCode" csv:"currencyCode"`
	InvoiceDate   time.Time       `json:"invoiceDate" csv:"invoiceDate"`

	// AllowPartial is an explicit per-line opt-in for partial payment
	// interpretation. A line is never treated as a partial payment unless the
	// caller asserted it.
	AllowPartial bool `json:"allowPartial" csv:"allowPartial"`

	Status SOALineStatus `json:"status,omitempty" csv:"status"`
}

// NewSOALine creates a new SOALine in the pending state
func NewSOALine(id, vendorID, invoiceNumber string, amount decimal.Decimal, currency string, invoiceDate time.Time) *SOALine {
	return &SOALine{
		ID:            id,
		VendorID:      vendorID,
		InvoiceNumber: invoiceNumber,
		Amount:        amount,
		CurrencyCode:  currency,
		InvoiceDate:   invoiceDate,
		Status:        SOALinePending,
	}
}

// Validate performs basic validation on the SOALine
func (l *SOALine) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("SOA line ID cannot be empty")
	}

	if strings.TrimSpace(l.InvoiceNumber) == "" {
		return fmt.Errorf("SOA line invoice number cannot be empty")
	}

	if l.Amount.IsZero() {
		return fmt.Errorf("SOA line amount cannot be zero")
	}

	if strings.TrimSpace(l.CurrencyCode) == "" {
		return fmt.Errorf("SOA line currency code cannot be empty")
	}

	return nil
}

// String returns a string representation of the SOALine
func (l *SOALine) String() string {
	return fmt.Sprintf("SOALine{ID: %s, Vendor: %s, Invoice: %s, Amount: %s %s, Date: %s}",
		l.ID, l.VendorID, l.InvoiceNumber, l.Amount.String(), l.CurrencyCode, l.InvoiceDate.Format("2006-01-02"))
}

// MarshalJSON implements custom JSON marshaling for SOALine
func (l *SOALine) MarshalJSON() ([]byte, error) {
	type Alias SOALine
	return json.Marshal(&struct {
		Amount      string `json:"amount"`
		InvoiceDate string `json:"invoiceDate"`
		*Alias
	}{
		Amount:      l.Amount.String(),
		InvoiceDate: l.InvoiceDate.Format("2006-01-02"),
		Alias:       (*Alias)(l),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for SOALine
func (l *SOALine) UnmarshalJSON(data []byte) error {
	type Alias SOALine
	aux := &struct {
		Amount      string `json:"amount"`
		InvoiceDate string `json:"invoiceDate"`
		*Alias
	}{
		Alias: (*Alias)(l),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	l.Amount, err = decimal.NewFromString(aux.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount format: %w", err)
	}

	l.InvoiceDate, err = ParseDateWithFormats(aux.InvoiceDate)
	if err != nil {
		return fmt.Errorf("invalid invoice date format: %w", err)
	}

	return nil
}

// Invoice represents an internally recorded ledger invoice eligible for
// matching. The invoicing subsystem owns the lifecycle; the engine treats the
// invoice pool as an immutable snapshot for the duration of one matching call.
type Invoice struct {
	ID            string          `json:"id" csv:"id"`
	VendorID      string          `json:"vendorId" csv:"vendorId"`
	InvoiceNumber string          `json:"invoiceNumber" csv:"invoiceNumber"`
	TotalAmount   decimal.Decimal `json:"totalAmount" csv:"totalAmount"`
	CurrencyCode  string          `json:"currencyCode" csv:"currencyCode"`
	InvoiceDate   time.Time       `json:"invoiceDate" csv:"invoiceDate"`
	Status        InvoiceStatus   `json:"status" csv:"status"`
}

// NewInvoice creates a new Invoice instance
func NewInvoice(id, vendorID, invoiceNumber string, total decimal.Decimal, currency string, invoiceDate time.Time, status InvoiceStatus) *Invoice {
	return &Invoice{
		ID:            id,
		VendorID:      vendorID,
		InvoiceNumber: invoiceNumber,
		TotalAmount:   total,
		CurrencyCode:  currency,
		InvoiceDate:   invoiceDate,
		Status:        status,
	}
}

// Validate performs basic validation on the Invoice
func (inv *Invoice) Validate() error {
	if strings.TrimSpace(inv.ID) == "" {
		return fmt.Errorf("invoice ID cannot be empty")
	}

	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		return fmt.Errorf("invoice number cannot be empty")
	}

	if inv.TotalAmount.IsZero() {
		return fmt.Errorf("invoice total amount cannot be zero")
	}

	if strings.TrimSpace(inv.CurrencyCode) == "" {
		return fmt.Errorf("invoice currency code cannot be empty")
	}

	return nil
}

// IsEligible reports whether the invoice may participate in matching.
// Void and cancelled invoices never match.
func (inv *Invoice) IsEligible() bool {
	return inv.Status != InvoiceVoid && inv.Status != InvoiceCancelled
}

// String returns a string representation of the Invoice
func (inv *Invoice) String() string {
	return fmt.Sprintf("Invoice{ID: %s, Vendor: %s, Number: %s, Total: %s %s, Date: %s, Status: %s}",
		inv.ID, inv.VendorID, inv.InvoiceNumber, inv.TotalAmount.String(), inv.CurrencyCode,
		inv.InvoiceDate.Format("2006-01-02"), inv.Status)
}

// MarshalJSON implements custom JSON marshaling for Invoice
func (inv *Invoice) MarshalJSON() ([]byte, error) {
	type Alias Invoice
	return json.Marshal(&struct {
		TotalAmount string `json:"totalAmount"`
		InvoiceDate string `json:"invoiceDate"`
		*Alias
	}{
		TotalAmount: inv.TotalAmount.String(),
		InvoiceDate: inv.InvoiceDate.Format("2006-01-02"),
		Alias:       (*Alias)(inv),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Invoice
func (inv *Invoice) UnmarshalJSON(data []byte) error {
	type Alias Invoice
	aux := &struct {
		TotalAmount string `json:"totalAmount"`
		InvoiceDate string `json:"invoiceDate"`
		*Alias
	}{
		Alias: (*Alias)(inv),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	inv.TotalAmount, err = decimal.NewFromString(aux.TotalAmount)
	if err != nil {
		return fmt.Errorf("invalid total amount format: %w", err)
	}

	inv.InvoiceDate, err = ParseDateWithFormats(aux.InvoiceDate)
	if err != nil {
		return fmt.Errorf("invalid invoice date format: %w", err)
	}

	return nil
}

// MatchedBySystem is the fixed attribution for engine-produced match results
const MatchedBySystem = "system"

// MatchResult is the engine's sole output shape: one classification of a SOA
// line against the vendor's invoice pool. It is a value object, created fresh
// per call and never mutated or persisted by the engine.
type MatchResult struct {
	SOALineID string   `json:"soaLineId"`
	Invoice   *Invoice `json:"invoice,omitempty"`

	// Pass is 0-5; 0 means no match was found.
	Pass         int  `json:"pass"`
	IsExactMatch bool `json:"isExactMatch"`

	Confidence float64 `json:"confidence"`
	MatchScore int     `json:"matchScore"`

	// MatchCriteria describes, per field, whether the winning pass matched it
	// exactly, approximately, or left it unconstrained.
	MatchCriteria map[string]string `json:"matchCriteria,omitempty"`

	// Reason is populated only when Pass == 0.
	Reason string `json:"reason,omitempty"`

	MatchedBy string `json:"matchedBy"`
}

// IsMatched reports whether any pass accepted the line
func (r *MatchResult) IsMatched() bool {
	return r.Pass > 0 && r.Invoice != nil
}

// String returns a string representation of the MatchResult
func (r *MatchResult) String() string {
	if !r.IsMatched() {
		return fmt.Sprintf("MatchResult{Line: %s, Pass: 0, Reason: %s}", r.SOALineID, r.Reason)
	}
	return fmt.Sprintf("MatchResult{Line: %s, Invoice: %s, Pass: %d, Confidence: %.2f, Score: %d}",
		r.SOALineID, r.Invoice.ID, r.Pass, r.Confidence, r.MatchScore)
}

// Utility functions for type conversion and validation

// ParseDecimalFromString parses a decimal value from string with validation
func ParseDecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	// Remove common currency symbols and thousand separators
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// ParseDateWithFormats attempts to parse a date from string using multiple
// common formats
func ParseDateWithFormats(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	formats := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02 15:04:05",
		"01/02/2006",
		"02-01-2006",
		"2006/01/02",
	}

	var lastErr error
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date '%s': %w", s, lastErr)
}

// ParseInvoiceStatus parses and validates an invoice status from string
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	switch InvoiceStatus(strings.ToLower(strings.TrimSpace(s))) {
	case InvoiceDraft:
		return InvoiceDraft, nil
	case InvoiceSent:
		return InvoiceSent, nil
	case InvoiceOverdue:
		return InvoiceOverdue, nil
	case InvoicePaid:
		return InvoicePaid, nil
	case InvoiceVoid:
		return InvoiceVoid, nil
	case InvoiceCancelled:
		return InvoiceCancelled, nil
	default:
		return "", fmt.Errorf("invalid invoice status '%s'", s)
	}
}

// ParseBool parses a CSV-style boolean value
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value '%s'", s)
	}
}

// NormalizeCurrencyCode upper-cases and trims an ISO-4217 currency code
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
