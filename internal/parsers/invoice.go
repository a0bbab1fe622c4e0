package parsers

import (
	"soa-reconciliation-service/internal/models"
	"soa-reconciliation-service/pkg/errors"
	"soa-reconciliation-service/pkg/logger"
)

// InvoiceParserConfig configures CSV parsing for ledger invoices
type InvoiceParserConfig struct {
	HasHeader bool
	Delimiter rune

	// ColumnAliases maps lower-cased header names onto the canonical column
	// names id, vendorid, invoicenumber, totalamount, currencycode,
	// invoicedate, status.
	ColumnAliases map[string]string
}

// DefaultInvoiceParserConfig returns the standard configuration with common
// header aliases seen in ledger exports
func DefaultInvoiceParserConfig() *InvoiceParserConfig {
	return &InvoiceParserConfig{
		HasHeader: true,
		Delimiter: ',',
		ColumnAliases: map[string]string{
			"invoice_id":     "id",
			"vendor_id":      "vendorid",
			"vendor":         "vendorid",
			"invoice_number": "invoicenumber",
			"invoice_no":     "invoicenumber",
			"number":         "invoicenumber",
			"total":          "totalamount",
			"total_amount":   "totalamount",
			"amount":         "totalamount",
			"currency":       "currencycode",
			"currency_code":  "currencycode",
			"invoice_date":   "invoicedate",
			"date":           "invoicedate",
			"state":          "status",
		},
	}
}

// InvoiceParser parses ledger invoice CSV files
type InvoiceParser struct {
	config *InvoiceParserConfig
	log    logger.Logger
}

// NewInvoiceParser creates a parser with the given configuration
func NewInvoiceParser(config *InvoiceParserConfig, log logger.Logger) *InvoiceParser {
	if config == nil {
		config = DefaultInvoiceParserConfig()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &InvoiceParser{config: config, log: log.WithComponent("invoice-parser")}
}

// ParseFile reads all invoices from the given CSV file. Rows that fail to
// parse are skipped and reported in the returned stats.
func (p *InvoiceParser) ParseFile(path string) ([]*models.Invoice, *ParseStats, error) {
	header, records, err := readAll(path, p.config.Delimiter, p.config.HasHeader)
	if err != nil {
		return nil, nil, err
	}

	if p.config.HasHeader && len(header) == 0 {
		return nil, nil, errors.NewParseError("invoice file has an empty header: "+path, nil)
	}

	idx := buildColumnIndex(header, p.config.ColumnAliases)
	stats := &ParseStats{TotalRows: len(records)}
	invoices := make([]*models.Invoice, 0, len(records))

	for i, record := range records {
		rowNum := i + 1
		if p.config.HasHeader {
			rowNum++
		}

		invoice, rowErr := p.parseRow(idx, record, rowNum)
		if rowErr != nil {
			stats.SkippedRows++
			stats.RowErrors = append(stats.RowErrors, rowErr)
			continue
		}

		stats.ParsedRows++
		invoices = append(invoices, invoice)
	}

	logRowErrors(p.log, path, stats)
	p.log.WithFields(logger.Fields{
		"file":    path,
		"parsed":  stats.ParsedRows,
		"skipped": stats.SkippedRows,
	}).Info("parsed invoices")

	return invoices, stats, nil
}

func (p *InvoiceParser) parseRow(idx columnIndex, record []string, rowNum int) (*models.Invoice, *RowError) {
	id, _ := idx.get(record, "id")
	vendorID, _ := idx.get(record, "vendorid")
	invoiceNumber, _ := idx.get(record, "invoicenumber")

	amountStr, ok := idx.get(record, "totalamount")
	if !ok {
		return nil, &RowError{Line: rowNum, Field: "totalamount", Message: "total amount column missing"}
	}
	total, err := models.ParseDecimalFromString(amountStr)
	if err != nil {
		return nil, &RowError{Line: rowNum, Field: "totalamount", Value: amountStr, Message: "invalid amount", Err: err}
	}

	currency, _ := idx.get(record, "currencycode")

	dateStr, ok := idx.get(record, "invoicedate")
	if !ok {
		return nil, &RowError{Line: rowNum, Field: "invoicedate", Message: "invoice date column missing"}
	}
	invoiceDate, err := models.ParseDateWithFormats(dateStr)
	if err != nil {
		return nil, &RowError{Line: rowNum, Field: "invoicedate", Value: dateStr, Message: "invalid date", Err: err}
	}

	status := models.InvoiceSent
	if statusStr, ok := idx.get(record, "status"); ok && statusStr != "" {
		status, err = models.ParseInvoiceStatus(statusStr)
		if err != nil {
			return nil, &RowError{Line: rowNum, Field: "status", Value: statusStr, Message: "invalid status", Err: err}
		}
	}

	invoice := models.NewInvoice(id, vendorID, invoiceNumber, total, models.NormalizeCurrencyCode(currency), invoiceDate, status)

	if err := invoice.Validate(); err != nil {
		return nil, &RowError{Line: rowNum, Message: "invalid invoice", Err: err}
	}

	return invoice, nil
}
