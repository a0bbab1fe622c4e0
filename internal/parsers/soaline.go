package parsers

import (
	"soa-reconciliation-service/internal/models"
	"soa-reconciliation-service/pkg/errors"
	"soa-reconciliation-service/pkg/logger"
)

// SOALineParserConfig configures CSV parsing for statement-of-account lines
type SOALineParserConfig struct {
	HasHeader bool
	Delimiter rune

	// ColumnAliases maps lower-cased header names onto the canonical column
	// names id, vendorid, invoicenumber, amount, currencycode, invoicedate,
	// allowpartial.
	ColumnAliases map[string]string
}

// DefaultSOALineParserConfig returns the standard configuration with common
// header aliases seen in vendor statement exports
func DefaultSOALineParserConfig() *SOALineParserConfig {
	return &SOALineParserConfig{
		HasHeader: true,
		Delimiter: ',',
		ColumnAliases: map[string]string{
			"line_id":        "id",
			"soa_line_id":    "id",
			"vendor_id":      "vendorid",
			"vendor":         "vendorid",
			"invoice_number": "invoicenumber",
			"invoice_no":     "invoicenumber",
			"doc_number":     "invoicenumber",
			"amt":            "amount",
			"value":          "amount",
			"currency":       "currencycode",
			"currency_code":  "currencycode",
			"invoice_date":   "invoicedate",
			"date":           "invoicedate",
			"allow_partial":  "allowpartial",
			"partial":        "allowpartial",
		},
	}
}

// SOALineParser parses vendor SOA line CSV files
type SOALineParser struct {
	config *SOALineParserConfig
	log    logger.Logger
}

// NewSOALineParser creates a parser with the given configuration
func NewSOALineParser(config *SOALineParserConfig, log logger.Logger) *SOALineParser {
	if config == nil {
		config = DefaultSOALineParserConfig()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SOALineParser{config: config, log: log.WithComponent("soa-parser")}
}

// ParseFile reads all SOA lines from the given CSV file. Rows that fail to
// parse are skipped and reported in the returned stats.
func (p *SOALineParser) ParseFile(path string) ([]*models.SOALine, *ParseStats, error) {
	header, records, err := readAll(path, p.config.Delimiter, p.config.HasHeader)
	if err != nil {
		return nil, nil, err
	}

	if p.config.HasHeader && len(header) == 0 {
		return nil, nil, errors.NewParseError("SOA file has an empty header: "+path, nil)
	}

	idx := buildColumnIndex(header, p.config.ColumnAliases)
	stats := &ParseStats{TotalRows: len(records)}
	lines := make([]*models.SOALine, 0, len(records))

	for i, record := range records {
		rowNum := i + 1
		if p.config.HasHeader {
			rowNum++
		}

		line, rowErr := p.parseRow(idx, record, rowNum)
		if rowErr != nil {
			stats.SkippedRows++
			stats.RowErrors = append(stats.RowErrors, rowErr)
			continue
		}

		stats.ParsedRows++
		lines = append(lines, line)
	}

	logRowErrors(p.log, path, stats)
	p.log.WithFields(logger.Fields{
		"file":    path,
		"parsed":  stats.ParsedRows,
		"skipped": stats.SkippedRows,
	}).Info("parsed SOA lines")

	return lines, stats, nil
}

func (p *SOALineParser) parseRow(idx columnIndex, record []string, rowNum int) (*models.SOALine, *RowError) {
	id, _ := idx.get(record, "id")
	vendorID, _ := idx.get(record, "vendorid")
	invoiceNumber, _ := idx.get(record, "invoicenumber")

	amountStr, ok := idx.get(record, "amount")
	if !ok {
		return nil, &RowError{Line: rowNum, Field: "amount", Message: "amount column missing"}
	}
	amount, err := models.ParseDecimalFromString(amountStr)
	if err != nil {
		return nil, &RowError{Line: rowNum, Field: "amount", Value: amountStr, Message: "invalid amount", Err: err}
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

	line := models.NewSOALine(id, vendorID, invoiceNumber, amount, models.NormalizeCurrencyCode(currency), invoiceDate)

	if allowStr, ok := idx.get(record, "allowpartial"); ok {
		allow, err := models.ParseBool(allowStr)
		if err != nil {
			return nil, &RowError{Line: rowNum, Field: "allowpartial", Value: allowStr, Message: "invalid boolean", Err: err}
		}
		line.AllowPartial = allow
	}

	if err := line.Validate(); err != nil {
		return nil, &RowError{Line: rowNum, Message: "invalid SOA line", Err: err}
	}

	return line, nil
}
