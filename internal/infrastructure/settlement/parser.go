// Package settlement parses the monthly settlement CSV file received
// from the payroll authority into domain settlement records.
package settlement

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/sacco/backend/internal/domain/deduction"
	"github.com/shopspring/decimal"
)

// DefaultMaxRows bounds how many data rows a single file may carry
const DefaultMaxRows = 50000

// Column aliases accepted in the header row, lowercased. Settlement
// files arrive from several payroll systems with slightly different
// header spellings.
var columnAliases = map[string][]string{
	"employee_number": {"employee number", "employee_number", "employeenumber", "emp_no", "employee no"},
	"national_id":     {"national id", "national_id", "nationalid", "nin"},
	"member_number":   {"member number", "member_number", "membernumber", "member no"},
	"amount":          {"deducted amount", "deducted_amount", "amount", "amount_deducted", "deduction_amount"},
	"status":          {"status", "deduction_status"},
	"reason":          {"reason", "failure_reason", "remarks"},
}

// ParseResult holds the outcome of parsing one settlement file
type ParseResult struct {
	Records   []deduction.SettlementRecord `json:"-"`
	TotalRows int                          `json:"total_rows"`
	GoodRows  int                          `json:"good_rows"`
	RowErrors []RowError                   `json:"row_errors"`
}

// Parser reads settlement CSV files. Data-level anomalies never drop a
// row: a record is emitted for every data row, with bad cells defaulted
// and a RowError noted. Only structural problems (encoding, missing
// header, no data at all) fail the whole parse.
type Parser struct {
	maxRows int
}

// ParserOption configures a Parser
type ParserOption func(*Parser)

// WithMaxRows overrides the data row limit
func WithMaxRows(n int) ParserOption {
	return func(p *Parser) {
		if n > 0 {
			p.maxRows = n
		}
	}
}

// NewParser creates a Parser
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{maxRows: DefaultMaxRows}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads the whole settlement file from r
func (p *Parser) Parse(r io.Reader) (*ParseResult, error) {
	br := bufio.NewReader(r)

	// Strip UTF-8 BOM
	head, err := br.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read settlement file: %w", err)
	}
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	if err := validateUTF8(br); err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	columns, err := p.parseHeader(reader)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	line := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.TotalRows++
			result.RowErrors = append(result.RowErrors,
				NewRowError(line, "", ErrCodeMalformedRow, err.Error()))
			continue
		}
		if isEmptyRow(fields) {
			continue
		}
		result.TotalRows++
		if result.TotalRows > p.maxRows {
			return nil, fmt.Errorf("%w: limit %d", ErrTooManyRows, p.maxRows)
		}

		rec, rowErrs := p.parseRow(line, columns, fields)
		if len(rowErrs) > 0 {
			result.RowErrors = append(result.RowErrors, rowErrs...)
		} else {
			result.GoodRows++
		}
		result.Records = append(result.Records, rec)
	}

	if result.TotalRows == 0 {
		return nil, ErrNoDataRows
	}
	return result, nil
}

// ParseBytes parses a settlement file held in memory
func (p *Parser) ParseBytes(data []byte) (*ParseResult, error) {
	return p.Parse(bytes.NewReader(data))
}

// parseHeader maps canonical column names to field indexes using the
// accepted aliases.
func (p *Parser) parseHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	columns := make(map[string]int, len(columnAliases))
	for canonical, aliases := range columnAliases {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				columns[canonical] = i
				break
			}
		}
	}

	// A file missing some columns still parses; the absent cells
	// default per row so reconciliation can surface the gaps itself.
	return columns, nil
}

func (p *Parser) parseRow(line int, columns map[string]int, fields []string) (deduction.SettlementRecord, []RowError) {
	get := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	var errs []RowError
	rec := deduction.SettlementRecord{
		EmployeeNumber: get("employee_number"),
		NationalID:     get("national_id"),
		MemberNumber:   get("member_number"),
		DeductedAmount: decimal.Zero,
		Reason:         get("reason"),
	}

	if !rec.HasIdentity() {
		errs = append(errs, NewRowError(line, "employee_number", ErrCodeMissingIdentity,
			"Row carries no identifying number"))
	}

	rawAmount := strings.ReplaceAll(get("amount"), ",", "")
	amount, err := decimal.NewFromString(rawAmount)
	switch {
	case rawAmount == "":
		// Absent column or blank cell, keep the zero default
	case err != nil:
		errs = append(errs, RowError{Row: line, Column: "amount", Code: ErrCodeInvalidAmount,
			Message: "Amount is not a valid number, treated as zero", Value: rawAmount})
	case amount.IsNegative():
		errs = append(errs, RowError{Row: line, Column: "amount", Code: ErrCodeInvalidAmount,
			Message: "Amount cannot be negative, treated as zero", Value: rawAmount})
	default:
		rec.DeductedAmount = amount
	}

	rec.Status = normalizeStatus(get("status"))

	return rec, errs
}

// normalizeStatus folds the payroll systems' status vocabulary onto
// the two-value domain status. An absent status means the authority
// raised no complaint, so it reads as success; any other unrecognized
// text is treated as failed.
func normalizeStatus(raw string) deduction.SettlementStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "SUCCESS", "SUCCESSFUL", "OK", "PAID", "DEDUCTED":
		return deduction.SettlementStatusSuccess
	default:
		return deduction.SettlementStatusFailed
	}
}

func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	if !utf8.Valid(content) && len(content) == checkSize {
		// Could be a rune split at the boundary, check the prefix only
		content = content[:len(content)-utf8.UTFMax]
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

func isEmptyRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
