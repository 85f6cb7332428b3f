// Package ingest parses vendor CSV exports into the common transaction
// schema. Two shapes are supported: the payment-processor report (net
// amount derived from gross and fee) and the donor-management-system
// export. Header names are matched case-, space- and
// underscore-insensitively, so "Donor Name", "donor_name" and "DonorName"
// all map to the same column.
//
// Row-level parse failures follow the engine's exclude-and-continue
// policy: the bad row is reported alongside the rows that did parse, and
// the caller decides whether to proceed.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/donorops/reconcile-backend/internal/domain/recon"
)

// RowError records a CSV row that could not be converted.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

// header alias groups per logical field, in lookup priority order.
var (
	idAliases     = []string{"transactionid", "recordid", "id"}
	dateAliases   = []string{"date", "postingdate", "createdutc", "payoutdate", "donationdate"}
	nameAliases   = []string{"donorname", "customername", "donor", "name"}
	amountAliases = []string{"amount", "grossamount", "net"}
	feeAliases    = []string{"fees", "fee"}
	descAliases   = []string{"description", "memo"}
	methodAliases = []string{"paymentmethod", "method"}
	payoutAliases = []string{"payoutid"}
	campAliases   = []string{"campaign"}
)

type row struct {
	line   int
	fields map[string]string
}

func (r row) get(aliases []string) string {
	for _, a := range aliases {
		if v, ok := r.fields[a]; ok && v != "" {
			return v
		}
	}
	return ""
}

// normalizeHeader collapses a column title to its lookup key.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "_", "")
	return strings.TrimPrefix(h, "\ufeff")
}

// readRows consumes the CSV stream into header-keyed rows. Rows with a
// field-count mismatch become RowErrors instead of aborting the read.
func readRows(r io.Reader) ([]row, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV header: %w", err)
	}
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = normalizeHeader(h)
	}

	var rows []row
	var rowErrs []RowError
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		if len(record) != len(keys) {
			rowErrs = append(rowErrs, RowError{
				Line: line,
				Err:  fmt.Errorf("expected %d fields, got %d", len(keys), len(record)),
			})
			continue
		}
		fields := make(map[string]string, len(keys))
		for i, v := range record {
			fields[keys[i]] = strings.TrimSpace(v)
		}
		rows = append(rows, row{line: line, fields: fields})
	}
	return rows, rowErrs, nil
}

// ReadProcessorCSV parses a payment-processor export. The amount column is
// the gross charge; the stored amount is net of the fee so it is directly
// comparable with ledger records.
func ReadProcessorCSV(r io.Reader) ([]recon.Transaction, []RowError, error) {
	rows, rowErrs, err := readRows(r)
	if err != nil {
		return nil, nil, err
	}

	var txs []recon.Transaction
	for _, rw := range rows {
		tx, err := processorTransaction(rw)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: rw.line, Err: err})
			continue
		}
		txs = append(txs, tx)
	}
	return txs, rowErrs, nil
}

func processorTransaction(rw row) (recon.Transaction, error) {
	id := rw.get(idAliases)
	if id == "" {
		return recon.Transaction{}, errors.New("missing transaction ID")
	}
	rawAmount := rw.get(amountAliases)
	if rawAmount == "" {
		return recon.Transaction{}, errors.New("missing amount")
	}
	gross, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return recon.Transaction{}, fmt.Errorf("bad amount %q", rawAmount)
	}

	net := gross
	tx := recon.Transaction{
		ID:            id,
		Date:          rw.get(dateAliases),
		Name:          rw.get(nameAliases),
		Description:   rw.get(descAliases),
		PaymentMethod: rw.get(methodAliases),
		PayoutID:      rw.get(payoutAliases),
		Campaign:      rw.get(campAliases),
	}
	if rawFee := rw.get(feeAliases); rawFee != "" {
		fee, err := decimal.NewFromString(rawFee)
		if err != nil {
			return recon.Transaction{}, fmt.Errorf("bad fee %q", rawFee)
		}
		net = gross.Sub(fee)
		tx.GrossAmount = &gross
		tx.Fee = &fee
	}
	tx.Amount = net
	return tx, nil
}

// ReadLedgerCSV parses a donor-management-system export. Amounts are
// already net; the description column carries any reference identifiers.
func ReadLedgerCSV(r io.Reader) ([]recon.Transaction, []RowError, error) {
	rows, rowErrs, err := readRows(r)
	if err != nil {
		return nil, nil, err
	}

	var txs []recon.Transaction
	for _, rw := range rows {
		tx, err := ledgerTransaction(rw)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: rw.line, Err: err})
			continue
		}
		txs = append(txs, tx)
	}
	return txs, rowErrs, nil
}

func ledgerTransaction(rw row) (recon.Transaction, error) {
	id := rw.get(idAliases)
	if id == "" {
		return recon.Transaction{}, errors.New("missing record ID")
	}
	rawAmount := rw.get(amountAliases)
	if rawAmount == "" {
		return recon.Transaction{}, errors.New("missing amount")
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return recon.Transaction{}, fmt.Errorf("bad amount %q", rawAmount)
	}

	return recon.Transaction{
		ID:          id,
		Date:        rw.get(dateAliases),
		Name:        rw.get(nameAliases),
		Amount:      amount,
		Description: rw.get(descAliases),
		Campaign:    rw.get(campAliases),
	}, nil
}
