// Package importer moves trades between the journal and CSV files exported
// by broker platforms and spreadsheets.
package importer

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bewustetrader/internal/calculator"
	"bewustetrader/internal/errors"
	"bewustetrader/internal/journal"
	"bewustetrader/internal/logging"
	"bewustetrader/internal/models"
	"bewustetrader/internal/store"
)

// Field is a journal field that can be read from a CSV column.
type Field string

const (
	FieldSymbol     Field = "symbol"
	FieldDirection  Field = "direction"
	FieldEntry      Field = "entry"
	FieldStop       Field = "stop"
	FieldExit       Field = "exit"
	FieldExits      Field = "exits"
	FieldSize       Field = "size"
	FieldRisk       Field = "risk"
	FieldCommission Field = "commission"
	FieldPnL        Field = "pnl"
	FieldDate       Field = "date"
	FieldAccount    Field = "account"
	FieldNotes      Field = "notes"
	FieldSetup      Field = "setup"
	FieldDiscipline Field = "discipline"
)

var allFields = []Field{
	FieldSymbol, FieldDirection, FieldEntry, FieldStop, FieldExit, FieldExits, FieldSize,
	FieldRisk, FieldCommission, FieldPnL, FieldDate, FieldAccount, FieldNotes,
	FieldSetup, FieldDiscipline,
}

// DefaultDateLayout is used for export and as a fallback when parsing dates.
const DefaultDateLayout = "2006-01-02 15:04:05"

// Mapping maps journal fields to CSV headers.
type Mapping map[Field]string

// DefaultMapping maps every field to a header of the same name.
func DefaultMapping() Mapping {
	m := make(Mapping, len(allFields))
	for _, f := range allFields {
		m[f] = string(f)
	}
	return m
}

// ParseMapping reads "field=Header" pairs on top of DefaultMapping.
func ParseMapping(pairs []string) (Mapping, error) {
	m := DefaultMapping()
	for _, pair := range pairs {
		field, header, ok := strings.Cut(pair, "=")
		field = strings.ToLower(strings.TrimSpace(field))
		header = strings.TrimSpace(header)
		if !ok || header == "" {
			return nil, errors.Wrapf(errors.ErrInvalidMapping, "expected field=Header, got %q", pair)
		}
		if _, known := m[Field(field)]; !known {
			return nil, errors.Wrapf(errors.ErrInvalidMapping, "unknown field %q", field)
		}
		m[Field(field)] = header
	}
	return m, nil
}

// Options configures an Importer.
type Options struct {
	Mapping        Mapping
	BatchSize      int
	DateLayout     string
	DefaultAccount string
}

// Result reports the outcome of an import.
type Result struct {
	Imported int                   `json:"imported"`
	Skipped  []*errors.ImportError `json:"skipped,omitempty"`
}

// Importer reads trades from CSV and writes them to the journal store.
type Importer struct {
	store          store.JournalStore
	mapping        Mapping
	batchSize      int
	dateLayout     string
	defaultAccount string
	logger         zerolog.Logger
	now            func() time.Time
}

// NewImporter creates an importer.
func NewImporter(s store.JournalStore, opts Options, logger zerolog.Logger) *Importer {
	if opts.Mapping == nil {
		opts.Mapping = DefaultMapping()
	}
	if opts.DateLayout == "" {
		opts.DateLayout = DefaultDateLayout
	}
	return &Importer{
		store:          s,
		mapping:        opts.Mapping,
		batchSize:      opts.BatchSize,
		dateLayout:     opts.DateLayout,
		defaultAccount: opts.DefaultAccount,
		logger:         logging.WithOperation(logger, "import"),
		now:            time.Now,
	}
}

// Import reads every row of r. Rows that cannot be turned into a trade are
// reported in Result.Skipped; only read and store failures are returned.
func (imp *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	start := time.Now()
	var result Result

	rows, err := gocsv.CSVToMaps(r)
	if err != nil {
		return result, errors.Wrap(err, "reading csv")
	}
	if len(rows) == 0 {
		return result, nil
	}
	if err := imp.checkHeaders(rows[0]); err != nil {
		return result, err
	}

	batch := NewBatchProcessor(imp.batchSize, func(ctx context.Context, trades []models.TradeRecord) error {
		return imp.store.SaveTrades(ctx, trades)
	})
	accounts := make(map[string]error)

	for i, raw := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		// Row 1 is the header.
		rowNum := i + 2
		record, importErr := imp.buildRecord(rowNum, normalizeRow(raw))
		if importErr == nil && record.AccountID != "" {
			if importErr, err = imp.checkAccount(ctx, accounts, rowNum, record.AccountID); err != nil {
				result.Imported = batch.Processed()
				return result, err
			}
		}
		if importErr != nil {
			imp.logger.Debug().Err(importErr).Msg("Skipping row")
			result.Skipped = append(result.Skipped, importErr)
			continue
		}
		if err := batch.Add(ctx, record); err != nil {
			result.Imported = batch.Processed()
			return result, errors.Wrap(err, "saving imported trades")
		}
	}
	if err := batch.Flush(ctx); err != nil {
		result.Imported = batch.Processed()
		return result, errors.Wrap(err, "saving imported trades")
	}

	result.Imported = batch.Processed()
	logging.LogImport(imp.logger, "csv", result.Imported, len(result.Skipped), time.Since(start))
	return result, nil
}

// checkHeaders requires the symbol column and either entry or pnl.
func (imp *Importer) checkHeaders(row map[string]string) error {
	present := normalizeRow(row)
	has := func(f Field) bool {
		_, ok := present[normalizeHeader(imp.mapping[f])]
		return ok
	}

	var missing []string
	if !has(FieldSymbol) {
		missing = append(missing, imp.mapping[FieldSymbol])
	}
	if !has(FieldEntry) && !has(FieldPnL) {
		missing = append(missing, imp.mapping[FieldEntry]+" or "+imp.mapping[FieldPnL])
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.Wrapf(errors.ErrInvalidMapping, "missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// checkAccount looks each account up once per import. Rows naming an
// unknown account are skipped, other store failures abort the import.
func (imp *Importer) checkAccount(ctx context.Context, known map[string]error, rowNum int, id string) (*errors.ImportError, error) {
	err, seen := known[id]
	if !seen {
		if _, err = imp.store.GetAccount(ctx, id); err != nil && !errors.Is(err, errors.ErrAccountNotFound) {
			return nil, errors.Wrap(err, "checking account")
		}
		known[id] = err
	}
	if err != nil {
		return errors.NewImportError(rowNum, imp.mapping[FieldAccount], err), nil
	}
	return nil, nil
}

func (imp *Importer) value(row map[string]string, f Field) string {
	return strings.TrimSpace(row[normalizeHeader(imp.mapping[f])])
}

// buildRecord turns one CSV row into a trade. The exits column holds every
// fill as written by Export; a single exit price is computed as one fill of
// the whole position. Otherwise, or when the calculator abstains, the pnl
// column is taken as the result.
func (imp *Importer) buildRecord(rowNum int, row map[string]string) (models.TradeRecord, *errors.ImportError) {
	symbol := imp.value(row, FieldSymbol)
	if symbol == "" {
		return models.TradeRecord{}, errors.NewImportError(rowNum, imp.mapping[FieldSymbol],
			errors.NewValidationError("symbol", symbol, "symbol is required"))
	}

	closedAt, ok := ParseDate(imp.value(row, FieldDate), imp.dateLayout)
	if !ok {
		return models.TradeRecord{}, errors.NewImportError(rowNum, imp.mapping[FieldDate],
			errors.NewValidationError("date", imp.value(row, FieldDate), "unrecognized date"))
	}

	discipline := 0
	if v := imp.value(row, FieldDiscipline); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return models.TradeRecord{}, errors.NewImportError(rowNum, imp.mapping[FieldDiscipline],
				errors.NewValidationError("discipline", v, "not a whole number"))
		}
		discipline = n
	}

	draft := calculator.TradeDraft{
		RiskAmount:        imp.value(row, FieldRisk),
		TotalPositionSize: imp.value(row, FieldSize),
		Commission:        imp.value(row, FieldCommission),
		Direction:         models.ParseDirection(imp.value(row, FieldDirection)),
	}
	draft = draft.WithPrices(imp.value(row, FieldEntry), imp.value(row, FieldStop))

	if exits := imp.value(row, FieldExits); exits != "" {
		for _, raw := range strings.Split(exits, ";") {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			exitRow, ok := calculator.ParseExitRow(raw)
			if !ok {
				return models.TradeRecord{}, errors.NewImportError(rowNum, imp.mapping[FieldExits],
					errors.NewValidationError("exits", raw, "expected price:volume[:label]"))
			}
			draft = draft.WithExit(exitRow)
		}
	} else if exit := imp.value(row, FieldExit); exit != "" {
		// Without a size the single fill is one unit of a one-unit position.
		if size := calculator.ParseOptionalDecimal(draft.TotalPositionSize); !size.Valid || !size.Decimal.IsPositive() {
			draft.TotalPositionSize = "1"
		}
		draft = draft.WithExit(calculator.ExitRow{Price: exit, Volume: draft.TotalPositionSize})
	}

	account := imp.value(row, FieldAccount)
	if account == "" {
		account = imp.defaultAccount
	}
	req := journal.SubmitRequest{
		Draft:           draft,
		Symbol:          symbol,
		AccountID:       account,
		Setup:           imp.value(row, FieldSetup),
		Notes:           imp.value(row, FieldNotes),
		DisciplineScore: discipline,
		ClosedAt:        closedAt,
		Source:          "import",
	}
	if err := req.Validate(); err != nil {
		return models.TradeRecord{}, errors.NewImportError(rowNum, "", err)
	}
	now := imp.now()

	if len(draft.Exits) > 0 {
		summary := calculator.ComputeOutcome(draft)
		if submission, ok := calculator.Finalize(summary, discipline); ok {
			return journal.BuildRecord(req, summary, submission, now), nil
		}
	}

	pnl := calculator.ParseOptionalDecimal(imp.value(row, FieldPnL))
	if !pnl.Valid {
		return models.TradeRecord{}, errors.NewImportError(rowNum, "", errors.ErrInsufficientData)
	}
	return journal.BuildRecord(req, reportedSummary(draft), reportedSubmission(draft, pnl.Decimal, discipline), now), nil
}

// reportedSummary is the snapshot of a trade whose P&L came from the file
// instead of the calculator.
func reportedSummary(draft calculator.TradeDraft) calculator.Summary {
	params := draft.Params()
	summary := calculator.Summary{Direction: draft.Direction}
	if params.Commission.Valid {
		summary.Commission = params.Commission.Decimal
	}
	return summary
}

func reportedSubmission(draft calculator.TradeDraft, pnl decimal.Decimal, discipline int) calculator.Submission {
	sub := calculator.Submission{
		PnL:             pnl,
		DisciplineScore: discipline,
		Status:          models.TradeStatusClosed,
	}
	if risk := draft.Params().RiskAmount; risk.Valid && risk.Decimal.IsPositive() {
		sub.RMultiple = pnl.Div(risk.Decimal).Round(2)
	}
	return sub
}

// ParseDate reads value in layout, DefaultDateLayout, RFC 3339 or as a plain
// date. Values without a zone are local time. An empty value is the zero time.
func ParseDate(value, layout string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, true
	}
	for _, l := range []string{layout, DefaultDateLayout, time.RFC3339, "2006-01-02"} {
		if l == "" {
			continue
		}
		if t, err := time.ParseInLocation(l, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

func normalizeRow(row map[string]string) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		out[normalizeHeader(k)] = v
	}
	return out
}
