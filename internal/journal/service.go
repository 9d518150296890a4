// Package journal turns calculator drafts into journaled trades and builds
// reports over the stored journal.
package journal

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bewustetrader/internal/calculator"
	"bewustetrader/internal/errors"
	"bewustetrader/internal/logging"
	"bewustetrader/internal/models"
	"bewustetrader/internal/store"
)

// Service coordinates the calculator and the journal store.
type Service struct {
	store  store.JournalStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a journal service.
func NewService(s store.JournalStore, logger zerolog.Logger) *Service {
	return &Service{
		store:  s,
		logger: logger,
		now:    time.Now,
	}
}

// loggerFor prefers the logger carried by ctx, which holds command fields.
func (s *Service) loggerFor(ctx context.Context) zerolog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// SubmitRequest is a trade as entered, ready for submission.
type SubmitRequest struct {
	Draft           calculator.TradeDraft
	Symbol          string
	AccountID       string
	Setup           string
	Notes           string
	DisciplineScore int
	ClosedAt        time.Time
	Source          string
}

// Validate checks the non-numeric fields of the request.
func (r SubmitRequest) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return errors.NewValidationError("symbol", r.Symbol, "symbol is required")
	}
	if r.DisciplineScore < 0 || r.DisciplineScore > 100 {
		return errors.NewValidationError("discipline_score", r.DisciplineScore, "must be between 0 and 100")
	}
	return nil
}

// Submit computes the outcome of the draft and stores a snapshot of it.
// It returns ErrInsufficientData when the calculator abstains.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.TradeRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.AccountID != "" {
		if _, err := s.store.GetAccount(ctx, req.AccountID); err != nil {
			return nil, err
		}
	}

	summary := calculator.ComputeOutcome(req.Draft)
	submission, ok := calculator.Finalize(summary, req.DisciplineScore)
	if !ok {
		return nil, errors.ErrInsufficientData
	}

	if req.Source == "" {
		req.Source = "manual"
	}
	record := BuildRecord(req, summary, submission, s.now())

	logger := logging.WithTradeID(s.loggerFor(ctx), record.ID)
	for _, w := range summary.Warnings() {
		logger.Warn().Str("warning", string(w)).Msg("Trade submitted with warning")
	}

	if err := s.store.SaveTrade(ctx, &record); err != nil {
		return nil, errors.Wrap(err, "submitting trade")
	}

	logging.LogTradeSubmitted(logger, record.ID, record.Symbol, string(record.Direction), record.PnL, record.RMultiple)
	return &record, nil
}

// BuildRecord assembles the persisted trade from the request and its
// computed outcome. Incomplete exit rows are not stored.
func BuildRecord(req SubmitRequest, summary calculator.Summary, submission calculator.Submission, now time.Time) models.TradeRecord {
	params := req.Draft.Params()

	var exits []models.ExitFill
	for _, f := range req.Draft.Fills() {
		if !f.IsComplete() {
			continue
		}
		exits = append(exits, models.ExitFill{
			Price:  f.Price.Decimal,
			Volume: f.Volume.Decimal,
			Label:  f.Label,
		})
	}

	closedAt := req.ClosedAt
	if closedAt.IsZero() {
		closedAt = now
	}

	return models.TradeRecord{
		ID:              uuid.NewString(),
		AccountID:       req.AccountID,
		Symbol:          strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Direction:       summary.Direction,
		EntryPrice:      params.EntryPrice.Decimal,
		StopLoss:        params.StopLossPrice.Decimal,
		RiskAmount:      params.RiskAmount.Decimal,
		PositionSize:    params.TotalPositionSize.Decimal,
		Commission:      summary.Commission,
		Exits:           exits,
		ClosedVolume:    summary.ClosedVolume,
		PnL:             submission.PnL,
		RMultiple:       submission.RMultiple,
		DisciplineScore: submission.DisciplineScore,
		OverAllocated:   summary.IsOverAllocated,
		Status:          submission.Status,
		Setup:           req.Setup,
		Notes:           req.Notes,
		Source:          req.Source,
		ClosedAt:        closedAt,
		CreatedAt:       now,
	}
}

// Trades lists journaled trades.
func (s *Service) Trades(ctx context.Context, filter store.TradeFilter) ([]models.TradeRecord, error) {
	return s.store.GetTrades(ctx, filter)
}

// Trade returns a single journaled trade.
func (s *Service) Trade(ctx context.Context, id string) (*models.TradeRecord, error) {
	return s.store.GetTrade(ctx, id)
}

// DeleteTrade removes a journaled trade.
func (s *Service) DeleteTrade(ctx context.Context, id string) error {
	if err := s.store.DeleteTrade(ctx, id); err != nil {
		return err
	}
	logger := logging.WithTradeID(s.loggerFor(ctx), id)
	logger.Info().Str("event", "trade_deleted").Msg("Trade deleted")
	return nil
}

// CreateAccount registers a prop-firm account.
func (s *Service) CreateAccount(ctx context.Context, name, firm string, size decimal.Decimal, phase models.AccountPhase) (*models.Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidationError("name", name, "account name is required")
	}
	if !size.IsPositive() {
		return nil, errors.NewValidationError("size", size.String(), "account size must be positive")
	}

	account := &models.Account{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Firm:      strings.TrimSpace(firm),
		Size:      size,
		Phase:     phase,
		CreatedAt: s.now(),
	}
	if err := s.store.SaveAccount(ctx, account); err != nil {
		return nil, err
	}

	logger := logging.WithAccount(s.loggerFor(ctx), account.ID)
	logger.Info().Str("event", "account_created").Str("firm", account.Firm).Str("size", size.String()).Msg("Account created")
	return account, nil
}

// RecordPayout stores a payout against an existing account.
func (s *Service) RecordPayout(ctx context.Context, accountID string, amount decimal.Decimal, date time.Time, note string) (*models.Payout, error) {
	if !amount.IsPositive() {
		return nil, errors.NewValidationError("amount", amount.String(), "payout amount must be positive")
	}
	if _, err := s.store.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	now := s.now()
	if date.IsZero() {
		date = now
	}
	payout := &models.Payout{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Amount:    amount,
		Date:      date,
		Note:      note,
		CreatedAt: now,
	}
	if err := s.store.SavePayout(ctx, payout); err != nil {
		return nil, err
	}

	logging.LogPayout(logging.WithAccount(s.loggerFor(ctx), accountID), amount)
	return payout, nil
}

// Payouts lists the payouts of an account.
func (s *Service) Payouts(ctx context.Context, accountID string) ([]models.Payout, error) {
	return s.store.GetPayouts(ctx, accountID)
}
