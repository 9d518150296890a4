package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestFromContext(t *testing.T) {
	var buf, fallbackBuf bytes.Buffer
	fallback := zerolog.New(&fallbackBuf)

	ctx := WithLogger(context.Background(), zerolog.New(&buf))
	logger := FromContext(ctx, fallback)
	logger.Info().Msg("hello")
	if buf.Len() == 0 {
		t.Error("expected logger from context to write")
	}

	logger = FromContext(context.Background(), fallback)
	logger.Info().Msg("fallback")
	if fallbackBuf.Len() == 0 {
		t.Error("expected fallback logger without a logger in context")
	}
}

func TestLogPayoutCarriesAccount(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	LogPayout(WithAccount(zerolog.New(&buf), "acc-9"), decimal.NewFromInt(250))

	var event map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	if event["account_id"] != "acc-9" || event["amount"] != "250" || event["event"] != "payout" {
		t.Errorf("unexpected payout event: %v", event)
	}
}

func TestLogTradeSubmittedFields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	logger := WithAccount(zerolog.New(&buf), "acc-1")

	LogTradeSubmitted(logger, "t-1", "EURUSD", "LONG", decimal.NewFromInt(150), decimal.RequireFromString("1.5"))

	var event map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}

	want := map[string]string{
		"event":      "trade_submitted",
		"trade_id":   "t-1",
		"account_id": "acc-1",
		"pnl":        "150",
		"r_multiple": "1.5",
	}
	for k, v := range want {
		if event[k] != v {
			t.Errorf("%s = %v, want %s", k, event[k], v)
		}
	}
}

func TestLogImportFields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	LogImport(zerolog.New(&buf), "trades.csv", 12, 3, 40*time.Millisecond)

	var event map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("invalid JSON log line: %v", err)
	}
	if event["imported"] != float64(12) || event["skipped"] != float64(3) {
		t.Errorf("unexpected counts: %v", event)
	}
}

func TestParseLevel(t *testing.T) {
	testCases := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"bogus": zerolog.InfoLevel,
	}
	for in, want := range testCases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
