package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bewustetrader/internal/config"
	"bewustetrader/internal/errors"
	"bewustetrader/internal/importer"
	"bewustetrader/internal/journal"
	"bewustetrader/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Journal: config.JournalConfig{Currency: "$"},
		Import:  config.ImportConfig{BatchSize: 10, DateLayout: "2006-01-02 15:04:05"},
		Logging: config.LoggingConfig{Level: "info"},
		UI:      config.UIConfig{DateFormat: "2006-01-02"},
		Dir:     t.TempDir(),
	}
}

func newTestApp(t *testing.T, withStore bool) *App {
	t.Helper()
	app := &App{Config: testConfig(t), Logger: zerolog.Nop()}
	if withStore {
		s, err := store.NewSQLiteStore(filepath.Join(app.Config.Dir, "journal.db"))
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		app.Store = s
		app.Journal = journal.NewService(s, zerolog.Nop())
	}
	return app
}

func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(app)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

type calcJSON struct {
	Summary struct {
		Available       bool            `json:"available"`
		Direction       string          `json:"direction"`
		ClosedVolume    decimal.Decimal `json:"closed_volume"`
		RealizedPnl     decimal.Decimal `json:"realized_pnl"`
		NetPnl          decimal.Decimal `json:"net_pnl"`
		RMultiple       decimal.Decimal `json:"r_multiple"`
		IsOverAllocated bool            `json:"is_over_allocated"`
	} `json:"summary"`
	Warnings []string `json:"warnings"`
	Exits    []struct {
		Price  string `json:"price"`
		Volume string `json:"volume"`
		Label  string `json:"label"`
	} `json:"exits"`
	Result *struct {
		PnL       decimal.Decimal `json:"pnl"`
		RMultiple decimal.Decimal `json:"r_multiple"`
	} `json:"result"`
}

func runCalc(t *testing.T, args ...string) calcJSON {
	t.Helper()
	out, err := execute(t, newTestApp(t, false), append([]string{"calc", "--json"}, args...)...)
	if err != nil {
		t.Fatalf("calc %v: %v", args, err)
	}
	var result calcJSON
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	return result
}

func TestCalcSplitExits(t *testing.T) {
	r := runCalc(t, "--entry", "100", "--stop", "90", "--risk", "100", "--size", "2",
		"--commission", "12", "--exit", "110:1:TP1", "--exit", "125:1:runner")

	if !r.Summary.Available || r.Summary.Direction != "LONG" {
		t.Fatalf("summary = %+v", r.Summary)
	}
	// (10*10*1 + 25*10*1) / 2 = 175
	if !r.Summary.RealizedPnl.Equal(decimal.NewFromInt(175)) {
		t.Errorf("RealizedPnl = %s, want 175", r.Summary.RealizedPnl)
	}
	if !r.Summary.NetPnl.Equal(decimal.NewFromInt(163)) {
		t.Errorf("NetPnl = %s, want 163", r.Summary.NetPnl)
	}
	if r.Result == nil || !r.Result.RMultiple.Equal(decimal.RequireFromString("1.75")) {
		t.Errorf("Result = %+v, want r 1.75", r.Result)
	}
}

func TestCalcDirectionOverrideAndDistribute(t *testing.T) {
	r := runCalc(t, "--entry", "100", "--stop", "90", "--risk", "100", "--size", "1",
		"--direction", "short", "--exit", "95:", "--exit", "90:", "--exit", "85:", "--distribute", "3")

	if r.Summary.Direction != "SHORT" {
		t.Errorf("Direction = %s, want SHORT override", r.Summary.Direction)
	}
	if len(r.Exits) != 3 {
		t.Fatalf("got %d exits, want 3", len(r.Exits))
	}
	wantVolumes := []string{"0.33", "0.33", "0.34"}
	for i, want := range wantVolumes {
		if r.Exits[i].Volume != want || r.Exits[i].Price == "" {
			t.Errorf("exit %d = %+v, want volume %s with its price kept", i, r.Exits[i], want)
		}
	}
	if !r.Summary.ClosedVolume.Equal(decimal.NewFromInt(1)) {
		t.Errorf("ClosedVolume = %s, want 1", r.Summary.ClosedVolume)
	}
}

func TestCalcInsufficientData(t *testing.T) {
	r := runCalc(t, "--entry", "100", "--stop", "100", "--risk", "50", "--exit", "110:1")
	if r.Summary.Available || r.Result != nil {
		t.Errorf("expected the calculator to abstain, got %+v", r)
	}

	out, err := execute(t, newTestApp(t, false), "calc", "--entry", "abc", "--stop", "90")
	if err != nil {
		t.Fatalf("calc: %v", err)
	}
	if !strings.Contains(out, "Insufficient data") {
		t.Errorf("output = %q, want insufficient data notice", out)
	}
}

func TestCalcOverAllocationWarning(t *testing.T) {
	r := runCalc(t, "--entry", "1,1000", "--stop", "1,0950", "--risk", "100", "--size", "1",
		"--exit", "1,1050:1", "--exit", "1,1100:0.5")
	if !r.Summary.IsOverAllocated || len(r.Warnings) != 1 {
		t.Errorf("over-allocation not reported: %+v", r)
	}

	out, err := execute(t, newTestApp(t, false), "calc", "--entry", "100", "--stop", "90", "--risk", "100",
		"--size", "1", "--exit", "110:2")
	if err != nil {
		t.Fatalf("calc: %v", err)
	}
	if !strings.Contains(out, "Closed volume exceeds total position size") {
		t.Errorf("output = %q, want over-allocation warning", out)
	}
}

func TestCalcFlagErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"bad direction", []string{"--direction", "up"}},
		{"bad exit", []string{"--exit", "110"}},
		{"negative distribute", []string{"--distribute", "-1"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, newTestApp(t, false), append([]string{"calc"}, tc.args...)...)
			if !errors.Is(err, errors.ErrInputValidation) {
				t.Errorf("error = %v, want ErrInputValidation", err)
			}
		})
	}
}

func TestJournalCommandsWithoutStore(t *testing.T) {
	_, err := execute(t, newTestApp(t, false), "journal", "list")
	if !errors.Is(err, errors.ErrDatabaseError) {
		t.Errorf("error = %v, want ErrDatabaseError", err)
	}
}

func TestAppClosesStoreAfterFailedCommand(t *testing.T) {
	cfg := testConfig(t)
	cfg.Journal.DBPath = filepath.Join(cfg.Dir, "journal.db")
	app := NewApp(cfg, zerolog.Nop())
	s := app.Store
	if s == nil {
		t.Fatal("expected NewApp to open the store")
	}

	if _, err := execute(t, app, "journal", "show", "missing"); !errors.Is(err, errors.ErrTradeNotFound) {
		t.Fatalf("journal show: %v, want ErrTradeNotFound", err)
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := s.GetTrades(context.Background(), store.TradeFilter{}); err == nil {
		t.Error("expected the store to be closed after a failed command")
	}
	if err := app.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestJournalWorkflow(t *testing.T) {
	app := newTestApp(t, true)

	out, err := execute(t, app, "--json", "account", "add", "Funded 100k", "--firm", "FTMO", "--size", "100000", "--phase", "funded")
	if err != nil {
		t.Fatalf("account add: %v", err)
	}
	var account struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(out), &account); err != nil || account.ID == "" {
		t.Fatalf("account add output %q: %v", out, err)
	}

	_, err = execute(t, app, "journal", "add", "--symbol", "eurusd", "--account", account.ID,
		"--entry", "1.1000", "--stop", "1.0950", "--risk", "100", "--size", "2",
		"--exit", "1.1050:1:TP1", "--exit", "1.1100:1:TP2", "--commission", "7",
		"--discipline", "85", "--date", "2024-04-02")
	if err != nil {
		t.Fatalf("journal add: %v", err)
	}

	_, err = execute(t, app, "journal", "add", "--symbol", "NAS100", "--entry", "18000", "--stop", "18000", "--risk", "100")
	if !errors.Is(err, errors.ErrInsufficientData) {
		t.Errorf("journal add with zero distance: %v, want ErrInsufficientData", err)
	}

	out, err = execute(t, app, "--json", "journal", "list", "--symbol", "EURUSD")
	if err != nil {
		t.Fatalf("journal list: %v", err)
	}
	var trades []struct {
		ID        string          `json:"id"`
		PnL       decimal.Decimal `json:"pnl"`
		RMultiple decimal.Decimal `json:"r_multiple"`
	}
	if err := json.Unmarshal([]byte(out), &trades); err != nil {
		t.Fatalf("journal list output %q: %v", out, err)
	}
	// (100 + 200) / 2 = 150 gross, 143 net
	if len(trades) != 1 || !trades[0].PnL.Equal(decimal.NewFromInt(143)) || !trades[0].RMultiple.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("trades = %+v", trades)
	}

	if _, err := execute(t, app, "payout", "add", account.ID, "50"); err != nil {
		t.Fatalf("payout add: %v", err)
	}
	out, err = execute(t, app, "--json", "account", "list")
	if err != nil {
		t.Fatalf("account list: %v", err)
	}
	var summaries []struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.Unmarshal([]byte(out), &summaries); err != nil || len(summaries) != 1 {
		t.Fatalf("account list output %q: %v", out, err)
	}
	if !summaries[0].Balance.Equal(decimal.NewFromInt(100093)) {
		t.Errorf("Balance = %s, want 100093", summaries[0].Balance)
	}

	out, err = execute(t, app, "journal", "report")
	if err != nil {
		t.Fatalf("journal report: %v", err)
	}
	if !strings.Contains(out, "+$143.00") || !strings.Contains(out, "+1.50R") {
		t.Errorf("report output = %q", out)
	}

	exportPath := filepath.Join(t.TempDir(), "trades.csv")
	if _, err := execute(t, app, "journal", "export", exportPath); err != nil {
		t.Fatalf("journal export: %v", err)
	}
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(data), "1.105:1:TP1;1.11:1:TP2") {
		t.Errorf("export = %q", data)
	}

	if _, err := execute(t, app, "journal", "delete", trades[0].ID); err != nil {
		t.Fatalf("journal delete: %v", err)
	}
	if _, err := execute(t, app, "journal", "show", trades[0].ID); !errors.Is(err, errors.ErrTradeNotFound) {
		t.Errorf("show deleted trade: %v, want ErrTradeNotFound", err)
	}
}

func TestJournalImport(t *testing.T) {
	app := newTestApp(t, true)

	csvPath := filepath.Join(t.TempDir(), "mt5.csv")
	csv := "Item,Type,Open Price,S / L,Close Price,Volume,Profit\n" +
		"XAUUSD,buy,2300,2290,2320,1,\n" +
		"US30,sell,,,,,-80\n" +
		",buy,1,0.5,2,1,\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0644); err != nil {
		t.Fatalf("writing csv: %v", err)
	}

	out, err := execute(t, app, "--json", "journal", "import", csvPath,
		"--map", "symbol=Item", "--map", "direction=Type", "--map", "entry=Open Price",
		"--map", "stop=S / L", "--map", "exit=Close Price", "--map", "size=Volume",
		"--map", "pnl=Profit", "--map", "risk=Risk")
	if err != nil {
		t.Fatalf("journal import: %v", err)
	}

	var result struct {
		Imported int `json:"imported"`
		Skipped  []struct {
			Row int `json:"row"`
		} `json:"skipped"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("import output %q: %v", out, err)
	}
	// XAUUSD has no risk column so only the pnl fallback could apply, and it is empty.
	if result.Imported != 1 || len(result.Skipped) != 2 {
		t.Errorf("result = %+v, want 1 imported and 2 skipped", result)
	}

	if _, err := execute(t, app, "journal", "import", csvPath, "--map", "bogus=X"); !errors.Is(err, errors.ErrInvalidMapping) {
		t.Errorf("bad mapping: %v, want ErrInvalidMapping", err)
	}
}

func TestParseDateFlagMatchesImport(t *testing.T) {
	layout := "2006-01-02 15:04:05"
	got, err := parseDateFlag("date", "2024-04-02 09:15:00", layout)
	if err != nil {
		t.Fatalf("parseDateFlag: %v", err)
	}
	imported, ok := importer.ParseDate("2024-04-02 09:15:00", layout)
	if !ok || !got.Equal(imported) {
		t.Errorf("journal add date %v differs from imported date %v", got, imported)
	}
	if want := time.Date(2024, 4, 2, 9, 15, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("date = %v, want local %v", got, want)
	}

	if _, err := parseDateFlag("date", "soon", layout); !errors.Is(err, errors.ErrInputValidation) {
		t.Errorf("bad date: %v, want ErrInputValidation", err)
	}
}

func TestConfigDirFromArgs(t *testing.T) {
	testCases := []struct {
		args []string
		want string
	}{
		{[]string{"calc", "--config", "/tmp/tj"}, "/tmp/tj"},
		{[]string{"--config=/etc/tj", "journal", "list"}, "/etc/tj"},
		{[]string{"journal", "list"}, ""},
		{[]string{"--config"}, ""},
	}

	for _, tc := range testCases {
		if got := ConfigDirFromArgs(tc.args); got != tc.want {
			t.Errorf("ConfigDirFromArgs(%v) = %q, want %q", tc.args, got, tc.want)
		}
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, newTestApp(t, false), "--json", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, Version) {
		t.Errorf("output = %q, want version %s", out, Version)
	}
}
