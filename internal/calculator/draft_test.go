package calculator

import (
	"testing"

	"bewustetrader/internal/models"
)

func baseDraft() TradeDraft {
	return TradeDraft{
		RiskAmount:        "100",
		TotalPositionSize: "2",
	}.WithPrices("100", "90").
		WithExit(ExitRow{Price: "110", Volume: "1", Label: "TP1"}).
		WithExit(ExitRow{Price: "120", Volume: "1", Label: "TP2"})
}

func TestComputeOutcomeFromDraft(t *testing.T) {
	d := baseDraft()
	if d.Direction != models.DirectionLong {
		t.Fatalf("Direction = %q, want LONG", d.Direction)
	}

	s := ComputeOutcome(d)
	assertDecimal(t, "realizedPnl", s.RealizedPnl, "150")
	assertDecimal(t, "rMultiple", s.RMultiple, "1.5")
}

func TestComputeOutcomeWithTypingInProgress(t *testing.T) {
	d := TradeDraft{EntryPrice: "100", StopLossPrice: "9", RiskAmount: ""}
	if s := ComputeOutcome(d); s.Available {
		t.Error("expected no summary while risk is empty")
	}

	d.RiskAmount = "1o0"
	if s := ComputeOutcome(d); s.Available {
		t.Error("expected no summary for non-numeric risk")
	}
}

func TestComputeOutcomeIsIdempotent(t *testing.T) {
	d := baseDraft().WithExit(ExitRow{Price: "", Volume: "0.3"})

	first := ComputeOutcome(d)
	second := ComputeOutcome(d)
	if !summariesIdentical(first, second) {
		t.Errorf("recompute drifted: %+v vs %+v", first, second)
	}
}

func TestDraftEditsDoNotAlias(t *testing.T) {
	original := baseDraft()
	edited := original.WithoutExit(0)

	if len(original.Exits) != 2 || len(edited.Exits) != 1 {
		t.Fatalf("exits: original=%d edited=%d", len(original.Exits), len(edited.Exits))
	}
	if edited.Exits[0].Label != "TP2" {
		t.Errorf("remaining exit = %q, want TP2", edited.Exits[0].Label)
	}

	appended := original.WithExit(ExitRow{Price: "130", Volume: "1"})
	if len(original.Exits) != 2 || len(appended.Exits) != 3 {
		t.Errorf("WithExit modified the receiver")
	}

	if got := original.WithoutExit(5); len(got.Exits) != 2 {
		t.Errorf("out-of-range WithoutExit changed exits: %d", len(got.Exits))
	}
}

func TestWithPricesKeepsDirectionWhenEqual(t *testing.T) {
	d := baseDraft().WithDirection(models.DirectionShort)
	d = d.WithPrices("95", "95")
	if d.Direction != models.DirectionShort {
		t.Errorf("Direction = %q, want SHORT kept while prices are equal", d.Direction)
	}

	d = d.WithPrices("95", "96")
	if d.Direction != models.DirectionShort {
		t.Errorf("Direction = %q, want SHORT", d.Direction)
	}
	d = d.WithPrices("97", "96")
	if d.Direction != models.DirectionLong {
		t.Errorf("Direction = %q, want LONG", d.Direction)
	}
}

func TestDistributeExits(t *testing.T) {
	d := TradeDraft{TotalPositionSize: "5"}.
		WithExit(ExitRow{Price: "110", Label: "TP1"}).
		DistributeExits(3)

	want := []string{"1.66", "1.66", "1.68"}
	if len(d.Exits) != len(want) {
		t.Fatalf("got %d exits, want %d", len(d.Exits), len(want))
	}
	for i, row := range d.Exits {
		if row.Volume != want[i] {
			t.Errorf("exit %d volume = %q, want %q", i, row.Volume, want[i])
		}
	}
	if d.Exits[0].Price != "110" || d.Exits[0].Label != "TP1" {
		t.Errorf("first exit lost its price/label: %+v", d.Exits[0])
	}

	unchanged := TradeDraft{}.DistributeExits(3)
	if len(unchanged.Exits) != 0 {
		t.Errorf("expected no rows without a size, got %d", len(unchanged.Exits))
	}
}

func TestWithExitVolumes(t *testing.T) {
	base := TradeDraft{RiskAmount: "100", TotalPositionSize: "3"}.
		WithPrices("100", "90").
		WithExit(ExitRow{Price: "110", Volume: "1", Label: "TP1"}).
		WithExit(ExitRow{Price: "120", Volume: "1", Label: "TP2"}).
		WithExit(ExitRow{Price: "130", Volume: "1"})

	edited := base.WithExitVolumes([]string{"0.5", "2"})

	want := []string{"0.5", "2", "1"}
	for i, row := range edited.Exits {
		if row.Volume != want[i] {
			t.Errorf("exit %d volume = %q, want %q", i, row.Volume, want[i])
		}
	}
	if edited.Exits[1].Label != "TP2" || edited.Exits[1].Price != "120" {
		t.Errorf("exit 1 lost its price/label: %+v", edited.Exits[1])
	}
	for i, row := range base.Exits {
		if row.Volume != "1" {
			t.Errorf("original exit %d changed to %q", i, row.Volume)
		}
	}

	extra := base.WithExitVolumes([]string{"1", "1", "1", "9"})
	if len(extra.Exits) != 3 {
		t.Errorf("extra volumes added rows: %d", len(extra.Exits))
	}

	assertDecimal(t, "closedVolume", ComputeOutcome(edited).ClosedVolume, "3.5")
	if !ComputeOutcome(edited).IsOverAllocated {
		t.Error("3.5 closed against a size of 3 must be over-allocated")
	}
}

func summariesIdentical(a, b Summary) bool {
	return a.Available == b.Available &&
		a.Direction == b.Direction &&
		a.IsOverAllocated == b.IsOverAllocated &&
		a.FillsCounted == b.FillsCounted &&
		a.StopDistance.String() == b.StopDistance.String() &&
		a.ValuePerPriceUnit.String() == b.ValuePerPriceUnit.String() &&
		a.ClosedVolume.String() == b.ClosedVolume.String() &&
		a.RealizedPnl.String() == b.RealizedPnl.String() &&
		a.Commission.String() == b.Commission.String() &&
		a.NetPnl.String() == b.NetPnl.String() &&
		a.RMultiple.String() == b.RMultiple.String()
}
