package models

import "testing"

func TestIntervalRoundTrip(t *testing.T) {
	cases := []struct {
		iv       Interval
		filename string
		wire     string
	}{
		{Daily, "daily.csv", "1D"},
		{Hourly, "1h.csv", "1H"},
		{Minute, "1m.csv", "1m"},
	}
	for _, c := range cases {
		if got := c.iv.Filename(); got != c.filename {
			t.Errorf("Filename() = %q, want %q", got, c.filename)
		}
		if got := c.iv.Wire(); got != c.wire {
			t.Errorf("Wire() = %q, want %q", got, c.wire)
		}
		parsed, err := ParseInterval(c.wire)
		if err != nil {
			t.Fatalf("ParseInterval(%q): %v", c.wire, err)
		}
		if parsed != c.iv {
			t.Errorf("ParseInterval(%q) = %v, want %v", c.wire, parsed, c.iv)
		}
	}
}

func TestParseIntervalUnknown(t *testing.T) {
	if _, err := ParseInterval("bogus"); err == nil {
		t.Fatal("expected error for unknown interval")
	}
}

func TestEnhancedMAFor(t *testing.T) {
	e := &Enhanced{}
	ten := 1.5
	*e.MAFor(10) = &ten
	if e.MA10 == nil || *e.MA10 != 1.5 {
		t.Fatalf("MAFor(10) did not set MA10, got %v", e.MA10)
	}
	if e.MAFor(7) != nil {
		t.Fatalf("MAFor(7) should be nil for unsupported window")
	}
}
