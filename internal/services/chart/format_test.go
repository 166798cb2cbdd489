package chart

import "testing"

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{105, "$105.00"},
		{1234.5, "$1,234.50"},
		{98765.4321, "$98,765.43"},
		{0.5, "$0.50"},
		{0.00001234, "$0.000012"},
		{0.1234567, "$0.123457"},
		{-12.5, "-$12.50"},
		{0, "$0.00"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%v): want %s got %s", tt.in, tt.want, got)
		}
	}
}

func TestFormatTick(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{65000, "$65k"},
		{1500, "$1.5k"},
		{1234567, "$1,234.567k"},
		{999, "$999"},
		{0.25, "$0.25"},
		{0.00001, "$0"},
	}
	for _, tt := range tests {
		if got := FormatTick(tt.in); got != tt.want {
			t.Errorf("FormatTick(%v): want %s got %s", tt.in, tt.want, got)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(4); got != "4.00" {
		t.Fatalf("want 4.00 got %s", got)
	}
	if got := FormatPercent(-3.96); got != "-3.96" {
		t.Fatalf("want -3.96 got %s", got)
	}
}

func TestTooltipLabel(t *testing.T) {
	v := 1234.5
	if got := TooltipLabel(LabelPredicted, &v); got != "Predicted Price: $1,234.50" {
		t.Fatalf("unexpected %q", got)
	}
	if got := TooltipLabel(LabelHistorical, nil); got != "Historical Price: " {
		t.Fatalf("unexpected %q", got)
	}
}

func TestFormatDates(t *testing.T) {
	if got := FormatTooltipDate("2025-02-14"); got != "Feb 14, 2025" {
		t.Fatalf("tooltip date %q", got)
	}
	if got := FormatTickDate("2025-02-14"); got != "Feb 14" {
		t.Fatalf("tick date %q", got)
	}
	if got := FormatExpectedDate("2025-02-14"); got != "2/14/2025" {
		t.Fatalf("expected-on date %q", got)
	}
}
