package ingest

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"market_sizing/pkg/core/facts"
)

func TestParseNumericCell(t *testing.T) {
	cases := []struct {
		raw   string
		value float64
		unit  string
		ok    bool
	}{
		{"$1,200", 1200, "USD", true},
		{"3.5M", 3.5e6, "", true},
		{"$2B", 2e9, "USD", true},
		{"12%", 12, "%", true},
		{"4,100 companies", 4100, "companies", true},
		{"120K", 120000, "", true},
		{"-3.2", -3.2, "", true},
		{"€45", 45, "EUR", true},
		{"n/a", 0, "", false},
		{"", 0, "", false},
		{"see note 4", 0, "", false},
	}

	for _, tc := range cases {
		value, unit, ok := ParseNumericCell(tc.raw)
		if ok != tc.ok {
			t.Errorf("ParseNumericCell(%q) ok = %v, want %v", tc.raw, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		if value != tc.value {
			t.Errorf("ParseNumericCell(%q) value = %g, want %g", tc.raw, value, tc.value)
		}
		if unit != tc.unit {
			t.Errorf("ParseNumericCell(%q) unit = %q, want %q", tc.raw, unit, tc.unit)
		}
	}
}

func TestKeyFromLabel(t *testing.T) {
	cases := map[string]string{
		"Avg. Price (USD)":       "avg_price_usd",
		"Total Potential Buyers": "total_potential_buyers",
		"  Market Maturity ":     "market_maturity",
	}
	for label, want := range cases {
		if got := KeyFromLabel(label); got != want {
			t.Errorf("KeyFromLabel(%q) = %q, want %q", label, got, want)
		}
	}
}

const statsPage = `
<html><body>
<h2>Dental Software Market</h2>
<table>
  <tr><th>Metric</th><th>Value</th></tr>
  <tr><td>Avg. Price</td><td>$1,200</td></tr>
  <tr><td>Total Addressable Market</td><td>$2B</td></tr>
  <tr><td>Annual Growth</td><td>8%</td></tr>
  <tr><td>Outlook</td><td>uncertain</td></tr>
</table>
</body></html>`

func TestExtractTableFacts(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(statsPage))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}

	got := ExtractTableFacts(doc, "macro", "https://stats.example.com/dental")

	// Header row parses no number; "uncertain" row is non-numeric.
	if len(got) != 3 {
		t.Fatalf("expected 3 facts, got %d", len(got))
	}

	byKey := map[string]*facts.Fact{}
	for _, f := range got {
		byKey[f.Key] = f
	}

	tam, ok := byKey["total_addressable_market"]
	if !ok {
		t.Fatal("missing total_addressable_market fact")
	}
	if n, _ := tam.Value.AsNumber(); n != 2e9 {
		t.Errorf("TAM = %g, want 2e9", n)
	}
	if tam.Unit != "USD" {
		t.Errorf("TAM unit = %q, want USD", tam.Unit)
	}
	if tam.Category != "macro" {
		t.Errorf("TAM category = %q, want macro", tam.Category)
	}
	if tam.SourceType != facts.SourceSecondary {
		t.Errorf("scraped facts should be SECONDARY, got %s", tam.SourceType)
	}

	if growth, ok := byKey["annual_growth"]; !ok {
		t.Error("missing annual_growth fact")
	} else if growth.Unit != "%" {
		t.Errorf("growth unit = %q, want %%", growth.Unit)
	}
}
