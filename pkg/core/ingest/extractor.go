package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"market_sizing/pkg/core/facts"
)

// =============================================================================
// TABLE EXTRACTOR - metric/value tables into facts
// =============================================================================

// Most statistics pages publish two-column tables: a metric label on the
// left, a value on the right. ExtractTableFacts walks every table in the
// document and emits a fact per row whose value parses as a number.
func ExtractTableFacts(doc *goquery.Document, category, source string) []*facts.Fact {
	var out []*facts.Fact

	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		table.Find("tr").Each(func(j int, row *goquery.Selection) {
			cells := row.Find("td, th")
			if cells.Length() < 2 {
				return
			}

			label := strings.TrimSpace(cells.Eq(0).Text())
			rawValue := strings.TrimSpace(cells.Eq(1).Text())
			if label == "" || rawValue == "" {
				return
			}

			value, unit, ok := ParseNumericCell(rawValue)
			if !ok {
				return
			}

			f := facts.NewFact(KeyFromLabel(label), category, facts.Num(value))
			f.Unit = unit
			f.Source = source
			f.SourceType = facts.SourceSecondary
			f.Confidence = facts.ConfidenceMedium
			out = append(out, f)
		})
	})

	fmt.Printf("[INGEST] extracted %d facts from %s\n", len(out), source)
	return out
}

var nonKeyChars = regexp.MustCompile(`[^a-z0-9]+`)

// KeyFromLabel normalizes a table label into a fact key.
// "Avg. Price (USD)" -> "avg_price_usd"
func KeyFromLabel(label string) string {
	key := strings.ToLower(label)
	key = nonKeyChars.ReplaceAllString(key, "_")
	return strings.Trim(key, "_")
}

var numericCell = regexp.MustCompile(`^([$€£]?)\s*(-?[\d,]+(?:\.\d+)?)\s*([%a-zA-Z/ ]*)$`)

// ParseNumericCell parses values the way stat pages print them:
// "$1,200", "3.5M", "12%", "4,100 companies". Returns the scaled number,
// a unit string, and whether the cell was numeric at all.
func ParseNumericCell(raw string) (float64, string, bool) {
	m := numericCell.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, "", false
	}

	n, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
	if err != nil {
		return 0, "", false
	}

	currency := m[1]
	suffix := strings.TrimSpace(m[3])

	// Magnitude suffixes: 3.5M, 2B, 120K
	switch strings.ToUpper(suffix) {
	case "K":
		return n * 1e3, currencyUnit(currency), true
	case "M":
		return n * 1e6, currencyUnit(currency), true
	case "B":
		return n * 1e9, currencyUnit(currency), true
	case "T":
		return n * 1e12, currencyUnit(currency), true
	}

	if suffix == "%" {
		return n, "%", true
	}

	unit := suffix
	if currency != "" {
		unit = currencyUnit(currency)
	}
	return n, unit, true
}

func currencyUnit(symbol string) string {
	switch symbol {
	case "$":
		return "USD"
	case "€":
		return "EUR"
	case "£":
		return "GBP"
	default:
		return ""
	}
}
