package utils

import (
	"strings"
	"testing"
)

type pricePayload struct {
	Key    string  `json:"key"`
	Number float64 `json:"number"`
}

func TestSmartParseStandardJSON(t *testing.T) {
	var p pricePayload
	out, err := SmartParse(`{"key": "average_price", "number": 49.5}`, &p)
	if err != nil {
		t.Fatalf("SmartParse failed on valid JSON: %v", err)
	}
	if out == "" || p.Number != 49.5 {
		t.Errorf("unexpected parse result: %+v", p)
	}
}

func TestSmartParseRepairsSingleQuotes(t *testing.T) {
	var p pricePayload
	if _, err := SmartParse(`{'key': 'average_price', 'number': 12}`, &p); err != nil {
		t.Fatalf("SmartParse should repair single quotes: %v", err)
	}
	if p.Key != "average_price" || p.Number != 12 {
		t.Errorf("repair produced wrong values: %+v", p)
	}
}

func TestSmartParseFallsBackToHJSON(t *testing.T) {
	var p pricePayload
	input := `{
		# analyst note
		key: average_price
		number: 30
	}`
	if _, err := SmartParse(input, &p); err != nil {
		t.Fatalf("SmartParse should accept hjson: %v", err)
	}
	if p.Number != 30 {
		t.Errorf("hjson parse produced %+v", p)
	}
}

func TestSmartParseGarbageFails(t *testing.T) {
	var p pricePayload
	if _, err := SmartParse("not even close", &p); err == nil {
		t.Fatal("expected failure for unparseable input")
	}
}

func TestValidateJSONRejectsZeroFields(t *testing.T) {
	var p pricePayload
	err := ValidateJSON(`{"key": "average_price"}`, &p)
	if err == nil || !strings.Contains(err.Error(), "Number") {
		t.Fatalf("expected schema violation on zero Number, got %v", err)
	}
}

func TestCleanMarkdownStripsFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```":  `{"a":1}`,
		"```\nplain\n```":           "plain",
		"```markdown\n# Report\n```": "# Report",
		"no fences":                 "no fences",
	}
	for in, want := range cases {
		if got := CleanMarkdown(in); got != want {
			t.Errorf("CleanMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateMarkdown(t *testing.T) {
	if !ValidateMarkdown("# Market Report\n\n- item") {
		t.Error("plain markdown should validate")
	}
}
