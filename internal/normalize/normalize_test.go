package normalize

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/gyeh/noharmcheck/internal/model"
)

func TestFieldName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"FKSETOR", "fksetor"},
		{"  Nome ", "nome"},
		{"\tDTPRESCRICAO\r", "dtprescricao"},
		{"perIodo_TOTAL", "periodo_total"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := FieldName(tt.input)
			if got != tt.expected {
				t.Errorf("FieldName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
			if again := FieldName(got); again != got {
				t.Errorf("FieldName not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestIsNumber(t *testing.T) {
	tests := []struct {
		value any
		want  bool
	}{
		{"10", true},
		{"1,5", true},
		{" 2.75 ", true},
		{"1e3", true},
		{"-4", true},
		{"", true},
		{nil, true},
		{json.Number("12.5"), true},
		{int64(7), true},
		{"abc", false},
		{"1,234,5", false},
		{"Infinity", false},
		{"NaN", false},
		{"0x1p3", false},
		{"-0X10", false},
		{"1_000", false},
		{"true", false},
		{true, true},
		{false, true},
	}

	for _, tt := range tests {
		if got := IsNumber(tt.value); got != tt.want {
			t.Errorf("IsNumber(%#v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestIsDate(t *testing.T) {
	valid := []string{
		"2024-01-15",
		"2024-01-15T10:30",
		"2024-01-15T10:30:00",
		"2024-01-15T10:30:00.123",
		"2024-01-15T10:30:00Z",
		"2024-01-15T10:30:00-03:00",
		"2024-01-15 10:30",
		"2024-01-15 10:30:00",
		"2024/01/15",
		"15/01/2024",
		"5/1/2024",
		"15/01/2024 10:30",
		"15/01/2024 10:30:45",
		"15-01-2024",
		"15.01.2024",
		"",
		"   ",
	}
	for _, s := range valid {
		if !IsDate(s) {
			t.Errorf("IsDate(%q) = false, want true", s)
		}
	}

	invalid := []string{"not a date", "31/02/2024", "13/13/2024", "2024-13-01", "yesterday"}
	for _, s := range invalid {
		if IsDate(s) {
			t.Errorf("IsDate(%q) = true, want false", s)
		}
	}
}

func TestParseDate_DayFirst(t *testing.T) {
	d := ParseDate("03/04/2024")
	if d == nil {
		t.Fatal("expected date")
	}
	if d.Day() != 3 || d.Month() != 4 {
		t.Errorf("expected 3 April, got %s", d.Format("2006-01-02"))
	}
}

func TestIsBoolean(t *testing.T) {
	accepted := []any{"true", "FALSE", "0", "1", "S", "n", "Sim", " NAO ", "não", "", nil, true}
	for _, v := range accepted {
		if !IsBoolean(v) {
			t.Errorf("IsBoolean(%#v) = false, want true", v)
		}
	}
	rejected := []any{"maybe", "yes", "2", "verdadeiro"}
	for _, v := range rejected {
		if IsBoolean(v) {
			t.Errorf("IsBoolean(%#v) = true, want false", v)
		}
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{nil, ""},
		{"ICU", "ICU"},
		{json.Number("10"), "10"},
		{int64(42), "42"},
		{float64(1.5), "1.5"},
		{float64(10), "10"},
		{false, "false"},
	}
	for _, tt := range tests {
		if got := ValueString(tt.value); got != tt.want {
			t.Errorf("ValueString(%#v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestIsNested(t *testing.T) {
	if !IsNested(map[string]any{"a": 1}) || !IsNested([]any{1}) {
		t.Error("expected maps and slices to be nested")
	}
	if IsNested("x") || IsNested(nil) || IsNested(json.Number("1")) {
		t.Error("expected scalars not to be nested")
	}
}

func TestRowHash_Stable(t *testing.T) {
	a := map[string]any{"fksetor": "10", "nome": "ICU", "fkhospital": json.Number("1")}
	b := map[string]any{"nome": "ICU", "fkhospital": "1", "fksetor": "10"}
	if !bytes.Equal(RowHash(a), RowHash(b)) {
		t.Error("expected equal hashes regardless of key order and number representation")
	}
	c := map[string]any{"fksetor": "11", "nome": "ICU", "fkhospital": "1"}
	if bytes.Equal(RowHash(a), RowHash(c)) {
		t.Error("expected different hashes for different content")
	}
}

func TestBatchHash_OrderIndependent(t *testing.T) {
	h1 := BatchHash(map[string]string{"sectors": "aa", "units": "bb"})
	h2 := BatchHash(map[string]string{"units": "bb", "sectors": "aa"})
	if h1 != h2 {
		t.Errorf("batch hash depends on order: %s vs %s", h1, h2)
	}
	if BytesHash([]byte("x")) == BytesHash([]byte("y")) {
		t.Error("expected distinct byte hashes")
	}
}

func TestToStagingRecord(t *testing.T) {
	runID := uuid.New()
	rec := map[string]any{"fksetor": "10", "nome": "ICU"}
	s, err := ToStagingRecord(rec, runID, model.Sectors, "setores.csv", 3)
	if err != nil {
		t.Fatalf("ToStagingRecord: %v", err)
	}
	if s.RunID != runID || s.Category != model.Sectors || s.SourceRowNumber != 3 {
		t.Errorf("unexpected staging record: %+v", s)
	}
	var back map[string]any
	if err := json.Unmarshal(s.Payload, &back); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if back["nome"] != "ICU" {
		t.Errorf("payload lost data: %v", back)
	}
	if len(s.CopyValues()) != len(model.StagingColumns()) {
		t.Error("CopyValues and StagingColumns disagree")
	}
}
