package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/parquetread"
)

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"setores.csv":      FormatCSV,
		"SETORES.JSON":     FormatJSON,
		"setores.parquet":  FormatParquet,
		"setores.txt":      FormatAuto,
		"setores":          FormatAuto,
		"exports/a.b.json": FormatJSON,
	}
	for name, want := range tests {
		assert.Equal(t, want, DetectFormat(name), name)
	}
}

func TestFile_CSVSemicolon(t *testing.T) {
	data := []byte(" FKHOSPITAL ;FKSetor;NOME\n1;10;UTI\n\n1;11;Enfermaria, ala B\n")

	p := File("setores.csv", data)
	require.Empty(t, p.ParseErrors)
	assert.Equal(t, FormatCSV, p.Format)
	assert.Equal(t, "utf-8", p.Encoding)
	assert.Equal(t, []string{" FKHOSPITAL ", "FKSetor", "NOME"}, p.RawFields)
	assert.Equal(t, []string{"fkhospital", "fksetor", "nome"}, p.Fields)
	require.Len(t, p.Records, 2)
	assert.Equal(t, Record{"fkhospital": "1", "fksetor": "11", "nome": "Enfermaria, ala B"}, p.Records[1])
	assert.Equal(t, 3, p.ColumnCount())
}

func TestFile_CSVDelimiters(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"comma", "A,B,C\n1,2,3\n"},
		{"tab", "A\tB\tC\n1\t2\t3\n"},
		{"pipe", "A|B|C\n1|2|3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := File("x.csv", []byte(tt.data))
			require.Empty(t, p.ParseErrors)
			assert.Equal(t, []string{"a", "b", "c"}, p.Fields)
			require.Len(t, p.Records, 1)
			assert.Equal(t, "3", p.Records[0]["c"])
		})
	}
}

func TestFile_CSVFieldCountMismatch(t *testing.T) {
	data := []byte("A,B,C\n1,2\n1,2,3,4\n1,2,3\n")

	p := File("x.csv", data)
	require.Len(t, p.ParseErrors, 2)
	assert.Contains(t, p.ParseErrors[0], "CSV: record 1: too few fields")
	assert.Contains(t, p.ParseErrors[1], "CSV: record 2: too many fields")
	require.Len(t, p.Records, 3, "no record is dropped")
	assert.Equal(t, Record{"a": "1", "b": "2"}, p.Records[0])
	assert.Equal(t, Record{"a": "1", "b": "2", "c": "3"}, p.Records[1])
}

func TestFile_CSVSingleColumn(t *testing.T) {
	p := File("x.csv", []byte("NOME\nUTI\n"))
	require.Len(t, p.ParseErrors, 1)
	assert.Contains(t, p.ParseErrors[0], "auto-detect")
	assert.Len(t, p.Records, 1)
}

func TestFile_EmptyCSV(t *testing.T) {
	p := File("x.csv", nil)
	assert.Empty(t, p.ParseErrors)
	assert.Empty(t, p.Records)
	assert.Empty(t, p.Fields)
}

func TestFile_JSONArray(t *testing.T) {
	data := []byte(`[{"FKSETOR": 10, "NOME": "UTI"}, {"NOME": "Enf", "FKHOSPITAL": 1, "FKSETOR": 11.50}]`)

	p := File("setores.json", data)
	require.Empty(t, p.ParseErrors)
	assert.Equal(t, FormatJSON, p.Format)
	assert.Equal(t, RootArray, p.Root)
	assert.Equal(t, []string{"FKSETOR", "NOME", "FKHOSPITAL"}, p.RawFields, "first-seen order")
	require.Len(t, p.Records, 2)
	assert.Equal(t, json.Number("10"), p.Records[0]["fksetor"])
	assert.Equal(t, json.Number("11.50"), p.Records[1]["fksetor"], "literal text kept")
}

func TestFile_JSONObjectData(t *testing.T) {
	p := File("setores.json", []byte(`{"data": [{"FKSETOR": "1"}]}`))
	require.Empty(t, p.ParseErrors)
	assert.Equal(t, RootObjectData, p.Root)
	assert.Len(t, p.Records, 1)
}

func TestFile_JSONUnrecognizedObject(t *testing.T) {
	p := File("setores.json", []byte(`{"meta": "x"}`))
	assert.Equal(t, FormatJSON, p.Format)
	assert.Equal(t, RootObject, p.Root)
	assert.Empty(t, p.Records)
	require.Len(t, p.ParseErrors, 1)
	assert.Contains(t, p.ParseErrors[0], "expected format")
}

func TestFile_JSONNonObjectElement(t *testing.T) {
	p := File("setores.json", []byte(`[{"A": 1}, 2]`))
	assert.Empty(t, p.Records)
	require.Len(t, p.ParseErrors, 1)
	assert.Contains(t, p.ParseErrors[0], "non-object")
}

func TestFile_JSONInvalid(t *testing.T) {
	p := File("setores.json", []byte(`[{"A": 1}`))
	assert.Empty(t, p.Records)
	require.Len(t, p.ParseErrors, 1)
	assert.Contains(t, p.ParseErrors[0], "invalid json")
}

func TestFile_JSONNestedValuesKept(t *testing.T) {
	p := File("x.json", []byte(`[{"A": {"b": 1}, "C": [1, 2]}]`))
	require.Empty(t, p.ParseErrors)
	assert.IsType(t, map[string]any{}, p.Records[0]["a"])
	assert.IsType(t, []any{}, p.Records[0]["c"])
}

func TestFile_CollidingFieldsLastWins(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"setores.json", `[{"NOME": "first", " nome ": "second", "FKSETOR": "1"}]`},
		{"setores.csv", "NOME, nome ,FKSETOR\nfirst,second,1\n"},
	}
	for _, tc := range cases {
		for i := 0; i < 200; i++ {
			p := File(tc.name, []byte(tc.data))
			require.Empty(t, p.ParseErrors, tc.name)
			require.Len(t, p.Records, 1)
			require.Equal(t, "second", p.Records[0]["nome"], "%s attempt %d", tc.name, i)
		}
	}
}

func TestNormalizeRecord_FollowsOrder(t *testing.T) {
	raw := map[string]any{"NOME": "first", "nome": "second", "Nome": "third"}
	for i := 0; i < 200; i++ {
		rec := normalizeRecord([]string{"Nome", "NOME", "nome"}, raw)
		require.Equal(t, Record{"nome": "second"}, rec)
	}

	rec := normalizeRecord([]string{"NOME", "nome"}, map[string]any{"NOME": "kept"})
	assert.Equal(t, Record{"nome": "kept"}, rec, "absent names are skipped")
}

func TestFile_AutoDetect(t *testing.T) {
	j := File("setores.txt", []byte(`[{"A": "1"}]`))
	assert.Equal(t, FormatJSON, j.Format)

	c := File("setores.txt", []byte("A;B\n1;2\n"))
	assert.Equal(t, FormatCSV, c.Format)
	assert.Empty(t, c.Root)
	assert.Empty(t, c.ParseErrors)
	assert.Len(t, c.Records, 1)

	o := File("setores.txt", []byte(`{"meta": "x"}`))
	assert.Equal(t, FormatCSV, o.Format, "unrecognized json falls through to csv")
}

func TestFile_Windows1252(t *testing.T) {
	p := File("setores.csv", []byte("FKSETOR;NOME\n1;Pedi\xe1trica\n"))
	assert.Equal(t, "windows-1252", p.Encoding)
	require.Len(t, p.Records, 1)
	assert.Equal(t, "Pediátrica", p.Records[0]["nome"])
}

func TestFile_UTF16BOM(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("FKSETOR,NOME\n1,UTI\n"))
	require.NoError(t, err)

	p := File("setores.csv", data)
	assert.Equal(t, "utf-16le", p.Encoding)
	assert.Equal(t, []string{"fksetor", "nome"}, p.Fields)
	require.Len(t, p.Records, 1)
}

func TestFile_UTF8BOM(t *testing.T) {
	p := File("setores.csv", append([]byte{0xEF, 0xBB, 0xBF}, "FKSETOR,NOME\n1,UTI\n"...))
	assert.Equal(t, "utf-8-bom", p.Encoding)
	assert.Equal(t, []string{"FKSETOR", "NOME"}, p.RawFields)
}

func TestFile_Parquet(t *testing.T) {
	var buf bytes.Buffer
	err := parquetread.WriteTable(&buf, []string{"FKSETOR", "NOME"}, []map[string]string{
		{"FKSETOR": "10", "NOME": "UTI"},
		{"FKSETOR": "11"},
	})
	require.NoError(t, err)

	for _, name := range []string{"setores.parquet", "setores.bin"} {
		p := File(name, buf.Bytes())
		require.Empty(t, p.ParseErrors, name)
		assert.Equal(t, FormatParquet, p.Format)
		assert.Equal(t, []string{"fksetor", "nome"}, p.Fields)
		require.Len(t, p.Records, 2)
		assert.Equal(t, "UTI", p.Records[0]["nome"])
		assert.NotContains(t, p.Records[1], "nome")
	}
}

func TestFile_ParquetCorrupt(t *testing.T) {
	p := File("setores.parquet", []byte("PAR1 definitely not parquet"))
	assert.Empty(t, p.Records)
	require.Len(t, p.ParseErrors, 1)
}

func TestAll(t *testing.T) {
	inputs := []Input{
		{Category: model.Sectors, FileName: "setores.csv", Data: []byte("FKSETOR,NOME\n1,UTI\n")},
		{Category: model.Units, FileName: "unidades.json", Data: []byte(`[{"FKUNIDADEMEDIDA": "mg"}]`)},
		{Category: model.Frequency, FileName: "freq.json", Data: []byte(`{"meta": 1}`)},
	}

	got, err := All(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "setores.csv", got[model.Sectors].FileName)
	assert.Len(t, got[model.Units].Records, 1)
	assert.NotEmpty(t, got[model.Frequency].ParseErrors)
}

func TestAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := All(ctx, []Input{{Category: model.Sectors, FileName: "a.csv"}})
	require.ErrorIs(t, err, context.Canceled)
}
