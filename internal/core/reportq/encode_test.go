package reportq

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestEncodeText(t *testing.T) {
	res := Result{
		Columns: []string{"År", "Innehållstyp", "Antal"},
		Data: [][]any{
			{int64(2019), "article", int64(4)},
			{int64(2020), nil, int64(12)},
		},
	}
	got := EncodeText(res)
	want := "År\tInnehållstyp\tAntal\n2019\tarticle\t4\n2020\t\t12"
	if got != want {
		t.Fatalf("EncodeText:\n%q\nwant\n%q", got, want)
	}
	if strings.HasSuffix(got, "\n") {
		t.Fatalf("trailing newline")
	}
}

func TestEncodeText_HeaderOnly(t *testing.T) {
	got := EncodeText(Result{Columns: []string{"Year", "Count"}, Data: [][]any{}})
	if got != "Year\tCount" {
		t.Fatalf("got %q", got)
	}
}

func TestEncodeText_RoundTrip(t *testing.T) {
	res := Result{
		Columns: []string{"Year", "Person", "Count"},
		Data: [][]any{
			{int64(2018), "xanna", int64(1)},
			{int64(2018), "xbert", int64(22)},
			{int64(2021), "", int64(3)},
		},
	}
	doc := EncodeText(res)

	lines := strings.Split(doc, "\n")
	if len(lines) != len(res.Data)+1 {
		t.Fatalf("lines: %d", len(lines))
	}
	rebuilt := make([]string, len(lines))
	for i, l := range lines {
		cells := strings.Split(l, "\t")
		if len(cells) != len(res.Columns) {
			t.Fatalf("line %d has %d cells", i, len(cells))
		}
		rebuilt[i] = strings.Join(cells, "\t")
	}
	if strings.Join(rebuilt, "\n") != doc {
		t.Fatalf("round trip changed the document")
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in       string
		want     Format
		filename string
	}{
		{"", FormatStructured, "r.json"},
		{"JSON", FormatStructured, "r.json"},
		{"csv", FormatText, "r.csv"},
		{"text", FormatText, "r.csv"},
		{"xlsx", FormatXLSX, "r.xlsx"},
	}
	for _, tc := range cases {
		f, err := ParseFormat(tc.in)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", tc.in, err)
		}
		if f != tc.want || f.Filename("r") != tc.filename {
			t.Fatalf("ParseFormat(%q) = %q %q", tc.in, f, f.Filename("r"))
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatalf("expected error for pdf")
	}
	if !strings.HasPrefix(FormatText.ContentType(), "text/csv") {
		t.Fatalf("text content type %q", FormatText.ContentType())
	}
}

func TestEncodeXLSX(t *testing.T) {
	res := Result{
		Columns: []string{"Year", "Count"},
		Data:    [][]any{{int64(2020), int64(3)}, {nil, int64(1)}},
	}
	raw, err := EncodeXLSX(res, "Rapport")
	if err != nil {
		t.Fatalf("EncodeXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Rapport")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: %v", rows)
	}
	if rows[0][0] != "Year" || rows[0][1] != "Count" {
		t.Fatalf("header: %v", rows[0])
	}
	if rows[1][0] != "2020" || rows[1][1] != "3" {
		t.Fatalf("first row: %v", rows[1])
	}
	if rows[2][0] != "" || rows[2][1] != "1" {
		t.Fatalf("second row: %v", rows[2])
	}
}
