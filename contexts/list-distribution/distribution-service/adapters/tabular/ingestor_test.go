package tabular

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
	domainerrors "agentdesk/contexts/list-distribution/distribution-service/domain/errors"

	"github.com/xuri/excelize/v2"
)

func TestParseCSVFiltersAndTrims(t *testing.T) {
	data := []byte("FirstName,Phone,Notes\n" +
		"  Ann ,  +15550001 , call after 5 \n" +
		"Bob,,missing phone\n" +
		",+15550003,missing name\n" +
		"   ,   ,blank after trim\n" +
		"Cara,+15550004\n" +
		"\n" +
		"Dan,+15550005,\"quoted, with comma\"\n")

	records, err := Ingestor{}.Parse("leads.csv", data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := []entities.ContactRecord{
		{FirstName: "Ann", Phone: "+15550001", Notes: "call after 5"},
		{FirstName: "Cara", Phone: "+15550004", Notes: ""},
		{FirstName: "Dan", Phone: "+15550005", Notes: "quoted, with comma"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("expected %+v, got %+v", want, records)
	}
}

func TestParseCSVHeaderCasingVariants(t *testing.T) {
	exact, err := Ingestor{}.Parse("a.csv", []byte("FirstName,Phone,Notes\nAnn,111,x\n"))
	if err != nil {
		t.Fatalf("exact headers failed: %v", err)
	}
	for _, header := range []string{
		"firstname,phone,notes",
		"FIRSTNAME,PHONE,NOTES",
		"FirstName,PHONE,notes",
		"Notes,FirstName,Phone",
	} {
		row := "Ann,111,x"
		if header == "Notes,FirstName,Phone" {
			row = "x,Ann,111"
		}
		got, err := Ingestor{}.Parse("a.csv", []byte(header+"\n"+row+"\n"))
		if err != nil {
			t.Fatalf("%s: parse failed: %v", header, err)
		}
		if !reflect.DeepEqual(got, exact) {
			t.Fatalf("%s: expected %+v, got %+v", header, exact, got)
		}
	}
}

func TestParseCSVMissingNotesColumnDefaultsEmpty(t *testing.T) {
	records, err := Ingestor{}.Parse("a.csv", []byte("Phone,FirstName\n222,Bea\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(records) != 1 || records[0].Notes != "" || records[0].FirstName != "Bea" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestParseCSVFallsBackToLaterHeaderVariant(t *testing.T) {
	records, err := Ingestor{}.Parse("a.csv", []byte("FirstName,firstname,Phone\n,Ann,111\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if records[0].FirstName != "Ann" {
		t.Fatalf("expected fallback to lowercase column, got %+v", records[0])
	}
}

func TestParseCSVStripsByteOrderMark(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("FirstName,Phone\nAnn,111\n")...)
	records, err := Ingestor{}.Parse("bom.csv", data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
}

func TestParseCSVEmptyResult(t *testing.T) {
	inputs := map[string][]byte{
		"empty file":      {},
		"header only":     []byte("FirstName,Phone,Notes\n"),
		"all rows blank":  []byte("FirstName,Phone\n , \nAnn,\n,222\n"),
		"unknown headers": []byte("Name,Mobile\nAnn,111\n"),
	}
	for name, data := range inputs {
		_, err := Ingestor{}.Parse("a.csv", data)
		if !errors.Is(err, domainerrors.ErrEmptyResult) {
			t.Fatalf("%s: expected empty result, got %v", name, err)
		}
	}
}

func TestParseCSVMalformedIsParseFailure(t *testing.T) {
	inputs := [][]byte{
		[]byte("FirstName,Phone\n\"Ann,111\n"),
		[]byte("FirstName,Phone\nAn\"n,111\n"),
	}
	for _, data := range inputs {
		_, err := Ingestor{}.Parse("a.csv", data)
		if !errors.Is(err, domainerrors.ErrParseFailure) {
			t.Fatalf("expected parse failure for %q, got %v", data, err)
		}
	}
}

func TestParseXLSX(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"FIRSTNAME", "PHONE", "NOTES"},
		{"Ann", 15550001, " vip "},
		{"", "15550002", "no name"},
		{},
		{"Bob", "+15550003", ""},
	})

	records, err := Ingestor{}.Parse("contacts.xlsx", data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := []entities.ContactRecord{
		{FirstName: "Ann", Phone: "15550001", Notes: "vip"},
		{FirstName: "Bob", Phone: "+15550003", Notes: ""},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("expected %+v, got %+v", want, records)
	}
}

func TestParseXLSXRendersBooleanCellsAsText(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"FirstName", "Phone", "Notes"},
		{"Ann", "111", true},
		{"Bob", 1, false},
	})
	records, err := Ingestor{}.Parse("contacts.xlsx", data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := []entities.ContactRecord{
		{FirstName: "Ann", Phone: "111", Notes: "true"},
		{FirstName: "Bob", Phone: "1", Notes: "false"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("expected %+v, got %+v", want, records)
	}
}

func TestParseXLS(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "contacts.xls"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	// Row 3 has no records at all, row 4 starts at the phone column and row 5
	// stops before notes; phones in rows 2 and 6 are numeric cells.
	source, err := Decoder{}.Decode(entities.FileTypeXLS, data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !reflect.DeepEqual(source.Header, []string{"firstname", "PHONE", "Notes"}) {
		t.Fatalf("unexpected header: %q", source.Header)
	}
	if len(source.Rows) != 4 {
		t.Fatalf("expected 4 data rows, got %d: %q", len(source.Rows), source.Rows)
	}

	records, err := Ingestor{}.Parse("contacts.xls", data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := []entities.ContactRecord{
		{FirstName: "Ann", Phone: "15550001", Notes: "vip"},
		{FirstName: "Bob", Phone: "+15550003", Notes: ""},
		{FirstName: "Cara", Phone: "442071838750", Notes: "call back"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("expected %+v, got %+v", want, records)
	}
}

func TestParseXLSXDeclaredAsXLS(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"FirstName", "Phone"},
		{"Ann", "111"},
	})
	records, err := Ingestor{}.Parse("renamed.xls", data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
}

func TestParseXLSXWithoutValidRowsIsEmptyResult(t *testing.T) {
	data := buildWorkbook(t, [][]any{{"FirstName", "Phone"}, {"Ann", ""}})
	_, err := Ingestor{}.Parse("contacts.xlsx", data)
	if !errors.Is(err, domainerrors.ErrEmptyResult) {
		t.Fatalf("expected empty result, got %v", err)
	}
}

func TestParseCorruptSpreadsheetIsParseFailure(t *testing.T) {
	inputs := map[string][]byte{
		"truncated zip":  []byte("PK\x03\x04garbage"),
		"truncated ole2": {0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00, 0x01},
		"plain text":     []byte("FirstName,Phone\nAnn,111\n"),
	}
	for name, data := range inputs {
		_, err := Ingestor{}.Parse("broken.xlsx", data)
		if !errors.Is(err, domainerrors.ErrParseFailure) {
			t.Fatalf("%s: expected parse failure, got %v", name, err)
		}
	}
}

func TestTableFromRowsSkipsLeadingBlankRows(t *testing.T) {
	source := tableFromRows([][]string{nil, {"", " "}, {"FirstName", "Phone"}, {"Ann", "1"}, {""}})
	if !reflect.DeepEqual(source.Header, []string{"FirstName", "Phone"}) {
		t.Fatalf("unexpected header: %v", source.Header)
	}
	if len(source.Rows) != 1 {
		t.Fatalf("expected one data row, got %d", len(source.Rows))
	}
}

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	book := excelize.NewFile()
	defer func() { _ = book.Close() }()
	sheet := book.GetSheetName(0)
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		values := row
		if err := book.SetSheetRow(sheet, cell, &values); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := book.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}
