package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
	domainerrors "agentdesk/contexts/list-distribution/distribution-service/domain/errors"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Decoder reads csv, xlsx and legacy xls payloads into a header plus rows.
type Decoder struct{}

func (Decoder) Decode(fileType entities.FileType, data []byte) (entities.Table, error) {
	switch {
	case fileType == entities.FileTypeCSV:
		return readDelimited(data)
	case fileType.Spreadsheet():
		return readWorkbook(data)
	default:
		return entities.Table{}, fmt.Errorf("%w: %q", domainerrors.ErrUnsupportedFileType, fileType)
	}
}

func readDelimited(data []byte) (entities.Table, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return entities.Table{}, nil
	}
	if err != nil {
		return entities.Table{}, fmt.Errorf("%w: %v", domainerrors.ErrParseFailure, err)
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return entities.Table{}, fmt.Errorf("%w: %v", domainerrors.ErrParseFailure, err)
	}
	return entities.Table{Header: header, Rows: rows}, nil
}

// readWorkbook sniffs the container instead of trusting the extension:
// .xls uploads are frequently xlsx files renamed, and the other way round.
func readWorkbook(data []byte) (entities.Table, error) {
	switch {
	case len(data) == 0:
		return entities.Table{}, nil
	case bytes.HasPrefix(data, zipMagic):
		return readXLSX(data)
	case bytes.HasPrefix(data, ole2Magic):
		return readXLS(data)
	default:
		return entities.Table{}, fmt.Errorf("%w: unrecognized spreadsheet container", domainerrors.ErrParseFailure)
	}
}

func readXLSX(data []byte) (entities.Table, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return entities.Table{}, fmt.Errorf("%w: %v", domainerrors.ErrParseFailure, err)
	}
	defer func() { _ = book.Close() }()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return entities.Table{}, nil
	}
	rows, err := book.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return entities.Table{}, fmt.Errorf("%w: %v", domainerrors.ErrParseFailure, err)
	}
	if err := renderBooleans(book, sheets[0], rows); err != nil {
		return entities.Table{}, fmt.Errorf("%w: %v", domainerrors.ErrParseFailure, err)
	}
	return tableFromRows(rows), nil
}

// renderBooleans rewrites boolean cells, which raw values report as 1/0, to true/false.
func renderBooleans(book *excelize.File, sheet string, rows [][]string) error {
	for r, row := range rows {
		for c, value := range row {
			if value != "0" && value != "1" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			cellType, err := book.GetCellType(sheet, cell)
			if err != nil {
				return err
			}
			if cellType == excelize.CellTypeBool {
				row[c] = strconv.FormatBool(value == "1")
			}
		}
	}
	return nil
}

func readXLS(data []byte) (result entities.Table, err error) {
	// The BIFF reader panics on truncated records instead of returning errors.
	defer func() {
		if recovered := recover(); recovered != nil {
			result = entities.Table{}
			err = fmt.Errorf("%w: corrupt workbook: %v", domainerrors.ErrParseFailure, recovered)
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return entities.Table{}, fmt.Errorf("%w: %v", domainerrors.ErrParseFailure, err)
	}
	if book == nil {
		return entities.Table{}, fmt.Errorf("%w: workbook stream not found", domainerrors.ErrParseFailure)
	}
	if book.NumSheets() == 0 {
		return entities.Table{}, nil
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return entities.Table{}, nil
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		last := row.LastCol()
		if last <= 0 {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, last)
		for j := max(row.FirstCol(), 0); j < last; j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return tableFromRows(rows), nil
}

// sheetRow returns nil for row indexes without records; WorkSheet.Row
// dereferences the missing entry instead.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// tableFromRows uses the first non-blank row as header and drops blank data rows.
func tableFromRows(rows [][]string) entities.Table {
	headerAt := -1
	for i, row := range rows {
		if !blankRow(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return entities.Table{}
	}

	data := make([][]string, 0, len(rows)-headerAt-1)
	for _, row := range rows[headerAt+1:] {
		if blankRow(row) {
			continue
		}
		data = append(data, row)
	}
	return entities.Table{Header: rows[headerAt], Rows: data}
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
