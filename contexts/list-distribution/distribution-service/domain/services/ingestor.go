package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
	domainerrors "agentdesk/contexts/list-distribution/distribution-service/domain/errors"
)

// Accepted header spellings per logical field, in lookup order.
var (
	firstNameHeaders = []string{"FirstName", "firstname", "FIRSTNAME"}
	phoneHeaders     = []string{"Phone", "phone", "PHONE"}
	notesHeaders     = []string{"Notes", "notes", "NOTES"}
)

// DetectFileType maps a file name extension onto an accepted upload type.
func DetectFileType(fileName string) (entities.FileType, error) {
	ext := filepath.Ext(strings.TrimSpace(fileName))
	fileType := entities.FileType(strings.ToLower(strings.TrimPrefix(ext, ".")))
	switch fileType {
	case entities.FileTypeCSV, entities.FileTypeXLSX, entities.FileTypeXLS:
		return fileType, nil
	default:
		return "", fmt.Errorf("%w: %q (accepted: csv, xlsx, xls)", domainerrors.ErrUnsupportedFileType, ext)
	}
}

// NormalizeTable maps decoded rows onto contact records.
// Rows without a first name or phone are dropped; surviving rows keep source order.
func NormalizeTable(source entities.Table) []entities.ContactRecord {
	if len(source.Header) == 0 {
		return nil
	}
	cols := columns{
		firstName: locateColumns(source.Header, firstNameHeaders),
		phone:     locateColumns(source.Header, phoneHeaders),
		notes:     locateColumns(source.Header, notesHeaders),
	}

	records := make([]entities.ContactRecord, 0, len(source.Rows))
	for _, row := range source.Rows {
		record := entities.ContactRecord{
			FirstName: pickValue(row, cols.firstName),
			Phone:     pickValue(row, cols.phone),
			Notes:     pickValue(row, cols.notes),
		}
		if !record.Valid() {
			continue
		}
		records = append(records, record)
	}
	return records
}

type columns struct {
	firstName []int
	phone     []int
	notes     []int
}

// locateColumns returns the column index of every candidate present in the header,
// ordered like candidates. Duplicate header names resolve to their first occurrence.
func locateColumns(header []string, candidates []string) []int {
	positions := make([]int, 0, len(candidates))
	for _, candidate := range candidates {
		for i, name := range header {
			if strings.TrimSpace(name) == candidate {
				positions = append(positions, i)
				break
			}
		}
	}
	return positions
}

// pickValue takes the first non-empty cell among positions, trimmed.
func pickValue(row []string, positions []int) string {
	for _, pos := range positions {
		if pos < len(row) && row[pos] != "" {
			return strings.TrimSpace(row[pos])
		}
	}
	return ""
}
