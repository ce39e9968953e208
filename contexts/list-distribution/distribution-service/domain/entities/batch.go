package entities

import "time"

// Worker is an agent eligible to receive a share.
type Worker struct {
	ID          string
	DisplayName string
	CreatedAt   time.Time
}

// Share is the contiguous slice of records assigned to one worker.
// WorkerDisplayName is captured when the batch is built and never re-derived.
type Share struct {
	WorkerID          string
	WorkerDisplayName string
	Records           []ContactRecord
}

// DistributionBatch is one completed upload, persisted as a unit.
type DistributionBatch struct {
	ID               string
	SourceName       string
	TotalRecordCount int
	Shares           []Share
	CreatedAt        time.Time
}

// AssignedCount sums the records over all shares.
func (b DistributionBatch) AssignedCount() int {
	total := 0
	for _, share := range b.Shares {
		total += len(share.Records)
	}
	return total
}

// ExportRow is a batch flattened to one row per assigned contact.
type ExportRow struct {
	WorkerID          string
	WorkerDisplayName string
	Record            ContactRecord
}

// FileType is the upload discriminator derived from the file extension.
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
	FileTypeXLS  FileType = "xls"
)

// Spreadsheet reports whether the type is read through a workbook parser.
func (t FileType) Spreadsheet() bool {
	return t == FileTypeXLSX || t == FileTypeXLS
}
