package services

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
)

var exportHeader = []string{"AgentID", "Agent", "FirstName", "Phone", "Notes"}

// FlattenBatch lists every assigned contact in share order.
func FlattenBatch(batch entities.DistributionBatch) []entities.ExportRow {
	rows := make([]entities.ExportRow, 0, batch.AssignedCount())
	for _, share := range batch.Shares {
		for _, record := range share.Records {
			rows = append(rows, entities.ExportRow{
				WorkerID:          share.WorkerID,
				WorkerDisplayName: share.WorkerDisplayName,
				Record:            record,
			})
		}
	}
	return rows
}

// GroupRows rebuilds shares from flattened rows, keyed by worker id in order of
// first appearance. Record order within a worker is preserved.
func GroupRows(rows []entities.ExportRow) []entities.Share {
	index := make(map[string]int)
	shares := make([]entities.Share, 0)
	for _, row := range rows {
		pos, ok := index[row.WorkerID]
		if !ok {
			pos = len(shares)
			index[row.WorkerID] = pos
			shares = append(shares, entities.Share{
				WorkerID:          row.WorkerID,
				WorkerDisplayName: row.WorkerDisplayName,
				Records:           make([]entities.ContactRecord, 0),
			})
		}
		shares[pos].Records = append(shares[pos].Records, row.Record)
	}
	return shares
}

// WriteExportCSV encodes flattened rows with a header line.
func WriteExportCSV(w io.Writer, rows []entities.ExportRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.WorkerID,
			row.WorkerDisplayName,
			row.Record.FirstName,
			row.Record.Phone,
			row.Record.Notes,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportFileName derives the download name from the uploaded file name.
func ExportFileName(sourceName string) string {
	base := filepath.Base(strings.TrimSpace(sourceName))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "list"
	}
	return base + "_distributed.csv"
}
