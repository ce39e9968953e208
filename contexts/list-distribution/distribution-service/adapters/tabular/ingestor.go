package tabular

import (
	"agentdesk/contexts/list-distribution/distribution-service/domain/entities"
	domainerrors "agentdesk/contexts/list-distribution/distribution-service/domain/errors"
	"agentdesk/contexts/list-distribution/distribution-service/domain/services"
	"agentdesk/contexts/list-distribution/distribution-service/ports"
)

// Ingestor turns an uploaded file into validated contact records.
type Ingestor struct {
	Decoder Decoder
}

// Parse fails with ErrUnsupportedFileType, ErrParseFailure or ErrEmptyResult;
// on success the records are non-empty and in source order.
func (i Ingestor) Parse(fileName string, data []byte) ([]entities.ContactRecord, error) {
	fileType, err := services.DetectFileType(fileName)
	if err != nil {
		return nil, err
	}
	source, err := i.Decoder.Decode(fileType, data)
	if err != nil {
		return nil, err
	}
	records := services.NormalizeTable(source)
	if len(records) == 0 {
		return nil, domainerrors.ErrEmptyResult
	}
	return records, nil
}

var _ ports.ContactIngestor = Ingestor{}
