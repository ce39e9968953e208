package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ContactDTO struct {
	FirstName string `json:"first_name"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
}

type ShareDTO struct {
	AgentID     string       `json:"agent_id"`
	AgentName   string       `json:"agent_name"`
	RecordCount int          `json:"record_count"`
	Items       []ContactDTO `json:"items"`
}

type BatchDTO struct {
	BatchID    string     `json:"batch_id"`
	FileName   string     `json:"file_name"`
	TotalItems int        `json:"total_items"`
	Shares     []ShareDTO `json:"distributions"`
	CreatedAt  string     `json:"created_at"`
}

type UploadListResponse struct {
	Message string   `json:"message"`
	Batch   BatchDTO `json:"batch"`
}

type PaginationDTO struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type ListBatchesResponse struct {
	Items      []BatchDTO    `json:"items"`
	Pagination PaginationDTO `json:"pagination"`
}

type GetBatchResponse struct {
	Batch BatchDTO `json:"batch"`
}

type ExportBatchResponse struct {
	FileName string
	Content  []byte
	RowCount int
}

type DashboardSummaryResponse struct {
	AgentCount int `json:"agent_count"`
	BatchCount int `json:"batch_count"`
}
