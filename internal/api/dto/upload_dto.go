package dto

// PreviewRowDTO is one validated row in a preview response
type PreviewRowDTO struct {
	RowNumber int      `json:"row_number"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	IsValid   bool     `json:"is_valid"`
	Errors    []string `json:"errors"`
}

// PreviewResponse is returned by the preview endpoint; nothing is persisted
type PreviewResponse struct {
	TotalRows   int             `json:"total_rows"`
	PreviewRows []PreviewRowDTO `json:"preview_rows"`
	Columns     []string        `json:"columns"`
	HasErrors   bool            `json:"has_errors"`
}

// UploadAcceptedResponse is returned immediately after an upload is accepted;
// row processing happens after the response is sent
type UploadAcceptedResponse struct {
	Message   string `json:"message"`
	UploadID  int64  `json:"upload_id"`
	TotalRows int    `json:"total_rows"`
}

// UploadLogDTO is a read-only view over one upload log record
type UploadLogDTO struct {
	ID             int64   `json:"id"`
	Filename       string  `json:"filename"`
	Status         string  `json:"status"`
	TotalRows      int     `json:"total_rows"`
	SuccessfulRows int     `json:"successful_rows"`
	FailedRows     int     `json:"failed_rows"`
	ErrorMessage   string  `json:"error_message,omitempty"`
	SuccessRate    float64 `json:"success_rate"`
	UploadedAt     string  `json:"uploaded_at"`
}

// UploadProgressResponse is pushed over the WebSocket progress channel
// after each processed row and once at job completion or failure
type UploadProgressResponse struct {
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Successful int     `json:"successful"`
	Failed     int     `json:"failed"`
	Status     string  `json:"status"`
	Error      string  `json:"error,omitempty"`
}

// ChartData holds chart-ready series for the most recent uploads,
// oldest first
type ChartData struct {
	Labels     []string `json:"labels"`
	Successful []int    `json:"successful"`
	Failed     []int    `json:"failed"`
	Dates      []string `json:"dates"`
}

// StatsResponse aggregates upload history counts
type StatsResponse struct {
	TotalUploads    int64     `json:"total_uploads"`
	TotalSuccessful int64     `json:"total_successful"`
	TotalFailed     int64     `json:"total_failed"`
	ChartData       ChartData `json:"chart_data"`
}
