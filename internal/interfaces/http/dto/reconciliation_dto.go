package dto

// ReconcileUploadRequest carries the form fields that accompany the
// settlement file upload. The file itself arrives as multipart field
// "file".
type ReconcileUploadRequest struct {
	Year  int `form:"year" binding:"required,min=2000,max=2100"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

// ParseSummary reports how the settlement file parse went
type ParseSummary struct {
	TotalRows int         `json:"total_rows"`
	GoodRows  int         `json:"good_rows"`
	RowErrors interface{} `json:"row_errors,omitempty"`
}

// ReconcileUploadResponse wraps the reconciliation outcome together
// with the parse summary for the uploaded file
type ReconcileUploadResponse struct {
	Parse  ParseSummary `json:"parse"`
	Result interface{}  `json:"result"`
}

// ReconciliationListRequest represents filters for listing reconciliation batches
type ReconciliationListRequest struct {
	ListRequest
	Year   int    `form:"year" binding:"omitempty,min=2000,max=2100"`
	Status string `form:"status" binding:"omitempty,oneof=IN_PROGRESS COMPLETED POSTED"`
}

// SuspenseListRequest represents filters for listing suspense entries
type SuspenseListRequest struct {
	ListRequest
	Status string `form:"status" binding:"omitempty,oneof=PENDING ALLOCATED REFUNDED WRITTEN_OFF"`
}

// AllocateSuspenseRequest is the body for allocating a suspense entry to a member
type AllocateSuspenseRequest struct {
	MemberID string `json:"member_id" binding:"required,uuid"`
	Notes    string `json:"notes"`
}

// ResolveSuspenseRequest is the body for refunding or writing off a suspense entry
type ResolveSuspenseRequest struct {
	Notes string `json:"notes"`
}
