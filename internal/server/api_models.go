package server

// SubmitScanResponse carries the id of a scan awaiting confirmation.
type SubmitScanResponse struct {
	ID string `json:"id" example:"k3v9x0q2ab"`
}

// ConfirmScanResponse is returned once the workflow webhook accepted the job.
type ConfirmScanResponse struct {
	Status string `json:"status" example:"ok"`
	ID     string `json:"id" example:"k3v9x0q2ab"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// ErrorResponse is a uniform error payload returned by the API. ErrorID is
// logged next to the underlying cause.
type ErrorResponse struct {
	ErrorID string `json:"error_id" example:"6f1c2f7e-8a43-4c55-9b0e-0d7f3b5e2a10"`
	Message string `json:"message" example:"Internal Server Error"`
}
