package dto

// HealthResponse describes the payload returned by standard /healthz endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// RedirectResponse tells the front end which view to navigate to.
type RedirectResponse struct {
	Redirect string `json:"redirect"`
}
