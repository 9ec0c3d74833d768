package models

// MissingURLMessage is returned with 400 when /detect is called without ?url=.
const MissingURLMessage = "No URL provided. Please add ?url=... to the request."

// DetectRequest is bound from the query string of GET /detect.
type DetectRequest struct {
	// URL is the store page to inspect. Only checked for non-emptiness.
	URL string `form:"url"`
}

// DetectResponse is the body of every completed detection attempt.
// Found, not-found and failure outcomes all share this shape; callers
// distinguish them by the message text.
type DetectResponse struct {
	Result string `json:"result"`
}

// ErrorResponse is the body of a rejected request.
type ErrorResponse struct {
	Error string `json:"error"`
}
