package models

// GuruRequest is the JSON body posted to the guru endpoint
type GuruRequest struct {
	Message string `json:"message"`
}

// GuruResponse is the JSON body returned by the guru endpoint
type GuruResponse struct {
	Reply  string `json:"reply,omitempty"`
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Source is a citation returned with a grounded answer
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// AnalysisResult is the outcome of a competitor analysis query
type AnalysisResult struct {
	Content string   `json:"content"`
	Sources []Source `json:"sources"`
}

// HasSources reports whether the analysis carries citations
func (r *AnalysisResult) HasSources() bool {
	return r != nil && len(r.Sources) > 0
}

// GenerateOutput is the text plus citations produced by one model call
type GenerateOutput struct {
	Text    string
	Sources []Source
}
