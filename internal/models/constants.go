// Package models contains data types and constants for the Purrfect Ventures guru.
package models

import "strings"

// Endpoints
const (
	// GuruPath is the proxy route that fronts the generative model
	GuruPath = "/api/guru"

	// EndpointGeminiBase is the Generative Language REST API root
	EndpointGeminiBase = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultBaseURL is where the guru proxy is served in local development
	DefaultBaseURL = "http://localhost:3000"
)

// Header names
const (
	HeaderClientKey   = "x-guru-client-key"
	HeaderGeminiKey   = "x-goog-api-key"
	HeaderContentType = "Content-Type"
)

// Model represents a Gemini model name
type Model struct {
	Name string
}

// Available models
var (
	Model25Flash = Model{Name: "gemini-2.5-flash"}
	Model25Pro   = Model{Name: "gemini-2.5-pro"}

	// DefaultModel is the model every feature uses unless configured otherwise
	DefaultModel = Model25Flash
)

// AllModels returns a list of all available models
func AllModels() []Model {
	return []Model{Model25Flash, Model25Pro}
}

// ModelFromName returns a Model by its name, falling back to DefaultModel
func ModelFromName(name string) Model {
	switch strings.TrimSpace(name) {
	case "gemini-2.5-flash", "flash":
		return Model25Flash
	case "gemini-2.5-pro", "pro":
		return Model25Pro
	default:
		return DefaultModel
	}
}

// GuruSystemInstruction is the persona given to the direct backend
const GuruSystemInstruction = "You are the 'Purrfect Business Guru', a world-class expert in the pet industry online business. " +
	"You are savvy, encouraging, and data-driven. You help users refine their cat business ideas, " +
	"marketing strategies, and operational plans. Keep answers concise but high-value."

// GuruGreeting opens every chat
const GuruGreeting = "Hello! I'm your Purrfect Business Guru. Ask me anything about dropshipping, branding, or scaling your cat empire."

// FurballMessage is shown for failures outside the known error taxonomy
const FurballMessage = "Oops! I coughed up a fur ball (Encountered an error). Check your API Key."

// DefaultHeaders returns the headers sent on every JSON request
func DefaultHeaders() map[string]string {
	return map[string]string{
		HeaderContentType: "application/json",
		"Accept":          "application/json, text/plain, */*",
		"User-Agent":      "purrfect/0.1",
	}
}
