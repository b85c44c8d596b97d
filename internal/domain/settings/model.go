package settings

// DefaultModel is used until the user picks another one.
const DefaultModel = "gemini-2.5-flash"

// AISettings controls whether AI features run and which model backs
// them.
type AISettings struct {
	Enabled bool   `json:"enabled"`
	Model   string `json:"model"`
}

// Default returns the settings used before any user choice.
func Default() AISettings {
	return AISettings{Enabled: true, Model: DefaultModel}
}
