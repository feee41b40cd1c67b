package adjustment

// Config holds settings for the inventory adjustment sink.
type Config struct {
	// BaseURL is the adjustment API endpoint. Empty disables pushing.
	BaseURL string `mapstructure:"base_url" default:""`
	// ApiKey authenticates against the adjustment API.
	ApiKey string `mapstructure:"api_key" default:""`
	// TimeoutSeconds bounds each HTTP call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxResponseLen caps the error text recorded on a difference row.
	MaxResponseLen int `mapstructure:"max_response_len" default:"140"`
}
