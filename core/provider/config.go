package provider

// Config holds configuration for the remote catalog provider client.
type Config struct {
	// Name identifies the provider; it keys cursors and provider ids locally.
	Name string `mapstructure:"name" default:"cardcatalog"`
	// Endpoint is the base URL of the catalog API.
	Endpoint string `mapstructure:"endpoint" default:"https://api.cardcatalog.example/v2"`
	// ApiKey is the credential sent with every request.
	ApiKey string `mapstructure:"api_key" default:""`
	// Scope is the provider region scope being synced (e.g. "en", "jp").
	// The matcher uses it for the out-of-scope heuristic.
	Scope string `mapstructure:"scope" default:"en"`
	// TimeoutSeconds is the hard per-attempt HTTP timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"20"`
	// Retries is the maximum number of retry attempts after the first try.
	Retries int `mapstructure:"retries" default:"4"`
	// BaseDelayMS is the initial backoff delay in milliseconds.
	BaseDelayMS int `mapstructure:"base_delay_ms" default:"500"`
	// MaxDelayMS caps the backoff delay in milliseconds.
	MaxDelayMS int `mapstructure:"max_delay_ms" default:"15000"`
	// RequestsPerSecond is the token bucket refill rate for outbound calls.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"5"`
	// Burst is the token bucket capacity.
	Burst int `mapstructure:"burst" default:"10"`
	// PageSize is the page size requested from list endpoints.
	PageSize int `mapstructure:"page_size" default:"100"`
}
