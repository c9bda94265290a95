package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./coleta-domiciliar.db"

	// DefaultTimezone is where the collection schedules are kept
	DefaultTimezone = "America/Sao_Paulo"

	DefaultLLMModel = "gpt-4o-mini"
)
