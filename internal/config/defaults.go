package config

import "time"

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	DefaultServerAddr            = ":8080"
	DefaultServerReadTimeout     = 30 * time.Second
	DefaultServerWriteTimeout    = 60 * time.Second
	DefaultServerShutdownTimeout = 10 * time.Second

	DefaultDBPath            = "chatscope.db"
	DefaultDBMaxOpenConns    = 1 // modernc sqlite allows a single writer
	DefaultDBMaxIdleConns    = 1
	DefaultDBConnMaxLifetime = time.Hour

	DefaultUploadsDir           = "uploads"
	DefaultUploadsMaxSizeBytes  = 32 << 20
	DefaultUploadsRetention     = 30 * 24 * time.Hour
	DefaultUploadsAllowedSuffix = ".txt"

	DefaultAIModel       = "gemini-2.0-flash"
	DefaultAITemperature = 1.0
	DefaultAITimeout     = 2 * time.Minute
	DefaultAIMaxRetries  = 3
	DefaultAIHistorySize = 50

	DefaultAnalysisMinWordLength = 2
	DefaultAnalysisTopWords      = 50
	DefaultAnalysisContextSize   = 10

	DefaultSchedulerUploadPruneInterval = time.Hour
	DefaultSchedulerSQLMaintenanceCron  = "0 4 * * *"
)

// DefaultServerAllowedOrigins permits the local dev frontend.
var DefaultServerAllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
