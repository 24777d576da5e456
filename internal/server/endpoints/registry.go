package endpoints

import (
	"github.com/pagelingo/pagelingo/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&StatusEndpoint{},

		// Document endpoints
		&IngestEndpoint{},
		&ListPagesEndpoint{},
		&GetPageEndpoint{},

		// Translation endpoints
		&TranslateEndpoint{},
		&RetryPageEndpoint{},
		&RetryEvaluationEndpoint{},

		// Usage and export endpoints
		&UsageEndpoint{},
		&ExportEndpoint{},

		// Project endpoints
		&ListProjectsEndpoint{},
		&SaveProjectEndpoint{},
		&LoadProjectEndpoint{},

		// Config endpoint
		&GetConfigEndpoint{},
	}
}
