// Package backends picks the metrics backend named in the process settings.
package backends

import (
	"fmt"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
	"github.com/Karanpr-18/Excel-cleaning/internal/metrics"
	"github.com/Karanpr-18/Excel-cleaning/internal/metrics/datadog"
	"github.com/Karanpr-18/Excel-cleaning/internal/metrics/prompush"
)

// FromSettings builds the backend selected by s.MetricsBackend. It returns a
// nil Backend for "none" or an empty name; metrics.SetBackend ignores nil.
func FromSettings(s config.Settings, job string) (metrics.Backend, error) {
	switch s.MetricsBackend {
	case "", "none":
		return nil, nil
	case "pushgateway":
		return prompush.NewBackend(job, s.PushgatewayURL)
	case "datadog":
		return datadog.NewBackend(datadog.Config{
			Addr:       s.DatadogAddr,
			Namespace:  "survey_validator.",
			GlobalTags: []string{"job:" + job},
		})
	default:
		return nil, fmt.Errorf("unknown metrics backend %q", s.MetricsBackend)
	}
}
