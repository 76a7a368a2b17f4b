package backends

import (
	"testing"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
	"github.com/Karanpr-18/Excel-cleaning/internal/metrics/datadog"
	"github.com/Karanpr-18/Excel-cleaning/internal/metrics/prompush"
)

func TestFromSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		s       config.Settings
		check   func(any) bool
		wantErr bool
	}{
		{"none", config.Settings{MetricsBackend: "none"}, func(b any) bool { return b == nil }, false},
		{"empty", config.Settings{}, func(b any) bool { return b == nil }, false},
		{"pushgateway", config.Settings{MetricsBackend: "pushgateway", PushgatewayURL: "http://pg:9091"}, func(b any) bool {
			_, ok := b.(*prompush.Backend)
			return ok
		}, false},
		{"pushgateway without url", config.Settings{MetricsBackend: "pushgateway"}, nil, true},
		{"datadog", config.Settings{MetricsBackend: "datadog", DatadogAddr: "127.0.0.1:8125"}, func(b any) bool {
			_, ok := b.(*datadog.Backend)
			return ok
		}, false},
		{"unknown", config.Settings{MetricsBackend: "graphite"}, nil, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := FromSettings(tt.s, "test")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("FromSettings: %v", err)
			}
			var got any
			if b != nil {
				got = b
			}
			if !tt.check(got) {
				t.Fatalf("backend = %T", b)
			}
		})
	}
}
