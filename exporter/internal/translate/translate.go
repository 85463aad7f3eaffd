package translate

import (
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/obsidianstack/homebridge-exporter/pkg/types"
)

// LabelName is the only label carried by translated gauges.
const LabelName = "name"

// formatString is the HAP format of text characteristics, which have no
// numeric reading.
const formatString = "string"

// Translate builds a registry holding one gauge sample per numeric
// characteristic in accessories. An empty input yields an empty registry.
func Translate(accessories []types.Accessory, prefix string) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	families := make(map[string]*prometheus.GaugeVec)
	// Names the registry refused; skipped without logging again.
	rejected := make(map[string]struct{})

	for _, acc := range accessories {
		for _, ch := range acc.ServiceCharacteristics {
			if strings.EqualFold(ch.Format, formatString) {
				continue
			}

			name := qualify(prefix, MetricName(ch.ServiceType, ch.Type))
			if _, bad := rejected[name]; bad {
				continue
			}

			vec, ok := families[name]
			if !ok {
				vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
					Name: name,
					Help: ch.Description,
				}, []string{LabelName})
				if err := reg.Register(vec); err != nil {
					slog.Warn("translate: skipping metric the registry refused",
						"metric", name, "accessory", acc.UniqueID, "err", err)
					rejected[name] = struct{}{}
					continue
				}
				families[name] = vec
			}

			vec.WithLabelValues(SnakeCase(serviceName(acc, ch))).Set(ch.Value.Float())
		}
	}

	return reg
}

// serviceName prefers the characteristic's own service name and falls back
// to the accessory's.
func serviceName(acc types.Accessory, ch types.Characteristic) string {
	if ch.ServiceName != "" {
		return ch.ServiceName
	}
	return acc.ServiceName
}
