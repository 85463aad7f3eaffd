package translate

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// SnakeCase converts a hub identifier ("CurrentTemperature", "Living Room")
// to snake case and replaces anything outside [a-zA-Z0-9_] with '_', so the
// result can be embedded in a metric name.
func SnakeCase(s string) string {
	snake := strcase.ToSnake(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, snake)
}

// MetricName derives the unprefixed family name of a characteristic:
// MetricName("Lightbulb", "On") == "lightbulb_on".
func MetricName(serviceType, characteristicType string) string {
	return SnakeCase(serviceType) + "_" + SnakeCase(characteristicType)
}

// qualify joins prefix and name the way a prefixed registry would.
func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}
