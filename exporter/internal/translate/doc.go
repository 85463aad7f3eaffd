// Package translate turns a Homebridge accessory snapshot into Prometheus
// gauges and encodes them as OpenMetrics.
//
// Translate(accessories, prefix) builds a fresh prometheus.Registry on every
// call. Each non-string characteristic becomes one sample of the gauge family
//
//	[prefix_]snake(serviceType)_snake(type){name="snake(serviceName)"}
//
// whose help text is the description of the first characteristic that
// created the family. Characteristics whose format is "string" (any case) are
// skipped; values are coerced with types.Value.Float, so a non-numeric value
// yields 0 rather than an error. When two characteristics map to the same
// family and label, the later one wins.
//
// Encode writes any prometheus.Gatherer in OpenMetrics 1.0.0 text.
package translate
