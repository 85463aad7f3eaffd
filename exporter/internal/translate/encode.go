package translate

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Format is the exposition format written by Encode.
var Format = expfmt.NewFormat(expfmt.TypeOpenMetrics)

// ContentType is the Content-Type header value matching Format:
// application/openmetrics-text; version=1.0.0; charset=utf-8.
var ContentType = string(Format)

// Encode gathers g and writes it to w as OpenMetrics text, terminated by the
// "# EOF" marker.
func Encode(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("translate: gather: %w", err)
	}

	enc := expfmt.NewEncoder(w, Format)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("translate: encode %q: %w", mf.GetName(), err)
		}
	}
	if closer, ok := enc.(expfmt.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("translate: close encoder: %w", err)
		}
	}
	return nil
}
