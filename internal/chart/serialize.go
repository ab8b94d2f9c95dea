package chart

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"

	"dataviz/internal/errors"
)

// Serialize encodes spec as a Plotly figure document. It never fails outward:
// on any encoding error it returns {"error": "<message>"} instead.
func Serialize(spec *Spec) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = errorDocument(errors.SerializationError(fmt.Errorf("%v", r)))
		}
	}()

	if spec == nil {
		return errorDocument(errors.SerializationError(stderrors.New("no chart to serialize")))
	}

	raw, err := json.Marshal(spec.Figure())
	if err != nil {
		return errorDocument(errors.SerializationError(err))
	}
	return string(raw)
}

func errorDocument(err error) string {
	slog.Error("chart serialization failed", "component", "chart", "error", err)
	raw, mErr := json.Marshal(map[string]string{"error": err.Error()})
	if mErr != nil {
		return `{"error":"serialization failed"}`
	}
	return string(raw)
}
