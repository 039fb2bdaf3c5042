package yamoney

import (
	"encoding/json"
)

// Envelope is a decoded response: either a payload or the error description
// the API answered with.
type Envelope[T any] struct {
	Payload     *T
	Description string
	rejected    bool
}

// Rejected reports whether the body carried an "error" field.
func (e Envelope[T]) Rejected() bool {
	return e.rejected
}

// Result converts the envelope into the payload or a remote rejection.
func (e Envelope[T]) Result() (*T, error) {
	if e.rejected {
		return nil, remoteError("", e.Description)
	}
	return e.Payload, nil
}

type errorShape struct {
	Error *string `json:"error"`
}

// DecodeEnvelope parses body as an error shape or a T. The only error it
// returns is a parse failure; remote rejections are reported by Result.
func DecodeEnvelope[T any](body []byte) (Envelope[T], error) {
	var probe errorShape
	if err := json.Unmarshal(body, &probe); err != nil {
		return Envelope[T]{}, parseError("", err)
	}
	if probe.Error != nil {
		return Envelope[T]{Description: *probe.Error, rejected: true}, nil
	}

	payload := new(T)
	if err := json.Unmarshal(body, payload); err != nil {
		return Envelope[T]{}, parseError("", err)
	}
	return Envelope[T]{Payload: payload}, nil
}
