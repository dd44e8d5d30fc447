package errors

import (
	"errors"
	"fmt"
)

// upstreamStatus is satisfied by transport errors that carry the remote HTTP status.
type upstreamStatus interface {
	StatusCode() int
	Endpoint() string
}

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UpstreamStatus   int    `json:"upstream_status,omitempty"`
	UpstreamEndpoint string `json:"upstream_endpoint,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var remote upstreamStatus
	if errors.As(err, &remote) {
		d.UpstreamStatus = remote.StatusCode()
		d.UpstreamEndpoint = remote.Endpoint()
	}

	return d
}
