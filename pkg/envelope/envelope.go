// Package envelope builds the JSON result document a tool prints with -J.
package envelope

import (
	"errors"
	"time"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// DefaultErrorCode is used for errors that don't carry their own code.
const DefaultErrorCode = "error"

type Envelope struct {
	Status  Status                 `json:"status"`
	Result  map[string]interface{} `json:"result,omitempty"`
	Error   *ErrorInfo             `json:"error,omitempty"`
	Metrics *Metrics               `json:"metrics,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Metrics struct {
	Tool       string    `json:"tool"`
	DurationMs int64     `json:"duration_ms"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

// Coder is implemented by errors that classify themselves for the envelope.
type Coder interface {
	ErrorCode() string
}

// CodeOf returns the code of the first error in err's chain implementing
// Coder, or DefaultErrorCode.
func CodeOf(err error) string {
	var c Coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return DefaultErrorCode
}

// Builder pattern
type Builder struct {
	env *Envelope
}

func New() *Builder {
	return &Builder{env: &Envelope{Result: make(map[string]interface{})}}
}

func (b *Builder) metrics() *Metrics {
	if b.env.Metrics == nil {
		b.env.Metrics = &Metrics{}
	}
	return b.env.Metrics
}

func (b *Builder) WithTool(name string) *Builder {
	b.metrics().Tool = name
	return b
}

func (b *Builder) Success() *Builder {
	b.env.Status = StatusSuccess
	b.env.Error = nil
	return b
}

func (b *Builder) Failure(code, message string) *Builder {
	b.env.Status = StatusFailure
	b.env.Error = &ErrorInfo{Code: code, Message: message}
	return b
}

// FailureFromError marks the envelope failed with err's code and message.
func (b *Builder) FailureFromError(err error) *Builder {
	return b.Failure(CodeOf(err), err.Error())
}

func (b *Builder) WithResult(key string, value interface{}) *Builder {
	b.env.Result[key] = value
	return b
}

// WithTiming records start and end times and the duration between them.
func (b *Builder) WithTiming(start, end time.Time) *Builder {
	m := b.metrics()
	m.StartTime = start
	m.EndTime = end
	m.DurationMs = end.Sub(start).Milliseconds()
	return b
}

func (b *Builder) Build() *Envelope {
	return b.env
}
