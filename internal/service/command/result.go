// Package command implements the user-facing operations on top of the identity cache,
// the social graph and the notification queue.
//
// Every command returns a Result for business outcomes and a non-nil error only for
// faults (store or queue failures). A rejected command changes nothing.
package command

import (
	"usermanagement_server/internal/infrastructure/metrics"
	"usermanagement_server/pkg/errorx"
)

// Result is the uniform outcome of a command. Data is set only on success.
type Result[T any] struct {
	Success bool              `json:"success"`
	Errors  []errorx.ErrorCode `json:"errors"`
	Data    *T                `json:"data,omitempty"`
}

// Empty is the data type of commands that return nothing.
type Empty struct{}

// Ok builds a successful result.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Errors: []errorx.ErrorCode{}, Data: &data}
}

// Done builds the successful result of a command that returns nothing; it carries no data.
func Done() Result[Empty] {
	return Result[Empty]{Success: true, Errors: []errorx.ErrorCode{}}
}

// Fail builds a rejected result carrying every violated rule.
func Fail[T any](codes ...errorx.ErrorCode) Result[T] {
	return Result[T]{Success: false, Errors: codes}
}

// observe records the outcome of a command execution.
func observe[T any](name string, r Result[T], err error) (Result[T], error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "fault"
	case !r.Success:
		outcome = "rejected"
	}
	metrics.CommandResults.WithLabelValues(name, outcome).Inc()
	return r, err
}
