package errs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CodeError is the error currency of the whole server. Code selects the
// transport mapping (HTTP status / ws error event); Msg is safe to show a
// client; Detail is internal and only ever logged.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

func (e *CodeError) clone() *CodeError {
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: e.Detail}
}

// WithDetail returns a copy carrying extra internal detail.
func (e *CodeError) WithDetail(detail string) *CodeError {
	c := e.clone()
	if c.Detail == "" {
		c.Detail = detail
	} else {
		c.Detail += ", " + detail
	}
	return c
}

// WrapMsg attaches key/value detail, formatted "msg k=v, k=v".
func (e *CodeError) WrapMsg(msg string, kv ...any) *CodeError {
	return e.WithDetail(toString(msg, kv))
}

// Is matches by code, so errors.Is(err, ErrNotFoundOrDenied) works on any
// detailed copy.
func (e *CodeError) Is(err error) bool {
	var ce *CodeError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == e.Code
}

func toString(msg string, kv []any) string {
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		if i > 0 || msg != "" {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("%v", kv[i]))
		sb.WriteString("=")
		if i+1 < len(kv) {
			sb.WriteString(fmt.Sprintf("%v", kv[i+1]))
		}
	}
	return sb.String()
}
