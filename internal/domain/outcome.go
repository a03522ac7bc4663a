package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode enumerates the failure variants a task can finish with.
type ErrorCode string

const (
	ErrorCodeNetwork   ErrorCode = "network"
	ErrorCodeBadStatus ErrorCode = "bad_status"
	ErrorCodeDecoding  ErrorCode = "decoding"
	ErrorCodeStorage   ErrorCode = "storage"
	ErrorCodeTooLarge  ErrorCode = "too_large"
	ErrorCodeCancelled ErrorCode = "cancelled"
)

// ErrorKind is the failure payload of an Outcome. Observers store and
// compare it, they never interpret it.
type ErrorKind struct {
	Code   ErrorCode `json:"code"`
	Detail string    `json:"detail,omitempty"`
}

// NewErrorKind builds an ErrorKind from an underlying error.
func NewErrorKind(code ErrorCode, err error) ErrorKind {
	kind := ErrorKind{Code: code}
	if err != nil {
		kind.Detail = err.Error()
	}
	return kind
}

func (e ErrorKind) Error() string {
	if e.Detail == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Equal reports whether both kinds have the same code and detail.
func (e ErrorKind) Equal(other ErrorKind) bool {
	return e.Code == other.Code && e.Detail == other.Detail
}

// Outcome is the terminal result of a task: either a Response or an
// ErrorKind, never both. The zero value is a failure with an empty code.
type Outcome struct {
	ok       bool
	response Response
	failure  ErrorKind
}

// Success wraps a final response.
func Success(r Response) Outcome {
	return Outcome{ok: true, response: r}
}

// Failure wraps a terminal error.
func Failure(kind ErrorKind) Outcome {
	return Outcome{failure: kind}
}

// IsSuccess reports whether the outcome carries a response.
func (o Outcome) IsSuccess() bool { return o.ok }

// Response returns the success payload.
func (o Outcome) Response() (Response, bool) {
	if !o.ok {
		return Response{}, false
	}
	return o.response, true
}

// Failure returns the failure payload.
func (o Outcome) Failure() (ErrorKind, bool) {
	if o.ok {
		return ErrorKind{}, false
	}
	return o.failure, true
}

// Equal compares variant first, then the payload of that variant.
func (o Outcome) Equal(other Outcome) bool {
	if o.ok != other.ok {
		return false
	}
	if o.ok {
		return o.response.Equal(other.response)
	}
	return o.failure.Equal(other.failure)
}

func (o Outcome) String() string {
	if o.ok {
		return fmt.Sprintf("success(%s, %d bytes)", o.response.URL, o.response.BytesRead)
	}
	return fmt.Sprintf("failure(%s)", o.failure.Error())
}

type outcomeJSON struct {
	Success  bool       `json:"success"`
	Response *Response  `json:"response,omitempty"`
	Error    *ErrorKind `json:"error,omitempty"`
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	out := outcomeJSON{Success: o.ok}
	if o.ok {
		r := o.response
		out.Response = &r
	} else {
		k := o.failure
		out.Error = &k
	}
	return json.Marshal(out)
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var in outcomeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch {
	case in.Success && in.Response != nil:
		*o = Success(*in.Response)
	case in.Success:
		*o = Success(Response{})
	case in.Error != nil:
		*o = Failure(*in.Error)
	default:
		*o = Failure(ErrorKind{})
	}
	return nil
}
