package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvents() []Event {
	resp := Response{URL: "https://example.com/a.png", FileName: "a", ContentType: "image/png", BytesRead: 42}
	return []Event{
		Started{},
		Cancelled{},
		ProgressUpdated{Progress: Progress{Completed: 1, Total: 2}},
		ProgressUpdated{Progress: Progress{Completed: 2, Total: 1}},
		IntermediateResultReceived{Response: resp},
		Completed{Outcome: Success(resp)},
		Completed{Outcome: Failure(ErrorKind{Code: ErrorCodeNetwork})},
		Completed{Outcome: Failure(ErrorKind{Code: ErrorCodeDecoding})},
	}
}

func TestEqualEvents_Reflexive(t *testing.T) {
	for _, ev := range sampleEvents() {
		assert.True(t, EqualEvents(ev, ev), "%s should equal itself", ev.Name())
	}
}

func TestEqualEvents_DistinctVariantsNeverEqual(t *testing.T) {
	events := sampleEvents()
	for i, a := range events {
		for j, b := range events {
			if i == j {
				continue
			}
			assert.False(t, EqualEvents(a, b), "events %d and %d compared equal", i, j)
			assert.Equal(t, EqualEvents(a, b), EqualEvents(b, a), "equality must be symmetric")
		}
	}
}

func TestEqualEvents_ComparesPayloadByValue(t *testing.T) {
	r1 := Response{URL: "u", BytesRead: 10}
	r2 := Response{URL: "u", BytesRead: 10}
	r3 := Response{URL: "u", BytesRead: 11}

	assert.True(t, EqualEvents(IntermediateResultReceived{Response: r1}, IntermediateResultReceived{Response: r2}))
	assert.False(t, EqualEvents(IntermediateResultReceived{Response: r1}, IntermediateResultReceived{Response: r3}))
	assert.True(t, EqualEvents(Completed{Outcome: Success(r1)}, Completed{Outcome: Success(r2)}))
	assert.True(t, EqualEvents(&Completed{Outcome: Success(r1)}, Completed{Outcome: Success(r2)}))
	assert.True(t, EqualEvents(
		ProgressUpdated{Progress: Progress{Completed: 3, Total: 10}},
		ProgressUpdated{Progress: Progress{Completed: 3, Total: 10}},
	))
}

func TestEqualEvents_Transitive(t *testing.T) {
	a := Completed{Outcome: Failure(ErrorKind{Code: ErrorCodeBadStatus, Detail: "404"})}
	b := Completed{Outcome: Failure(ErrorKind{Code: ErrorCodeBadStatus, Detail: "404"})}
	c := &Completed{Outcome: Failure(ErrorKind{Code: ErrorCodeBadStatus, Detail: "404"})}

	require.True(t, EqualEvents(a, b))
	require.True(t, EqualEvents(b, c))
	assert.True(t, EqualEvents(a, c))
}

func TestEqualEvents_FailureVariantsDiffer(t *testing.T) {
	network := Completed{Outcome: Failure(ErrorKind{Code: ErrorCodeNetwork})}
	decoding := Completed{Outcome: Failure(ErrorKind{Code: ErrorCodeDecoding})}

	assert.False(t, EqualEvents(network, decoding))
}

func TestEqualEvents_SuccessNeverEqualsFailure(t *testing.T) {
	assert.False(t, EqualEvents(
		Completed{Outcome: Success(Response{})},
		Completed{Outcome: Failure(ErrorKind{})},
	))
}

func TestEqualEvents_Nil(t *testing.T) {
	var nilStarted *Started
	assert.True(t, EqualEvents(nil, nil))
	assert.True(t, EqualEvents(nilStarted, nil))
	assert.False(t, EqualEvents(Started{}, nil))
}

func TestEqualEvents_PointerForms(t *testing.T) {
	resp := Response{URL: "http://a", BytesRead: 1}
	values := []Event{
		Started{},
		Cancelled{},
		ProgressUpdated{Progress: Progress{Completed: 1, Total: 2}},
		IntermediateResultReceived{Response: resp},
		Completed{Outcome: Success(resp)},
	}
	pointers := []Event{
		&Started{},
		&Cancelled{},
		&ProgressUpdated{Progress: Progress{Completed: 1, Total: 2}},
		&IntermediateResultReceived{Response: resp},
		&Completed{Outcome: Success(resp)},
	}

	for i := range values {
		for j := range pointers {
			assert.Equal(t, i == j, EqualEvents(values[i], pointers[j]), "%s vs *%s", values[i].Name(), pointers[j].Name())
		}
	}
	var nilCompleted *Completed
	assert.False(t, IsTerminal(nilCompleted))
}

func TestEqualEventSequences(t *testing.T) {
	seq := []Event{Started{}, ProgressUpdated{Progress: Progress{Completed: 3, Total: 10}}, Cancelled{}}

	assert.True(t, EqualEventSequences(seq, []Event{Started{}, ProgressUpdated{Progress: Progress{Completed: 3, Total: 10}}, Cancelled{}}))
	assert.False(t, EqualEventSequences(seq, seq[:2]))
	assert.False(t, EqualEventSequences(seq, []Event{Started{}, ProgressUpdated{Progress: Progress{Completed: 3, Total: 11}}, Cancelled{}}))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(Started{}))
	assert.False(t, IsTerminal(ProgressUpdated{}))
	assert.False(t, IsTerminal(IntermediateResultReceived{}))
	assert.True(t, IsTerminal(Cancelled{}))
	assert.True(t, IsTerminal(&Completed{}))
}

func TestOutcome_Accessors(t *testing.T) {
	resp := Response{URL: "u", BytesRead: 1}
	ok := Success(resp)
	got, isResp := ok.Response()
	assert.True(t, isResp)
	assert.Equal(t, resp, got)
	_, isFail := ok.Failure()
	assert.False(t, isFail)

	kind := NewErrorKind(ErrorCodeStorage, errors.New("disk full"))
	failed := Failure(kind)
	assert.False(t, failed.IsSuccess())
	gotKind, isFail := failed.Failure()
	assert.True(t, isFail)
	assert.Equal(t, "storage: disk full", gotKind.Error())
}

func TestOutcome_JSON(t *testing.T) {
	cases := []Outcome{
		Success(Response{URL: "u", FileName: "f", BytesRead: 3}),
		Failure(ErrorKind{Code: ErrorCodeTooLarge, Detail: "limit"}),
	}
	for _, in := range cases {
		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out Outcome
		require.NoError(t, json.Unmarshal(data, &out))
		assert.True(t, in.Equal(out), "got %s, want %s", out, in)
	}
}

func TestNewEventView(t *testing.T) {
	view := NewEventView(7, time.Time{}, ProgressUpdated{Progress: Progress{Completed: 3, Total: 10}})
	assert.Equal(t, "progress_updated", view.Type)
	require.NotNil(t, view.Progress)
	assert.Equal(t, int64(3), view.Progress.Completed)
	assert.Nil(t, view.Outcome)

	done := NewEventView(8, time.Time{}, Completed{Outcome: Success(Response{URL: "u"})})
	require.NotNil(t, done.Outcome)
	assert.True(t, done.Outcome.IsSuccess())
}
