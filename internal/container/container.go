// Package container owns the UI state of one query form and the submission
// handler that drives it.
package container

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// FailureMessage is the only error text ever shown to the user.
const FailureMessage = "Error processing your query. Please try again."

// QueryData is what the form hands to the container on submit.
type QueryData struct {
	Query string `json:"query"`
}

// Submitter performs the network call for one query.
type Submitter interface {
	Submit(ctx context.Context, query string) (json.RawMessage, error)
}

// UIState drives rendering. Error and Response may both be set; the error
// banner renders first.
type UIState struct {
	Response  json.RawMessage `json:"response,omitempty"`
	IsLoading bool            `json:"is_loading"`
	Error     string          `json:"error,omitempty"`
	// Query is the text last submitted, so a re-rendered form keeps it.
	Query string `json:"query"`
}

func (s UIState) clone() UIState {
	if s.Response != nil {
		s.Response = append(json.RawMessage(nil), s.Response...)
	}
	return s
}

// HasResponse reports whether a response panel should render. Falsy JSON
// values (null, false, 0, "") count as no response.
func (s UIState) HasResponse() bool {
	raw := bytes.TrimSpace(s.Response)
	if len(raw) == 0 {
		return false
	}
	if !gjson.ValidBytes(raw) {
		return true
	}

	v := gjson.ParseBytes(raw)
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return v.Float() != 0
	case gjson.String:
		return v.Str != ""
	}
	return true
}

// Outcome describes one finished submission.
type Outcome struct {
	SubmissionID string
	SessionID    string
	Query        string
	Response     json.RawMessage
	Err          error
	// Stale is set when a newer submission superseded this one and its
	// result was not applied.
	Stale     bool
	StartedAt time.Time
	Duration  time.Duration
}

// Recorder is told about every finished submission.
type Recorder interface {
	Record(ctx context.Context, outcome Outcome)
}

type Options struct {
	SessionID string
	// LatestOnly applies only the result of the most recent submission and
	// cancels older in-flight requests. When false, whichever request
	// resolves last wins.
	LatestOnly bool
	Recorder   Recorder
}

type Container struct {
	submitter Submitter
	logger    *logrus.Logger
	opts      Options

	mu             sync.Mutex
	state          UIState
	seq            uint64
	cancelInFlight context.CancelFunc
}

func New(submitter Submitter, logger *logrus.Logger, opts Options) *Container {
	return &Container{
		submitter: submitter,
		logger:    logger,
		opts:      opts,
	}
}

// State returns a copy of the current UI state.
func (c *Container) State() UIState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// SubmitQuery runs one submission to completion and returns the state it
// left behind. Failures never escape; they become FailureMessage.
func (c *Container) SubmitQuery(ctx context.Context, data QueryData) UIState {
	return <-c.SubmitQueryAsync(ctx, data)
}

// SubmitQueryAsync marks the state as loading before it returns, then
// performs the call in the background. The channel yields the state once
// this submission finishes.
func (c *Container) SubmitQueryAsync(ctx context.Context, data QueryData) <-chan UIState {
	reqCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.seq++
	seq := c.seq
	if c.opts.LatestOnly {
		if c.cancelInFlight != nil {
			c.cancelInFlight()
		}
		c.cancelInFlight = cancel
	}
	c.state.IsLoading = true
	c.state.Error = ""
	c.state.Query = data.Query
	c.mu.Unlock()

	outcome := Outcome{
		SubmissionID: uuid.NewString(),
		SessionID:    c.opts.SessionID,
		Query:        data.Query,
		StartedAt:    time.Now(),
	}

	done := make(chan UIState, 1)
	go func() {
		defer close(done)
		defer cancel()

		response, err := c.submitter.Submit(reqCtx, data.Query)
		outcome.Duration = time.Since(outcome.StartedAt)
		outcome.Response = response
		outcome.Err = err

		state, stale := c.complete(seq, response, err)
		outcome.Stale = stale

		fields := logrus.Fields{
			"submission_id": outcome.SubmissionID,
			"session_id":    outcome.SessionID,
			"sequence":      seq,
			"duration_ms":   outcome.Duration.Milliseconds(),
		}
		switch {
		case stale:
			c.logger.WithFields(fields).Debug("Discarding superseded query result")
		case err != nil:
			c.logger.WithError(err).WithFields(fields).Error("Query submission failed")
		default:
			c.logger.WithFields(fields).Info("Query submission completed")
		}

		if c.opts.Recorder != nil {
			c.opts.Recorder.Record(context.WithoutCancel(ctx), outcome)
		}

		done <- state
	}()

	return done
}

func (c *Container) complete(seq uint64, response json.RawMessage, err error) (UIState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts.LatestOnly && seq != c.seq {
		return c.state.clone(), true
	}

	if err != nil {
		c.state.Error = FailureMessage
	} else {
		c.state.Response = response
	}
	c.state.IsLoading = false
	c.cancelInFlight = nil

	return c.state.clone(), false
}
