// Package model defines the shared data types for a harness run: declared
// test cases, normalized request outcomes, score results, and the run state
// machine. Types here are data only — dispatch logic lives in httpc,
// scoring logic in score.
package model

import "time"

// Encoding selects how a request payload is serialized on the wire.
// Endpoints disagree (most speak JSON, the voice routes take form or
// multipart data), so each case declares its encoding explicitly.
type Encoding string

const (
	EncodingNone      Encoding = "none"
	EncodingJSON      Encoding = "json"
	EncodingForm      Encoding = "form"
	EncodingMultipart Encoding = "multipart"
)

// Outcome tags how a dispatch ended. Callers branch on the tag, never on
// error message text.
type Outcome string

const (
	// OutcomeHTTP means a real HTTP response was received and decoded as
	// declared.
	OutcomeHTTP Outcome = "http"
	// OutcomeTimeout means no response arrived within the request budget.
	OutcomeTimeout Outcome = "timeout"
	// OutcomeTransport covers connection refused, DNS failure, TLS failure.
	OutcomeTransport Outcome = "transport_error"
	// OutcomeDecode means a response arrived but its body was not valid
	// JSON when JSON was declared. The raw body is preserved.
	OutcomeDecode Outcome = "decode_error"
)

// Sentinel status codes used when no real HTTP response was received.
const (
	StatusSentinelTimeout   = 408
	StatusSentinelTransport = 500
)

// Request describes one HTTP call against the backend under test.
type Request struct {
	Method   string            `yaml:"method"`
	Path     string            `yaml:"path"`
	Encoding Encoding          `yaml:"encoding,omitempty"`
	Body     map[string]any    `yaml:"body,omitempty"`
	Query    map[string]string `yaml:"query,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
	// Timeout overrides the session default when non-zero.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// RequestResult is the normalized outcome of exactly one dispatched
// request. Exactly one of {real status, sentinel status + Err} holds.
type RequestResult struct {
	StatusCode int           `json:"status_code"`
	Outcome    Outcome       `json:"outcome"`
	Body       map[string]any `json:"body,omitempty"`
	// RawBody preserves the verbatim response text for diagnostics,
	// including bodies that failed to decode.
	RawBody string        `json:"raw_body,omitempty"`
	Err     string        `json:"error,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// Received reports whether a real HTTP response arrived, decodable or not.
func (r RequestResult) Received() bool {
	return r.Outcome == OutcomeHTTP || r.Outcome == OutcomeDecode
}

// PredicateKind names one rule in the closed predicate set.
type PredicateKind string

const (
	// StatusIn passes when the status code is in the declared set.
	// Deliberately-malformed-input cases expect a 4xx here; getting the
	// expected error status is a pass, not a failure.
	StatusIn PredicateKind = "status_in"
	// FieldPresent passes when the named body field exists and is non-empty.
	FieldPresent PredicateKind = "field_present"
	// FieldContains passes when the field contains the substring,
	// case-insensitive.
	FieldContains PredicateKind = "field_contains"
	// WordCountMin passes when the field has at least Min whitespace-
	// delimited tokens after trimming.
	WordCountMin PredicateKind = "word_count_min"
	// LatencyUnder passes when the request completed within the budget.
	LatencyUnder PredicateKind = "latency_under"
	// FieldOneOf passes when the field contains at least one keyword from
	// the list, case-insensitive.
	FieldOneOf PredicateKind = "field_one_of"
	// ExpectDistinct applies to fan-out groups only: the field value must
	// differ across responses.
	ExpectDistinct PredicateKind = "expect_distinct"
	// ExpectConsistent applies to fan-out groups only: the field value must
	// be identical across responses.
	ExpectConsistent PredicateKind = "expect_consistent"
	// Judge asks a configured LLM judge whether the field satisfies the
	// Value instruction. Skipped (informational) when no judge is wired.
	Judge PredicateKind = "judge"
)

// Predicate is one declarative pass/fail rule applied to a response.
// Which fields are meaningful depends on Kind.
type Predicate struct {
	Kind     PredicateKind `yaml:"kind"`
	Field    string        `yaml:"field,omitempty"`
	Value    string        `yaml:"value,omitempty"`
	Values   []string      `yaml:"values,omitempty"`
	Statuses []int         `yaml:"statuses,omitempty"`
	Min      int           `yaml:"min,omitempty"`
	Under    time.Duration `yaml:"under,omitempty"`
	// Informational predicates are reported but never block the case.
	Informational bool `yaml:"informational,omitempty"`
}

// TestCase is a declared (name, request, predicates) tuple. Immutable
// during a run.
type TestCase struct {
	Name     string      `yaml:"name"`
	Category string      `yaml:"category,omitempty"`
	Request  Request     `yaml:"request"`
	Expect   []Predicate `yaml:"expect"`
	// Fanout > 1 issues that many concurrent copies of the request and
	// scores the joined group as one entry.
	Fanout int `yaml:"fanout,omitempty"`
	// NeedsUser marks cases that require a user fixture. When fixture
	// creation failed the case is skipped, not failed.
	NeedsUser bool `yaml:"needs_user,omitempty"`
}

// CheckResult is one predicate's individual outcome inside a ScoreResult.
type CheckResult struct {
	Name          string `json:"name"`
	Passed        bool   `json:"passed"`
	Informational bool   `json:"informational,omitempty"`
	Observed      string `json:"observed"`
	Expected      string `json:"expected"`
}

// ScoreResult reduces a RequestResult plus predicates to one decision.
// Immutable once computed.
type ScoreResult struct {
	Passed  bool          `json:"passed"`
	Checks  []CheckResult `json:"checks"`
	Details string        `json:"details,omitempty"`
}

// EntryStatus classifies a recorded entry. The report must separate
// "assertion failed" from "could not complete the check at all".
type EntryStatus string

const (
	EntryPass    EntryStatus = "pass"
	EntryFail    EntryStatus = "fail"
	EntryError   EntryStatus = "error"
	EntrySkipped EntryStatus = "skipped"
)

// Entry is one recorded (case, score, latency) tuple in execution order.
type Entry struct {
	Case     string        `json:"case"`
	Category string        `json:"category"`
	Status   EntryStatus   `json:"status"`
	Score    ScoreResult   `json:"score"`
	Latency  time.Duration `json:"latency"`
}

// RunState tracks the harness state machine for a single run.
type RunState string

const (
	StateNotStarted      RunState = "not_started"
	StateSessionAcquired RunState = "session_acquired"
	StateRunning         RunState = "running"
	StateSessionReleased RunState = "session_released"
	StateReported        RunState = "reported"
	StateTerminated      RunState = "terminated"
	// StateAbortedSetupFailure is terminal: session acquisition or a
	// mandatory fixture failed before any case executed.
	StateAbortedSetupFailure RunState = "aborted_setup_failure"
)
