package runner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/convocheck/internal/model"
	"github.com/ppiankov/convocheck/internal/suite"
)

// companionStub is a minimal backend: user creation, conversation, and a
// profile route that requires a previously created user.
func companionStub(t *testing.T, acceptUsers bool) *httptest.Server {
	var userSeq atomic.Int64
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/users", func(w http.ResponseWriter, r *http.Request) {
		if !acceptUsers {
			http.Error(w, `{"error": "unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		id := userSeq.Add(1)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"user_id": "u-" + time.Now().Format("150405") + "-" + string(rune('a'+id))})
	})

	mux.HandleFunc("POST /api/conversation", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["message"] == "" {
			http.Error(w, `{"error": "empty message"}`, http.StatusUnprocessableEntity)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"response_text": "I hear you, tell me more."})
	})

	mux.HandleFunc("GET /api/users/{id}/profile", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"profile": map[string]any{"name": "qa-user"},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testSuite() *suite.Suite {
	return &suite.Suite{
		Name: "inline",
		Categories: []suite.Category{
			{
				Name: "conversation",
				Cases: []model.TestCase{
					{
						Name:     "reply arrives",
						Category: "conversation",
						Request: model.Request{
							Method: "POST", Path: "/api/conversation",
							Body: map[string]any{"message": "hello"},
						},
						Expect: []model.Predicate{
							{Kind: model.StatusIn, Statuses: []int{200}},
							{Kind: model.FieldPresent, Field: "response_text"},
						},
					},
					{
						Name:     "empty message rejected",
						Category: "conversation",
						Request: model.Request{
							Method: "POST", Path: "/api/conversation",
							Body: map[string]any{"message": ""},
						},
						Expect: []model.Predicate{
							{Kind: model.StatusIn, Statuses: []int{400, 422}},
						},
					},
					{
						Name:     "fanout replies consistent",
						Category: "conversation",
						Fanout:   3,
						Request: model.Request{
							Method: "POST", Path: "/api/conversation",
							Body: map[string]any{"message": "again"},
						},
						Expect: []model.Predicate{
							{Kind: model.StatusIn, Statuses: []int{200}},
							{Kind: model.ExpectConsistent, Field: "response_text"},
						},
					},
				},
			},
			{
				Name: "user_profiles",
				Cases: []model.TestCase{
					{
						Name:      "profile readable",
						Category:  "user_profiles",
						NeedsUser: true,
						Request: model.Request{
							Method: "GET", Path: "/api/users/{{user_id}}/profile",
						},
						Expect: []model.Predicate{
							{Kind: model.StatusIn, Statuses: []int{200}},
							{Kind: model.FieldPresent, Field: "profile.name"},
						},
					},
				},
			},
		},
	}
}

func TestRunAllPass(t *testing.T) {
	srv := companionStub(t, true)

	rep, err := Run(context.Background(), Config{BaseURL: srv.URL}, testSuite())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.State != model.StateTerminated {
		t.Errorf("state = %s, want terminated", rep.State)
	}
	if len(rep.Entries) != 4 {
		t.Fatalf("len(entries) = %d, want 4 (one per declared case)", len(rep.Entries))
	}
	for _, e := range rep.Entries {
		if e.Status != model.EntryPass {
			t.Errorf("case %q: status = %s (%s)", e.Case, e.Status, e.Score.Details)
		}
	}
	if rep.Summary.SuccessRate != 100.0 {
		t.Errorf("success rate = %v, want 100.0", rep.Summary.SuccessRate)
	}
}

func TestRunPreservesDeclarationOrder(t *testing.T) {
	srv := companionStub(t, true)

	rep, err := Run(context.Background(), Config{BaseURL: srv.URL}, testSuite())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"reply arrives", "empty message rejected", "fanout replies consistent", "profile readable"}
	for i, name := range want {
		if rep.Entries[i].Case != name {
			t.Errorf("entry %d = %q, want %q", i, rep.Entries[i].Case, name)
		}
	}
}

func TestRunSkipsWhenFixtureUnavailable(t *testing.T) {
	srv := companionStub(t, false)

	rep, err := Run(context.Background(), Config{BaseURL: srv.URL}, testSuite())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var skipped *model.Entry
	for i := range rep.Entries {
		if rep.Entries[i].Case == "profile readable" {
			skipped = &rep.Entries[i]
		}
	}
	if skipped == nil {
		t.Fatal("fixture-dependent case missing from entries")
	}
	if skipped.Status != model.EntrySkipped {
		t.Errorf("status = %s, want skipped (not a crash, not a failure)", skipped.Status)
	}

	// The remaining cases still ran, and the skip stays out of the rate.
	if rep.Summary.Skipped != 1 {
		t.Errorf("summary skipped = %d, want 1", rep.Summary.Skipped)
	}
	if rep.Summary.SuccessRate != 100.0 {
		t.Errorf("success rate = %v, want 100.0 over executed cases", rep.Summary.SuccessRate)
	}
}

func TestRunAbortsOnSetupFailure(t *testing.T) {
	rep, err := Run(context.Background(), Config{BaseURL: "not a url"}, testSuite())
	if err == nil {
		t.Fatal("expected setup error")
	}
	if rep.State != model.StateAbortedSetupFailure {
		t.Errorf("state = %s, want aborted_setup_failure", rep.State)
	}
	if len(rep.Entries) != 0 {
		t.Errorf("entries = %d, want 0 — nothing executed", len(rep.Entries))
	}
}

func TestRunClassifiesDeadBackendAsError(t *testing.T) {
	srv := companionStub(t, true)
	base := srv.URL
	srv.Close()

	s := &suite.Suite{
		Name: "inline",
		Categories: []suite.Category{{
			Name: "availability",
			Cases: []model.TestCase{{
				Name:     "health",
				Category: "availability",
				Request:  model.Request{Method: "GET", Path: "/api/health", Timeout: 500 * time.Millisecond},
				Expect:   []model.Predicate{{Kind: model.StatusIn, Statuses: []int{200}}},
			}},
		}},
	}

	rep, err := Run(context.Background(), Config{BaseURL: base}, s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Entries[0].Status != model.EntryError {
		t.Errorf("status = %s, want error (harness could not complete the check)", rep.Entries[0].Status)
	}
}

func TestRunFanoutRecordsSingleEntry(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"response_text": "same answer"})
	}))
	defer srv.Close()

	s := &suite.Suite{
		Name: "inline",
		Categories: []suite.Category{{
			Name: "conversation",
			Cases: []model.TestCase{{
				Name:     "burst",
				Category: "conversation",
				Fanout:   5,
				Request:  model.Request{Method: "POST", Path: "/api/conversation", Body: map[string]any{"message": "x"}},
				Expect:   []model.Predicate{{Kind: model.StatusIn, Statuses: []int{200}}},
			}},
		}},
	}

	rep, err := Run(context.Background(), Config{BaseURL: srv.URL}, s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Entries) != 1 {
		t.Fatalf("fan-out must join into one entry, got %d", len(rep.Entries))
	}
	if got := hits.Load(); got != 5 {
		t.Errorf("backend hits = %d, want 5", got)
	}
}
