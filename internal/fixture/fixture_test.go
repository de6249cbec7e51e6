package fixture

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/convocheck/internal/httpc"
	"github.com/ppiankov/convocheck/internal/model"
)

func TestCreateUserReturnsIdentity(t *testing.T) {
	var seenNames []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		seenNames = append(seenNames, body["name"].(string))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"user_id": "u-123"})
	}))
	defer srv.Close()

	s, err := httpc.Acquire(srv.URL, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Release()

	u := CreateUser(context.Background(), s, nil)
	if !u.Available || u.ID != "u-123" {
		t.Fatalf("user = %+v, want available u-123", u)
	}

	// Repeated creation must not collide on names.
	CreateUser(context.Background(), s, nil)
	if len(seenNames) != 2 || seenNames[0] == seenNames[1] {
		t.Errorf("creation names should be unique per call: %v", seenNames)
	}
}

func TestCreateUserUnavailableOnRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "registrations closed"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s, err := httpc.Acquire(srv.URL, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Release()

	u := CreateUser(context.Background(), s, nil)
	if u.Available {
		t.Error("non-2xx creation must return the unavailable sentinel, not panic the run")
	}
}

func TestCreateUserUnavailableOnTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	s, err := httpc.Acquire(srv.URL, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Release()
	srv.Close()

	u := CreateUser(context.Background(), s, nil)
	if u.Available {
		t.Error("unreachable backend must return the unavailable sentinel")
	}
}

func TestExpandSubstitutesPlaceholders(t *testing.T) {
	req := model.Request{
		Method: "POST",
		Path:   "/api/users/{{user_id}}/profile",
		Body: map[string]any{
			"audio_data": "{{audio_b64}}",
			"retries":    3,
		},
	}

	out := Expand(req, User{ID: "u-9", Available: true})

	if out.Path != "/api/users/u-9/profile" {
		t.Errorf("path = %q", out.Path)
	}
	if strings.Contains(out.Body["audio_data"].(string), "{{") {
		t.Errorf("audio placeholder not expanded: %v", out.Body["audio_data"])
	}
	if out.Body["retries"] != 3 {
		t.Errorf("non-string body values must pass through untouched")
	}
	// Declared request stays immutable.
	if req.Path != "/api/users/{{user_id}}/profile" {
		t.Error("Expand mutated the declared request")
	}
}

func TestExpandRecursesNestedBodies(t *testing.T) {
	req := model.Request{
		Method: "POST",
		Path:   "/api/voice/stt",
		Body: map[string]any{
			"audio": map[string]any{"data": "{{audio_b64}}", "format": "wav"},
			"tags":  []any{"{{user_id}}", 7},
		},
	}

	out := Expand(req, User{ID: "u-42", Available: true})

	audio := out.Body["audio"].(map[string]any)
	if strings.Contains(audio["data"].(string), "{{") {
		t.Errorf("nested audio placeholder not expanded: %v", audio["data"])
	}
	if audio["format"] != "wav" {
		t.Errorf("nested non-placeholder value altered: %v", audio["format"])
	}

	tags := out.Body["tags"].([]any)
	if tags[0] != "u-42" {
		t.Errorf("slice placeholder not expanded: %v", tags[0])
	}
	if tags[1] != 7 {
		t.Errorf("slice non-string value altered: %v", tags[1])
	}

	// The nested maps of the declared request stay untouched.
	orig := req.Body["audio"].(map[string]any)
	if orig["data"] != "{{audio_b64}}" {
		t.Error("Expand mutated a nested declared value")
	}
}

func TestAudioSampleIsValidWAV(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(AudioSampleB64())
	if err != nil {
		t.Fatalf("audio sample is not valid base64: %v", err)
	}
	if len(raw) < 44 {
		t.Fatalf("sample too short for a WAV header: %d bytes", len(raw))
	}
	if string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		t.Errorf("sample missing RIFF/WAVE magic: % x", raw[:12])
	}
}
