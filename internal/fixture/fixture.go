// Package fixture creates the minimal backend-side state a test case
// needs before it can be exercised — currently user identities — and
// provides the placeholder expansion that wires fixtures into declared
// requests.
package fixture

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ppiankov/convocheck/internal/httpc"
	"github.com/ppiankov/convocheck/internal/model"
)

// Placeholders recognized inside request paths and string body values.
const (
	UserIDPlaceholder = "{{user_id}}"
	AudioPlaceholder  = "{{audio_b64}}"
)

// User is an opaque backend identity. The zero value is the "unavailable"
// sentinel: creation failed, dependent cases get skipped instead of
// crashing the run.
type User struct {
	ID        string
	Available bool
}

// CreateUser issues one user-creation call and returns the identity, or
// the unavailable sentinel on any non-2xx or transport failure. It never
// returns an error — fixture trouble degrades to skips, not aborts.
// Creation is not idempotent, so every call uses a fresh unique name.
func CreateUser(ctx context.Context, s *httpc.Session, attrs map[string]any) User {
	body := map[string]any{
		"name":      fmt.Sprintf("qa-user-%s", uuid.NewString()[:8]),
		"age":       7,
		"interests": []string{"stories", "animals"},
	}
	for k, v := range attrs {
		body[k] = v
	}

	res := s.Dispatch(ctx, model.Request{
		Method: "POST",
		Path:   "/api/users",
		Body:   body,
	})

	if !res.Received() || res.StatusCode < 200 || res.StatusCode >= 300 {
		return User{}
	}

	id := stringField(res.Body, "user_id")
	if id == "" {
		id = stringField(res.Body, "id")
	}
	if id == "" {
		return User{}
	}

	return User{ID: id, Available: true}
}

// Expand substitutes fixture placeholders into a request, returning a
// copy. The original declared case stays immutable during the run.
func Expand(req model.Request, u User) model.Request {
	out := req
	out.Path = expandString(req.Path, u)

	if len(req.Body) > 0 {
		out.Body = expandMap(req.Body, u)
	}

	return out
}

// expandMap walks nested maps and slices so placeholders work at any
// depth of a declared body.
func expandMap(body map[string]any, u User) map[string]any {
	out := make(map[string]any, len(body))
	for k, v := range body {
		out[k] = expandValue(v, u)
	}
	return out
}

func expandValue(v any, u User) any {
	switch t := v.(type) {
	case string:
		return expandString(t, u)
	case map[string]any:
		return expandMap(t, u)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = expandValue(item, u)
		}
		return out
	default:
		return v
	}
}

func expandString(s string, u User) string {
	s = strings.ReplaceAll(s, UserIDPlaceholder, u.ID)
	s = strings.ReplaceAll(s, AudioPlaceholder, AudioSampleB64())
	return s
}

func stringField(body map[string]any, key string) string {
	if body == nil {
		return ""
	}
	if s, ok := body[key].(string); ok {
		return s
	}
	return ""
}

var (
	audioOnce sync.Once
	audioB64  string
)

// AudioSampleB64 returns a small valid WAV clip (8kHz mono 16-bit PCM
// silence) base64-encoded, for endpoints that take audio embedded in JSON
// or form fields.
func AudioSampleB64() string {
	audioOnce.Do(func() {
		audioB64 = base64.StdEncoding.EncodeToString(silentWAV())
	})
	return audioB64
}

func silentWAV() []byte {
	const (
		sampleRate = 8000
		samples    = 400 // 50ms of silence
		byteRate   = sampleRate * 2
	)
	dataSize := samples * 2

	buf := make([]byte, 0, 44+dataSize)
	le := binary.LittleEndian

	u32 := func(v uint32) []byte { b := make([]byte, 4); le.PutUint32(b, v); return b }
	u16 := func(v uint16) []byte { b := make([]byte, 2); le.PutUint16(b, v); return b }

	buf = append(buf, []byte("RIFF")...)
	buf = append(buf, u32(uint32(36+dataSize))...)
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = append(buf, u32(16)...)             // fmt chunk size
	buf = append(buf, u16(1)...)              // PCM
	buf = append(buf, u16(1)...)              // mono
	buf = append(buf, u32(sampleRate)...)
	buf = append(buf, u32(byteRate)...)
	buf = append(buf, u16(2)...)              // block align
	buf = append(buf, u16(16)...)             // bits per sample
	buf = append(buf, []byte("data")...)
	buf = append(buf, u32(uint32(dataSize))...)
	buf = append(buf, make([]byte, dataSize)...)

	return buf
}
