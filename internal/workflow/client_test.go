package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/darkchannel/backend/internal/models"
)

func TestTriggerFromVideo(t *testing.T) {
	video := models.Video{
		ID:          "vid-1",
		UserEmail:   "alice@example.com",
		Language:    "pt-BR",
		Genre:       "terror",
		Description: "Uma casa abandonada",
		Structure:   "Abertura\n• Desenvolvimento\n* Clímax",
		Tone:        "sombrio",
	}

	trigger := TriggerFromVideo(video)

	if trigger.VideoID != "vid-1" || trigger.UserEmail != "alice@example.com" {
		t.Fatalf("unexpected identity fields: %+v", trigger)
	}
	if trigger.Language != "PT-BR" {
		t.Fatalf("expected uppercased language, got %q", trigger.Language)
	}
	if trigger.Summary != "Uma casa abandonada" {
		t.Fatalf("expected description as summary, got %q", trigger.Summary)
	}
	want := []string{"Abertura", "Desenvolvimento", "Clímax"}
	if !reflect.DeepEqual(trigger.Structure, want) {
		t.Fatalf("unexpected structure: %v", trigger.Structure)
	}
}

func TestTriggerFromVideoFallbacks(t *testing.T) {
	video := models.Video{
		ID:         "vid-2",
		Language:   "en",
		Genre:      "mystery",
		Screenplay: "Scene one\nScene two",
	}

	trigger := TriggerFromVideo(video)

	if trigger.Summary != "Gerar roteiro para mystery" {
		t.Fatalf("expected genre fallback summary, got %q", trigger.Summary)
	}
	if !reflect.DeepEqual(trigger.Structure, []string{"Scene one", "Scene two"}) {
		t.Fatalf("expected screenplay fallback structure, got %v", trigger.Structure)
	}
}

func TestNotifyScreenplayBatchPostsEachTrigger(t *testing.T) {
	var mu sync.Mutex
	var received []ScreenplayTrigger
	done := make(chan struct{}, 2)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var trigger ScreenplayTrigger
		if err := json.NewDecoder(r.Body).Decode(&trigger); err != nil {
			t.Errorf("decode trigger: %v", err)
		}
		mu.Lock()
		received = append(received, trigger)
		mu.Unlock()
		done <- struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{ScreenplayURL: server.URL, Timeout: 5 * time.Second}, nil)
	client.NotifyScreenplayBatch([]ScreenplayTrigger{
		{VideoID: "a"},
		{VideoID: "b"},
	})

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for webhook deliveries")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(received))
	}
}

func TestNotifyScreenplayBatchWithoutURLIsNoop(t *testing.T) {
	client := NewClient(Config{}, nil)
	// Must not panic or block.
	client.NotifyScreenplayBatch([]ScreenplayTrigger{{VideoID: "a"}})
}

func TestCallScreenplay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Idempotency-Key"); got != "key-123" {
			t.Errorf("expected forwarded idempotency key, got %q", got)
		}
		var req ScreenplayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Genre != "terror" {
			t.Errorf("unexpected genre %q", req.Genre)
		}
		_ = json.NewEncoder(w).Encode(ScreenplayResponse{Screenplay: "FADE IN"})
	}))
	defer server.Close()

	client := NewClient(Config{ScreenplayURL: server.URL, Timeout: 5 * time.Second}, nil)
	resp, err := client.CallScreenplay(context.Background(), ScreenplayRequest{Genre: "terror", JobID: "job-1"}, "key-123")
	if err != nil {
		t.Fatalf("call screenplay: %v", err)
	}
	if resp.Screenplay != "FADE IN" {
		t.Fatalf("unexpected screenplay %q", resp.Screenplay)
	}
}

func TestCallScreenplayUnconfigured(t *testing.T) {
	client := NewClient(Config{}, nil)
	if _, err := client.CallScreenplay(context.Background(), ScreenplayRequest{}, ""); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSecretVerifier(t *testing.T) {
	unset := NewSecretVerifier("")
	if !unset.Verify("anything") || !unset.Verify("") {
		t.Fatal("verifier without a secret must accept every caller")
	}

	set := NewSecretVerifier("hunter2")
	if !set.Verify("hunter2") {
		t.Fatal("expected matching secret to verify")
	}
	if set.Verify("hunter3") || set.Verify("") {
		t.Fatal("expected mismatched secret to be rejected")
	}
}

func TestSplitCreativeList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a\nb", []string{"a", "b"}},
		{"• first\n• second", []string{"first", "second"}},
		{"* one * two", []string{"one", "two"}},
		{"- dashed\r\nplain", []string{"dashed", "plain"}},
		{"", nil},
	}

	for _, tc := range cases {
		got := SplitCreativeList(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("SplitCreativeList(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
