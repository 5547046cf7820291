package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/darkchannel/backend/internal/models"
	"github.com/darkchannel/backend/internal/secrets"
)

func testCipher(t *testing.T) *secrets.Cipher {
	t.Helper()

	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	cipher, err := secrets.NewCipher(key)
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	return cipher
}

func TestChannelHandlerCreateSealsOAuth(t *testing.T) {
	store := newMemChannelStore()
	cipher := testCipher(t)
	handler := ChannelHandler{Identity: userIdentity("user@example.com"), Channels: store, Sealer: cipher}

	body := []byte(`{"name":"Main","oauth":{"access_token":"tok","refresh_token":"ref"}}`)
	req := httptest.NewRequest(http.MethodPost, "/youtube/channels", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var resp channelSummary
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Name != "Main" || resp.ID == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	stored := store.channels[resp.ID]
	if strings.Contains(stored.OAuthEncrypted, "access_token") {
		t.Fatal("oauth blob stored in the clear")
	}
	opened, err := cipher.Open(stored.OAuthEncrypted)
	if err != nil {
		t.Fatalf("open stored blob: %v", err)
	}
	if !strings.Contains(string(opened), `"access_token":"tok"`) {
		t.Fatalf("sealed blob does not round-trip: %s", opened)
	}
}

func TestChannelHandlerCreateWithoutSealer(t *testing.T) {
	handler := ChannelHandler{Identity: userIdentity("user@example.com"), Channels: newMemChannelStore()}

	body := []byte(`{"name":"Main","oauth":{"access_token":"tok"}}`)
	req := httptest.NewRequest(http.MethodPost, "/youtube/channels", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected status %d got %d", http.StatusNotImplemented, rec.Code)
	}
}

func TestChannelHandlerCreateValidation(t *testing.T) {
	handler := ChannelHandler{Identity: userIdentity("user@example.com"), Channels: newMemChannelStore(), Sealer: testCipher(t)}

	req := httptest.NewRequest(http.MethodPost, "/youtube/channels", bytes.NewReader([]byte(`{"name":"Main"}`)))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestChannelHandlerDeleteScopedToOwner(t *testing.T) {
	store := newMemChannelStore()
	store.channels["ch-1"] = models.Channel{ID: "ch-1", UserEmail: "other@example.com", Name: "Main"}
	handler := ChannelHandler{Identity: userIdentity("user@example.com"), Channels: store}

	req := httptest.NewRequest(http.MethodDelete, "/youtube/channels/ch-1", nil)
	req.SetPathValue("id", "ch-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
	if _, ok := store.channels["ch-1"]; !ok {
		t.Fatal("channel removed across users")
	}
}

func TestChannelHandlerDelete(t *testing.T) {
	store := newMemChannelStore()
	store.channels["ch-1"] = models.Channel{ID: "ch-1", UserEmail: "user@example.com", Name: "Main"}
	handler := ChannelHandler{Identity: userIdentity("user@example.com"), Channels: store}

	req := httptest.NewRequest(http.MethodDelete, "/youtube/channels/ch-1", nil)
	req.SetPathValue("id", "ch-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d got %d", http.StatusNoContent, rec.Code)
	}
	if len(store.channels) != 0 {
		t.Fatalf("expected channel removed, %d left", len(store.channels))
	}
}
