package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/darkchannel/backend/internal/models"
	"github.com/darkchannel/backend/internal/repositories"
)

type memGenreStore struct {
	byLanguage map[string][]models.Genre
	disabled   bool
}

func (s memGenreStore) ListByLanguage(_ context.Context, language string) ([]models.Genre, error) {
	if s.disabled {
		return nil, repositories.ErrNotConfigured
	}
	return s.byLanguage[language], nil
}

func TestGenreHandlerList(t *testing.T) {
	handler := GenreHandler{Genres: memGenreStore{byLanguage: map[string][]models.Genre{
		"pt-BR": {
			{Language: "pt-BR", Name: "Terror", Description: "medo", Tone: "sombrio"},
			{Language: "pt-BR", Name: "Mistério", Description: "enigma"},
		},
		"en": {
			{Language: "en", Name: "Horror", Description: "dread"},
		},
	}}}

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/genres?lang=en", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var out []map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 1 || out[0]["genre"] != "Horror" {
		t.Fatalf("unexpected genres: %+v", out)
	}
}

func TestGenreHandlerListUnknownLanguageFallsBack(t *testing.T) {
	handler := GenreHandler{Genres: memGenreStore{byLanguage: map[string][]models.Genre{
		"pt-BR": {{Language: "pt-BR", Name: "Terror"}},
	}}}

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/genres?lang=klingon", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var out []map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 1 || out[0]["genre"] != "Terror" {
		t.Fatalf("expected pt-BR fallback, got %+v", out)
	}
}

func TestGenreHandlerListWithoutDatabase(t *testing.T) {
	handler := GenreHandler{Genres: memGenreStore{disabled: true}}

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/genres", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty list, got %q", body)
	}
}
