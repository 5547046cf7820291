package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"
)

func testKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return base64.StdEncoding.EncodeToString(key)
}

func TestCipherRoundTrip(t *testing.T) {
	cipher, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	plaintext := []byte(`{"access_token":"ya29.xxx","refresh_token":"1//yyy"}`)
	sealed, err := cipher.Seal(plaintext)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if sealed == string(plaintext) {
		t.Fatal("sealed blob must not equal plaintext")
	}

	opened, err := cipher.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(opened) != string(plaintext) {
		t.Fatalf("round trip mismatch: %q", opened)
	}
}

func TestCipherRejectsWrongKey(t *testing.T) {
	cipher, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	other, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	sealed, err := cipher.Seal([]byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	if _, err := other.Open(sealed); !errors.Is(err, ErrInvalidCiphertext) {
		t.Fatalf("expected ErrInvalidCiphertext, got %v", err)
	}
}

func TestCipherRejectsBadKeys(t *testing.T) {
	for _, key := range []string{"", "short", base64.StdEncoding.EncodeToString([]byte("too-short"))} {
		if _, err := NewCipher(key); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("expected ErrInvalidKey for %q, got %v", key, err)
		}
	}
}

func TestCipherRejectsCorruptBlob(t *testing.T) {
	cipher, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	for _, blob := range []string{"", "!!!", base64.StdEncoding.EncodeToString([]byte("tiny"))} {
		if _, err := cipher.Open(blob); !errors.Is(err, ErrInvalidCiphertext) {
			t.Fatalf("expected ErrInvalidCiphertext for %q, got %v", blob, err)
		}
	}
}
