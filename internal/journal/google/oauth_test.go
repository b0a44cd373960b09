package google

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	applog "moneyflow/internal/log"
)

const testClientJSON = `{"installed":{
	"client_id":"client-1.apps.googleusercontent.com",
	"client_secret":"secret",
	"redirect_uris":["http://localhost"],
	"auth_uri":"https://accounts.google.com/o/oauth2/auth",
	"token_uri":"https://oauth2.googleapis.com/token"}}`

func TestOAuthConfig(t *testing.T) {
	cfg, err := OAuthConfig([]byte(testClientJSON), "http://localhost:8085/callback")
	if err != nil {
		t.Fatalf("OAuthConfig: %v", err)
	}
	if cfg.ClientID != "client-1.apps.googleusercontent.com" {
		t.Errorf("ClientID = %q", cfg.ClientID)
	}
	if cfg.RedirectURL != "http://localhost:8085/callback" {
		t.Errorf("RedirectURL = %q", cfg.RedirectURL)
	}
	url := cfg.AuthCodeURL("state", oauth2.AccessTypeOffline)
	if !strings.Contains(url, "access_type=offline") || !strings.Contains(url, "spreadsheets") {
		t.Errorf("unexpected consent url %s", url)
	}

	if _, err := OAuthConfig([]byte("{}"), ""); err == nil {
		t.Error("expected error for empty client")
	}
}

func TestTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	tok := &oauth2.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}
	if err := SaveToken(path, tok); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("token file mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if got.AccessToken != "access-1" || got.RefreshToken != "refresh-1" || !got.Expiry.Equal(tok.Expiry) {
		t.Errorf("LoadToken = %+v", got)
	}

	empty := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(empty, []byte(`{"token_type":"Bearer"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadToken(empty); err == nil {
		t.Error("expected error for token without credentials")
	}
	if _, err := LoadToken(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing token file")
	}
}

func TestUserTokenSourceServesSavedToken(t *testing.T) {
	oc, err := OAuthConfig([]byte(testClientJSON), "")
	if err != nil {
		t.Fatalf("OAuthConfig: %v", err)
	}
	saved := &oauth2.Token{AccessToken: "access-1", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}

	// a valid token is served without contacting the token endpoint
	got, err := oc.TokenSource(context.Background(), saved).Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if got.AccessToken != "access-1" {
		t.Errorf("AccessToken = %q", got.AccessToken)
	}
}

func TestNew_WithOAuthToken(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token.json")
	if err := SaveToken(tokenFile, &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: time.Now().Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	logger := applog.New(applog.Config{Output: io.Discard})

	w, err := New(context.Background(), Config{
		SpreadsheetID:   "sheet-1",
		OAuthClientJSON: testClientJSON,
		OAuthTokenFile:  tokenFile,
	}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w.svc == nil || w.sheet != "Journal" {
		t.Errorf("unexpected writer %+v", w)
	}

	_, err = New(context.Background(), Config{
		SpreadsheetID:  "sheet-1",
		OAuthTokenFile: tokenFile,
	}, logger)
	if err == nil || !strings.Contains(err.Error(), "oauth client") {
		t.Errorf("expected missing client error, got %v", err)
	}
}
