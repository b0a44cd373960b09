package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"

	gjournal "moneyflow/internal/journal/google"
)

func sheetsAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets-auth",
		Short: "Authorize the Google Sheets journal with a user account",
		Long: `sheets-auth runs the OAuth consent flow for the sheets journal and saves
the resulting token. Point GOOGLE_OAUTH_TOKEN_FILE at it to journal as that
user instead of a service account. The OAuth client must list
http://localhost:<port>/callback as an authorized redirect URI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := gjournal.LoadOAuthClient(
				viper.GetString("sheets.client_json"),
				viper.GetString("sheets.client_file"))
			if err != nil {
				return fmt.Errorf("%w: set --client-file or GOOGLE_OAUTH_CLIENT_FILE", err)
			}
			port := viper.GetInt("sheets.port")
			oc, err := gjournal.OAuthConfig(client, fmt.Sprintf("http://localhost:%d/callback", port))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("sheets.timeout"))
			defer cancel()

			tok, err := authorize(ctx, oc, port, func(url string) {
				fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to authorize:\n%s\n", url)
			})
			if err != nil {
				return err
			}

			path := viper.GetString("sheets.token_file")
			if err := gjournal.SaveToken(path, tok); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved token to %s\n", path)
			return nil
		},
	}

	cmd.Flags().String("client-file", "", "OAuth client JSON file (default $GOOGLE_OAUTH_CLIENT_FILE)")
	cmd.Flags().String("token-file", "token.json", "where to save the token (default $GOOGLE_OAUTH_TOKEN_FILE)")
	cmd.Flags().Int("port", 8085, "local port for the OAuth redirect")
	cmd.Flags().Duration("timeout", 5*time.Minute, "how long to wait for consent")

	_ = viper.BindPFlag("sheets.client_file", cmd.Flags().Lookup("client-file"))
	_ = viper.BindPFlag("sheets.token_file", cmd.Flags().Lookup("token-file"))
	_ = viper.BindPFlag("sheets.port", cmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("sheets.timeout", cmd.Flags().Lookup("timeout"))
	_ = viper.BindEnv("sheets.client_file", "GOOGLE_OAUTH_CLIENT_FILE")
	_ = viper.BindEnv("sheets.client_json", "GOOGLE_OAUTH_CLIENT_JSON")
	_ = viper.BindEnv("sheets.token_file", "GOOGLE_OAUTH_TOKEN_FILE")

	return cmd
}

type callbackResult struct {
	code string
	err  error
}

// callbackHandler delivers the first authorization code carrying state.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
			http.Error(w, "OAuth error: "+q.Get("error"), http.StatusBadRequest)
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		case q.Get("code") == "":
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		default:
			res.code = q.Get("code")
			fmt.Fprintln(w, "You may close this window and return to the terminal.")
		}
		select {
		case results <- res:
		default:
		}
	})
	return mux
}

// authorize serves the redirect on localhost until a code arrives, then
// exchanges it for a token.
func authorize(ctx context.Context, oc *oauth2.Config, port int, show func(url string)) (*oauth2.Token, error) {
	state := uuid.NewString()
	results := make(chan callbackResult, 1)

	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen for oauth callback: %w", err)
	}
	srv := &http.Server{Handler: callbackHandler(state, results), ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	show(oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))
	logger.Info("Waiting for OAuth consent", "redirect_url", oc.RedirectURL)

	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		tok, err := oc.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("token exchange: %w", err)
		}
		return tok, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.New("authorization timed out")
		}
		return nil, ctx.Err()
	}
}
