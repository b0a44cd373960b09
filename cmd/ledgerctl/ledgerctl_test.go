package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"moneyflow/internal/chart"
	"moneyflow/internal/core"
	"moneyflow/internal/journal/memory"
	"moneyflow/internal/ledger"
)

const sample = `category,description,amount
income,salary,100
# comments are skipped
expense,groceries,-40
expense,,5
gift,socks,3
income,bonus,12abc
expense,rent
`

func TestReplayCSV(t *testing.T) {
	l := ledger.New(ledger.WithIDGenerator(ledger.NewSequenceGenerator("tx")))

	rejected, err := replayCSV(strings.NewReader(sample), l)
	require.NoError(t, err)

	assert.Equal(t, 2, l.Len())
	assert.True(t, decimal.NewFromInt(60).Equal(l.Balance()), "balance = %s", l.Balance())

	lines := make([]int, 0, len(rejected))
	for _, r := range rejected {
		lines = append(lines, r.Line)
	}
	assert.Equal(t, []int{5, 6, 7, 8}, lines)
	assert.Contains(t, rejected[0].Error, "empty description")
	assert.Contains(t, rejected[1].Error, "unknown category")
	assert.Contains(t, rejected[2].Error, "invalid amount")
	assert.Contains(t, rejected[3].Error, "expected 3 fields")
}

func TestReplayCSVWithoutHeader(t *testing.T) {
	l := ledger.New()
	rejected, err := replayCSV(strings.NewReader("expense,coffee,2.50\n"), l)
	require.NoError(t, err)
	assert.Empty(t, rejected)
	assert.Equal(t, 1, l.Len())
}

func TestReplayCSVMalformed(t *testing.T) {
	_, err := replayCSV(strings.NewReader("income,\"unterminated,1\n"), ledger.New())
	assert.Error(t, err)
}

func TestReplayCmdJSON(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("output", "json")

	cmd := replayCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(sample))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-"})
	require.NoError(t, cmd.Execute())

	var got report
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "100.00", got.Income)
	assert.Equal(t, "40.00", got.Expense)
	assert.Equal(t, "60.00", got.Balance)
	assert.Equal(t, []string{"tx-1", "tx-2", chart.BalanceLabel}, got.Chart.Labels)
	assert.Equal(t, []float64{100, 0, 60}, got.Chart.Income())
	assert.Equal(t, []float64{0, 40, 0}, got.Chart.Expense())
	assert.Len(t, got.Rejected, 4)
}

func TestReplayCmdTable(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := replayCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader("income,salary,100\n"))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--id-prefix", "row", "-"})
	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.Contains(t, text, "Balance:")
	assert.Contains(t, text, "100.00")
	assert.Contains(t, text, "row-1")
	assert.Contains(t, text, chart.BalanceLabel)
	assert.NotContains(t, text, "REJECTED")
}

func TestOutputFormat(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	format, err := outputFormat()
	require.NoError(t, err)
	assert.Equal(t, "table", format)

	viper.Set("output", "JSON")
	format, err = outputFormat()
	require.NoError(t, err)
	assert.Equal(t, "json", format)

	viper.Set("output", "yaml")
	_, err = outputFormat()
	assert.Error(t, err)
}

func TestRebuildSession(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	entries := []core.JournalEntry{
		{
			SessionID:    "s-1",
			Transaction:  core.Transaction{ID: "a1", Description: "salary", Amount: decimal.NewFromInt(100), Category: core.Income},
			BalanceAfter: decimal.NewFromInt(100),
			RecordedAt:   at,
		},
		{
			SessionID:    "s-1",
			Transaction:  core.Transaction{ID: "b2", Description: "rent", Amount: decimal.NewFromInt(70), Category: core.Expense},
			BalanceAfter: decimal.NewFromInt(30),
			RecordedAt:   at.Add(time.Minute),
		},
	}
	for _, e := range entries {
		_, err := store.Append(ctx, e)
		require.NoError(t, err)
	}

	l, err := rebuildSession(ctx, store, "s-1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(30).Equal(l.Balance()))

	r := buildReport("s-1", l, nil)
	assert.Equal(t, []string{"a1", "b2", chart.BalanceLabel}, r.Chart.Labels)

	_, err = rebuildSession(ctx, store, "missing")
	assert.Error(t, err)
}

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"replay", "report", "sessions", "sheets-auth", "version"} {
		assert.True(t, names[want], "missing %s command", want)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("db"))
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		status   int
		wantCode string
		wantErr  bool
	}{
		{"code", "?state=s1&code=abc", http.StatusOK, "abc", false},
		{"denied", "?state=s1&error=access_denied", http.StatusBadRequest, "", true},
		{"wrong state", "?state=other&code=abc", http.StatusBadRequest, "", false},
		{"missing code", "?state=s1", http.StatusBadRequest, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(chan callbackResult, 1)
			rec := httptest.NewRecorder()
			callbackHandler("s1", results).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))

			assert.Equal(t, tt.status, rec.Code)
			select {
			case res := <-results:
				assert.Equal(t, tt.wantCode, res.code)
				assert.Equal(t, tt.wantErr, res.err != nil)
			default:
				assert.True(t, tt.wantCode == "" && !tt.wantErr, "expected a callback result")
			}
		})
	}
}

func TestAuthorizeTimesOut(t *testing.T) {
	oc := &oauth2.Config{
		ClientID:    "client",
		Endpoint:    oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: "https://accounts.example.com/token"},
		RedirectURL: "http://localhost/callback",
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var shown string
	_, err := authorize(ctx, oc, 0, func(url string) { shown = url })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Contains(t, shown, "access_type=offline")
}
