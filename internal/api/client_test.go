package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

const roundsFixture = `{
  "classes": "",
  "rounds": [
    {
      "drawNumber": "301",
      "drawDate": "2024-01-24",
      "drawDateFull": "January 24, 2024",
      "drawName": "Canadian Experience Class",
      "drawSize": "1,040",
      "drawCRS": "475",
      "drawText2": "Canadian Experience Class",
      "drawDateTime": "January 24, 2024 at 15:10:42 UTC",
      "drawCutOff": "January 19, 2024 at 18:00:32 UTC",
      "drawDistributionAsOn": "January 22, 2024",
      "dd1": "1,003", "dd2": "9,452", "dd18": "211,725"
    },
    {
      "drawNumber": 300,
      "drawDate": "2024-01-10",
      "drawDateFull": "January 10, 2024",
      "drawName": "No Program Specified",
      "drawSize": "1,510",
      "drawCRS": "546",
      "dd18": null
    }
  ]
}`

// TestNewClient tests client construction with various options.
func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://feed.example.com/rounds.json")

		if c.url != "https://feed.example.com/rounds.json" {
			t.Errorf("url = %q, want %q", c.url, "https://feed.example.com/rounds.json")
		}
		if c.httpClient.Timeout != DefaultTimeout {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with timeout option", func(t *testing.T) {
		c := NewClient("https://feed.example.com", WithTimeout(5*time.Second))
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
	})

	t.Run("with logger option", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		c := NewClient("https://feed.example.com", WithLogger(logger))
		if c.logger != logger {
			t.Error("logger not set correctly")
		}
	})

	t.Run("with custom HTTP client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		c := NewClient("https://feed.example.com", WithHTTPClient(customClient))
		if c.httpClient != customClient {
			t.Error("custom HTTP client not set")
		}
	})
}

func TestFetchRounds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q, want application/json", r.Header.Get("Accept"))
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "eedraws/") {
			t.Errorf("User-Agent = %q, want eedraws/...", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(roundsFixture))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	res, err := c.FetchRounds(context.Background())
	if err != nil {
		t.Fatalf("FetchRounds failed: %v", err)
	}

	if len(res.Draws) != 2 {
		t.Fatalf("len(Draws) = %d, want 2", len(res.Draws))
	}
	if string(res.Raw) != roundsFixture {
		t.Error("Raw should hold the unmodified response body")
	}

	// Feed order is preserved; sorting is the reconciler's job.
	first := res.Draws[0]
	if first.Number != 301 {
		t.Errorf("Draws[0].Number = %d, want 301", first.Number)
	}
	if first.Invitations != 1040 {
		t.Errorf("Draws[0].Invitations = %d, want 1040", first.Invitations)
	}
	if first.CRSCutoff != 475 {
		t.Errorf("Draws[0].CRSCutoff = %d, want 475", first.CRSCutoff)
	}
	if first.Pool["dd18"] != 211725 {
		t.Errorf("Draws[0].Pool[dd18] = %d, want 211725", first.Pool["dd18"])
	}

	second := res.Draws[1]
	if second.Number != 300 {
		t.Errorf("Draws[1].Number = %d, want 300 (numeric JSON value)", second.Number)
	}
	if second.Pool["dd18"] != 0 {
		t.Errorf("Draws[1].Pool[dd18] = %d, want 0 for null", second.Pool["dd18"])
	}
}

func TestGetRounds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(roundsFixture))
	}))
	defer server.Close()

	draws, err := NewClient(server.URL).GetRounds(context.Background())
	if err != nil {
		t.Fatalf("GetRounds failed: %v", err)
	}
	if len(draws) != 2 {
		t.Errorf("len(draws) = %d, want 2", len(draws))
	}
}

func TestFetchRounds_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantNet    bool
		wantParse  bool
		wantStatus int
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "oops", wantNet: true, wantStatus: 500},
		{name: "not found", status: http.StatusNotFound, body: "", wantNet: true, wantStatus: 404},
		{name: "invalid json", status: http.StatusOK, body: "<html>", wantParse: true},
		{name: "missing rounds key", status: http.StatusOK, body: `{"classes": ""}`, wantParse: true},
		{name: "wrong rounds type", status: http.StatusOK, body: `{"rounds": {"a": 1}}`, wantParse: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).FetchRounds(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}

			var netErr *NetworkError
			var parseErr *ParseError
			if tt.wantNet {
				if !errors.As(err, &netErr) {
					t.Fatalf("err = %v, want *NetworkError", err)
				}
				if netErr.StatusCode != tt.wantStatus {
					t.Errorf("StatusCode = %d, want %d", netErr.StatusCode, tt.wantStatus)
				}
			}
			if tt.wantParse && !errors.As(err, &parseErr) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
		})
	}
}

func TestFetchRounds_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url).FetchRounds(context.Background())

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
	if netErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport failure", netErr.StatusCode)
	}
}

func TestFetchRounds_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, WithTimeout(50*time.Millisecond))
	_, err := c.FetchRounds(context.Background())

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
}

func TestFetchRounds_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(roundsFixture))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.URL).FetchRounds(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
