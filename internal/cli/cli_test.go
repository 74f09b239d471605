package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/eedraws/internal/config"
	"github.com/rickgao/eedraws/internal/model"
	"github.com/rickgao/eedraws/internal/report"
	"github.com/rickgao/eedraws/internal/store"
)

const feedFixture = `{
  "rounds": [
    {
      "drawNumber": "301",
      "drawDate": "2024-01-24",
      "drawDateFull": "January 24, 2024",
      "drawName": "Canadian Experience Class",
      "drawSize": "1,040",
      "drawCRS": "475",
      "drawDateTime": "January 24, 2024 at 15:10:42 UTC",
      "dd18": "211,725"
    },
    {
      "drawNumber": "300",
      "drawDate": "2024-01-10",
      "drawDateFull": "January 10, 2024",
      "drawName": "No Program Specified",
      "drawSize": "1,510",
      "drawCRS": "546",
      "drawDateTime": "January 10, 2024 at 14:20:33 UTC"
    }
  ]
}`

var testNow = time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)

type stubConfirmer struct {
	answer  bool
	prompts []string
}

func (s *stubConfirmer) Confirm(prompt string) (bool, error) {
	s.prompts = append(s.prompts, prompt)
	return s.answer, nil
}

type testEnv struct {
	t       *testing.T
	dir     string
	cfgPath string
	status  atomic.Int32
	body    atomic.Value
	confirm *stubConfirmer
	mails   [][]byte
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, key := range []string{config.EnvSMTPServer, config.EnvSMTPPort, config.EnvSMTPUser, config.EnvSMTPPassword, config.EnvSMTPFrom, config.EnvSMTPTo} {
		t.Setenv(key, "")
	}

	e := &testEnv{t: t, dir: t.TempDir(), confirm: &stubConfirmer{}}
	e.status.Store(http.StatusOK)
	e.body.Store(feedFixture)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := int(e.status.Load())
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, e.body.Load().(string))
	}))
	t.Cleanup(server.Close)

	e.cfgPath = e.writeConfig(fmt.Sprintf(`
api:
  url: %s
  timeout: 2s
data:
  dir: %s
notify:
  smtp_host: smtp.example.test
  smtp_port: 2525
  from: bot@example.test
  to: [me@example.test]
`, server.URL, filepath.Join(e.dir, "Data")))
	return e
}

func (e *testEnv) writeConfig(content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, fmt.Sprintf("config%d.yaml", time.Now().UnixNano()))
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (e *testEnv) csvPath() string {
	return filepath.Join(e.dir, "Data", config.DefaultCSVFile)
}

func (e *testEnv) run(args ...string) (stdout, stderr string, err error) {
	e.t.Helper()
	cmd := NewRootCommandWithDeps(Deps{
		Now:       func() time.Time { return testNow },
		Confirmer: e.confirm,
		SendMail: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			e.mails = append(e.mails, msg)
			return nil
		},
	})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", e.cfgPath}, args...))

	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (e *testEnv) seed(draws ...model.Draw) {
	e.t.Helper()
	require.NoError(e.t, store.NewCSV(e.csvPath()).Save(draws))
}

func day(s string) time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "eedraws", cmd.Use)

	for _, name := range []string{"update", "report", "analyze", "notify", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	cfg := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfg)
	assert.Equal(t, "", cfg.DefValue)

	report, _, err := cmd.Find([]string{"report"})
	require.NoError(t, err)
	assert.NotNil(t, report.Flags().Lookup("no-check"))
}

func TestInvalidFormat(t *testing.T) {
	e := newTestEnv(t)

	_, _, err := e.run("--format", "xml", "version")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestUpdate(t *testing.T) {
	e := newTestEnv(t)

	stdout, _, err := e.run("update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Added 2 new draw(s)")

	draws, err := store.NewCSV(e.csvPath()).Load()
	require.NoError(t, err)
	require.Len(t, draws, 2)
	assert.Equal(t, 300, draws[0].Number)
	assert.Equal(t, 301, draws[1].Number)

	snapshot, err := os.ReadFile(filepath.Join(e.dir, "Data", config.DefaultSnapshotFile))
	require.NoError(t, err)
	assert.JSONEq(t, feedFixture, string(snapshot))

	stdout, _, err = e.run("update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Dataset is up to date (2 draws).")
}

func TestUpdate_KeepsLocalCopy(t *testing.T) {
	e := newTestEnv(t)
	e.seed(model.Draw{Number: 300, Date: day("2024-01-10"), Name: "Local", CRSCutoff: 999, Invitations: 1})

	_, _, err := e.run("update")
	require.NoError(t, err)

	draws, err := store.NewCSV(e.csvPath()).Load()
	require.NoError(t, err)
	require.Len(t, draws, 2)
	assert.Equal(t, "Local", draws[0].Name)
	assert.Equal(t, 999, draws[0].CRSCutoff)
}

func TestUpdate_JSON(t *testing.T) {
	e := newTestEnv(t)

	stdout, _, err := e.run("--format", "json", "update")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   UpdateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Added)
	assert.Equal(t, 2, resp.Data.Total)
	assert.NotEmpty(t, resp.Data.RunID)
	assert.False(t, resp.Data.Mirrored)
}

func TestUpdate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusServiceUnavailable, ""},
		{"not found", http.StatusNotFound, ""},
		{"missing rounds", http.StatusOK, `{"classes": ""}`},
		{"invalid json", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.status.Store(int32(tt.status))
			e.body.Store(tt.body)

			_, _, err := e.run("update")
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			_, statErr := os.Stat(e.csvPath())
			assert.True(t, errors.Is(statErr, os.ErrNotExist), "dataset should not be created")
		})
	}
}

func TestUpdate_JSONError(t *testing.T) {
	e := newTestEnv(t)
	e.status.Store(http.StatusBadGateway)

	stdout, _, err := e.run("--format", "json", "update")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ExitCommandError, resp.Error.Code)
}

func TestReport_NoCheck(t *testing.T) {
	e := newTestEnv(t)
	_, _, err := e.run("update")
	require.NoError(t, err)
	e.status.Store(http.StatusInternalServerError)

	stdout, _, err := e.run("report", "--no-check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "EXPRESS ENTRY DRAW #301")
	assert.Contains(t, stdout, "Date:         January 24, 2024")
	assert.Contains(t, stdout, "Invitations:  1,040")
	assert.Contains(t, stdout, "This draw happened 7 days ago.")
	assert.Contains(t, stdout, "Previous draw #300 on 2024-01-10 (CRS: 546)")
	assert.Empty(t, e.confirm.prompts)
}

func TestReport_OfflineFallsBackToLocal(t *testing.T) {
	e := newTestEnv(t)
	_, _, err := e.run("update")
	require.NoError(t, err)
	e.status.Store(http.StatusInternalServerError)

	stdout, stderr, err := e.run("report")
	require.NoError(t, err)
	assert.Contains(t, stdout, "EXPRESS ENTRY DRAW #301")
	assert.Contains(t, stderr, "could not check for new draws")
}

func TestReport_NewDrawsDeclined(t *testing.T) {
	e := newTestEnv(t)
	e.seed(model.Draw{Number: 300, Date: day("2024-01-10"), Name: "No Program Specified", CRSCutoff: 546, Invitations: 1510})
	e.confirm.answer = false

	stdout, _, err := e.run("report")
	require.NoError(t, err)
	require.Len(t, e.confirm.prompts, 1)
	assert.Contains(t, e.confirm.prompts[0], "1 new draw(s)")
	assert.Contains(t, stdout, "EXPRESS ENTRY DRAW #300")
	assert.Contains(t, stdout, "This draw happened 21 days ago.")
	assert.Contains(t, stdout, "No previous draw data available.")

	draws, err := store.NewCSV(e.csvPath()).Load()
	require.NoError(t, err)
	assert.Len(t, draws, 1, "declined update should not write")
}

func TestReport_NewDrawsAccepted(t *testing.T) {
	e := newTestEnv(t)
	e.seed(model.Draw{Number: 300, Date: day("2024-01-10"), CRSCutoff: 546, Invitations: 1510})
	e.confirm.answer = true

	stdout, _, err := e.run("report")
	require.NoError(t, err)
	assert.Contains(t, stdout, "EXPRESS ENTRY DRAW #301")

	draws, err := store.NewCSV(e.csvPath()).Load()
	require.NoError(t, err)
	assert.Len(t, draws, 2)
}

func TestReport_YesFlagSkipsPrompt(t *testing.T) {
	e := newTestEnv(t)

	stdout, _, err := e.run("--yes", "report")
	require.NoError(t, err)
	assert.Contains(t, stdout, "EXPRESS ENTRY DRAW #301")
	assert.Empty(t, e.confirm.prompts)
}

func TestReport_EmptyDatasetDeclined(t *testing.T) {
	e := newTestEnv(t)
	e.confirm.answer = false

	_, _, err := e.run("report", "--no-check")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "no draw data available")
	require.Len(t, e.confirm.prompts, 1)
	assert.Contains(t, e.confirm.prompts[0], "No draw data found")
}

func TestReport_EmptyDatasetDeclinedAfterCheck(t *testing.T) {
	e := newTestEnv(t)
	e.confirm.answer = false

	_, _, err := e.run("report")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Len(t, e.confirm.prompts, 1, "should ask only once")
}

func TestReport_EmptyDatasetAccepted(t *testing.T) {
	e := newTestEnv(t)
	e.confirm.answer = true

	stdout, _, err := e.run("report", "--no-check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "EXPRESS ENTRY DRAW #301")
}

func TestReport_EmptyDatasetOffline(t *testing.T) {
	e := newTestEnv(t)
	e.status.Store(http.StatusServiceUnavailable)

	_, _, err := e.run("report")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReport_JSON(t *testing.T) {
	e := newTestEnv(t)
	_, _, err := e.run("update")
	require.NoError(t, err)

	stdout, _, err := e.run("--format", "json", "report", "--no-check")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   report.Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, 301, resp.Data.Number)
	assert.Equal(t, "2024-01-24", resp.Data.Date)
	assert.Equal(t, 7, resp.Data.DaysSince)
	require.NotNil(t, resp.Data.Previous)
	assert.Equal(t, 300, resp.Data.Previous.Number)
}

func TestAnalyze(t *testing.T) {
	e := newTestEnv(t)
	_, _, err := e.run("update")
	require.NoError(t, err)

	stdout, _, err := e.run("analyze")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Draws analyzed: 2 (2024-01-10 to 2024-01-24)")
	assert.Contains(t, stdout, "Most common draw time: 2 PM - 4 PM UTC")

	data, err := os.ReadFile(filepath.Join(e.dir, "Data", config.DefaultAnalysisFile))
	require.NoError(t, err)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(data, &stats))
	assert.Equal(t, float64(2), stats["draws"].(map[string]any)["total"])

	data, err = os.ReadFile(filepath.Join(e.dir, "Data", config.DefaultTimeAnalysisFile))
	require.NoError(t, err)
	var times map[string]any
	require.NoError(t, json.Unmarshal(data, &times))
	assert.Equal(t, float64(2), times["total_draws_with_times"])
}

func TestAnalyze_EmptyDataset(t *testing.T) {
	e := newTestEnv(t)

	_, _, err := e.run("analyze")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestNotify(t *testing.T) {
	e := newTestEnv(t)
	e.seed(model.Draw{Number: 300, Date: day("2024-01-10"), CRSCutoff: 546, Invitations: 1510})

	stdout, _, err := e.run("notify")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sent")
	require.Len(t, e.mails, 1)
	assert.Contains(t, string(e.mails[0]), "Subject: Express Entry Draw #301: 1,040 invitations, CRS 475")

	draws, err := store.NewCSV(e.csvPath()).Load()
	require.NoError(t, err)
	assert.Len(t, draws, 2)

	stdout, _, err = e.run("notify")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No new draws.")
	assert.Len(t, e.mails, 1, "nothing new should not send")
}

func TestNotify_DryRun(t *testing.T) {
	e := newTestEnv(t)

	stdout, _, err := e.run("notify", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Subject: Express Entry Draw #301")
	assert.Contains(t, stdout, "2 new draws since the last check:")
	assert.Empty(t, e.mails)

	_, statErr := os.Stat(e.csvPath())
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "dry run should not write")
}

func TestNotify_MissingSMTPConfig(t *testing.T) {
	e := newTestEnv(t)
	e.cfgPath = e.writeConfig("data:\n  dir: " + filepath.Join(e.dir, "Data") + "\n")

	_, _, err := e.run("notify")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "notify.smtp_host is required")
}

func TestVersion(t *testing.T) {
	e := newTestEnv(t)

	stdout, _, err := e.run("version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "eedraws "))

	stdout, _, err = e.run("--format", "json", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"version"`)
}

func TestBadConfig(t *testing.T) {
	e := newTestEnv(t)
	e.cfgPath = filepath.Join(e.dir, "missing.yaml")

	_, _, err := e.run("update")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
