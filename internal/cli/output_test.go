package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rickgao/eedraws/internal/api"
	"github.com/rickgao/eedraws/internal/report"
	"github.com/rickgao/eedraws/internal/store"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "bad"))))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"network", fmt.Errorf("run: %w", &api.NetworkError{URL: "u", StatusCode: 503}), ExitCommandError},
		{"parse", &api.ParseError{URL: "u", Err: errors.New("eof")}, ExitCommandError},
		{"io", fmt.Errorf("save dataset: %w", &store.IOError{Op: "write", Path: "p", Err: errors.New("disk full")}), ExitCommandError},
		{"empty", report.ErrEmptyDataset, ExitFailure},
		{"canceled", context.Canceled, ExitFailure},
		{"exit error kept", NewExitError(ExitCommandError, "config"), ExitCommandError},
		{"other", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.err)
			assert.Equal(t, tt.code, GetExitCode(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, classify(nil))
}

func TestClassify_EmptyDatasetMessage(t *testing.T) {
	err := classify(report.ErrEmptyDataset)
	assert.Equal(t, report.ErrEmptyDataset.Error(), err.Error())
}

func TestExitError(t *testing.T) {
	inner := errors.New("inner")
	err := WrapExitError(ExitCommandError, "outer", inner)

	assert.Equal(t, "outer: inner", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "bare", NewExitError(ExitFailure, "bare").Error())
}

func TestOutputFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	assert.NoError(t, f.Error(NewExitError(ExitCommandError, "bad")))
	assert.JSONEq(t, `{"status":"error","error":{"code":2,"message":"bad"}}`, buf.String())

	buf.Reset()
	f.Format = "text"
	assert.NoError(t, f.Error(errors.New("bad")))
	assert.Empty(t, buf.String(), "text errors are printed by main")
}

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"y", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			var out bytes.Buffer
			c := PromptConfirmer{In: strings.NewReader(tt.input), Out: &out}

			got, err := c.Confirm("Update now?")
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Update now? [y/N]: ", out.String())
		})
	}
}

func TestAutoConfirmer(t *testing.T) {
	ok, err := AutoConfirmer(true).Confirm("anything")
	assert.NoError(t, err)
	assert.True(t, ok)
}
