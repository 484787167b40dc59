package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/smartinvoice/internal/offline"
	"github.com/roach88/smartinvoice/internal/record"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(SaveResult{ID: "inv-1", Fingerprint: "abc"})
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"id": "inv-1", "fingerprint": "abc"}, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeReadFailed, "read failed", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeReadFailed, resp.Error.Code)
	assert.Equal(t, "read failed", resp.Error.Message)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Error("E001", "something broke", map[string]string{"id": "inv-1"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.Contains(t, buf.String(), "something broke")
	assert.NotContains(t, buf.String(), "Details:")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("E001", "something broke", map[string]string{"id": "inv-1"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			errOut := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Imported %d invoice(s)", 3)

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Contains(t, errOut.String(), "Imported 3 invoice(s)")
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestClassify(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"missing id", fmt.Errorf("save: %w", record.ErrMissingKey), ErrCodeInvalidInput, ExitCommandError},
		{"unavailable", &offline.Error{Kind: offline.ErrStorageUnavailable, Op: "get all invoices", Err: cause}, ErrCodeStorageUnavailable, ExitCommandError},
		{"save on unavailable", &offline.Error{
			Kind: offline.ErrPersistFailed,
			Op:   "save invoice",
			Err:  &offline.Error{Kind: offline.ErrStorageUnavailable, Op: "open database", Err: cause},
		}, ErrCodeStorageUnavailable, ExitCommandError},
		{"persist", &offline.Error{Kind: offline.ErrPersistFailed, Op: "save invoice", Err: cause}, ErrCodePersistFailed, ExitFailure},
		{"read", &offline.Error{Kind: offline.ErrReadFailed, Op: "get all invoices", Err: cause}, ErrCodeReadFailed, ExitFailure},
		{"delete", &offline.Error{Kind: offline.ErrDeleteFailed, Op: "delete invoice", Err: cause}, ErrCodeDeleteFailed, ExitFailure},
		{"other", cause, ErrCodeGeneric, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, exit := classify(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantExit, exit)
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad input")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", WrapExitError(ExitCommandError, "x", nil))))
}
