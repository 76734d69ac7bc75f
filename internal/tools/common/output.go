package common

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
)

type CIResult struct {
	OK      bool     `json:"ok"`
	Title   string   `json:"title"`
	Details []string `json:"details,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func PrintCIResult(ok bool, title string, details []string, err error) {
	writeCIResult(os.Stdout, ok, title, details, err)
}

func writeCIResult(w io.Writer, ok bool, title string, details []string, err error) {
	result := CIResult{OK: ok, Title: title, Details: details}
	if err != nil {
		result.Error = err.Error()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}

// Finish prints the CI result when requested, records the run and exits with
// exitCode on failure.
func Finish(ci bool, tool, command string, details []string, err error, exitCode int) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	observability.RecordToolCommandRun(context.Background(), tool, command, outcome)
	if ci {
		PrintCIResult(err == nil, tool+" "+command, details, err)
	}
	if err != nil {
		os.Exit(exitCode)
	}
}
