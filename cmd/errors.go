package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/tasktag/tasktag/types"
)

// HandleFatalError handles unrecoverable errors that should terminate the
// application.
func HandleFatalError(userMsg string, technicalErr error) {
	PrintError(userMsg, technicalErr)
	os.Exit(1)
}

// PrintError prints an error message without exiting. Structured errors
// render their code and details; with --verbose the full technical error is
// shown instead of the friendly message.
func PrintError(userMsg string, technicalErr error) {
	var te *types.TaskError
	if errors.As(technicalErr, &te) {
		fmt.Fprintln(os.Stderr, errorStyle().Render(fmt.Sprintf("[%s] %s", te.Code, te.Message)))
		if viper.GetBool("verbose") && len(te.Details) > 0 {
			for k, v := range te.Details {
				fmt.Fprintf(os.Stderr, "  %s: %v\n", k, v)
			}
		}
		return
	}
	if viper.GetBool("verbose") && technicalErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", technicalErr)
	} else {
		fmt.Fprintln(os.Stderr, userMsg)
	}
}

// LogError logs a diagnostic to stderr when verbose mode is on.
func LogError(msg string, err error) {
	if viper.GetBool("verbose") {
		if err != nil {
			fmt.Fprintf(os.Stderr, "[DEBUG] %s: %v\n", msg, err)
		} else {
			fmt.Fprintf(os.Stderr, "[DEBUG] %s\n", msg)
		}
	}
}
