package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/foodplannery/internal/auth"
	"github.com/julianstephens/foodplannery/internal/keyring"
	"github.com/julianstephens/foodplannery/internal/lockfile"
	"github.com/julianstephens/foodplannery/internal/logger"
	"github.com/julianstephens/foodplannery/internal/storage"
)

// hints are printed under the error for failures the user can fix directly
var hints = []struct {
	target error
	hint   string
}{
	{auth.ErrNotAuthenticated, "Run 'foodplannery login --phone <number>' first."},
	{auth.ErrNoPendingCode, "Request a new code with 'foodplannery login --phone <number>'."},
	{auth.ErrCodeExpired, "Request a new code with 'foodplannery login --phone <number>'."},
	{storage.ErrNotInitialized, "Run 'foodplannery init' to create the storage."},
	{lockfile.ErrLocked, "Close the other foodplannery session and try again."},
	{keyring.ErrNotFound, "Store a connection with 'foodplannery db set-connection <conn>'."},
}

// Hint returns a follow-up suggestion for known errors, or "" if there is none
func Hint(err error) string {
	for _, h := range hints {
		if stderrors.Is(err, h.target) {
			return h.hint
		}
	}
	return ""
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\n       " + hint
	}
	return msg
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
