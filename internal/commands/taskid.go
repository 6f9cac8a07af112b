package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"taskflow/internal/apperr"
	"taskflow/internal/exitcode"
	"taskflow/internal/service"
)

// ErrTaskIDRequired indicates no task id was provided.
var ErrTaskIDRequired = errors.New("task id required")

// ParseTaskID returns the task id in args. A leading "#" is ignored, so
// ids can be copied from list output or chat messages.
func ParseTaskID(args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrTaskIDRequired
	}
	if len(args) > 1 {
		return "", fmt.Errorf("unexpected argument: %s", args[1])
	}

	id := strings.TrimPrefix(strings.TrimSpace(args[0]), "#")
	if id == "" {
		return "", ErrTaskIDRequired
	}
	if strings.IndexFunc(id, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("invalid task id: %q", args[0])
	}
	return id, nil
}

// resolveTask parses the id in args and loads the task. On failure it
// reports the problem and returns the exit code.
func resolveTask(ctx context.Context, env *Env, args []string, errOut io.Writer) (service.Task, int, bool) {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError, false
	}

	task, err := env.Tasks.Load(ctx, id)
	if err != nil {
		// Demo lookups fail locally without a notification.
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindNotFound {
			fmt.Fprintf(errOut, "error: task not found: %s\n", id)
		}
		return service.Task{}, exitcode.FromError(err), false
	}
	return task, exitcode.Success, true
}
