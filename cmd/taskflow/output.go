package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/service"
)

const timeLayout = "2006-01-02 15:04"

func printTasks(w io.Writer, tasks []domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tUPDATED")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.Status, t.Title, t.UpdatedAt.Format(timeLayout))
	}
	_ = tw.Flush()
}

func printTask(w io.Writer, t *domain.Task) {
	fmt.Fprintf(w, "#%d %s\n", t.ID, t.Title)
	fmt.Fprintf(w, "  status:  %s\n", t.Status)
	if t.Description != nil && *t.Description != "" {
		fmt.Fprintf(w, "  details: %s\n", *t.Description)
	}
	fmt.Fprintf(w, "  created: %s\n", t.CreatedAt.Format(timeLayout))
	fmt.Fprintf(w, "  updated: %s\n", t.UpdatedAt.Format(timeLayout))
}

func printUser(w io.Writer, u *domain.User) {
	fmt.Fprintf(w, "%s <%s>\n", u.DisplayName(), u.Email)
	fmt.Fprintf(w, "  id:     %d\n", u.ID)
	fmt.Fprintf(w, "  role:   %s\n", u.Role)
	fmt.Fprintf(w, "  active: %t\n", u.IsActive)
}

func printUsers(w io.Writer, users []domain.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tACTIVE")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.Email, u.DisplayName(), u.Role, u.IsActive)
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, now time.Time, tasks []domain.Task) {
	counts := map[domain.TaskStatus]int{}
	for _, t := range tasks {
		counts[t.Status]++
	}
	fmt.Fprintf(w, "[%s] %d tasks: %d to do, %d in progress, %d done\n",
		now.Format("15:04:05"), len(tasks),
		counts[domain.StatusTodo], counts[domain.StatusInProgress], counts[domain.StatusDone])
}

func expiryText(token string) string {
	exp, err := service.TokenExpiry(token)
	if err != nil {
		return "expiry unknown"
	}
	left := time.Until(exp).Round(time.Second)
	if left <= 0 {
		return fmt.Sprintf("expired at %s", exp.Local().Format(timeLayout))
	}
	return fmt.Sprintf("expires in %s", left)
}

// describeError turns client errors into a message fit for a terminal.
func describeError(err error) string {
	var apiErr *domain.APIError
	switch {
	case service.IsAuthExpired(err):
		return "your session has expired, please log in again"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "incorrect email or password"
	case errors.Is(err, domain.ErrNetwork):
		return "cannot reach the TaskFlow API (" + err.Error() + ")"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	}
	return err.Error()
}

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
