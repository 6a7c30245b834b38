package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/infrastructure/queue"
	"github.com/taskflow/client/pkg/logger"
)

func (a *app) tasksCommand(ctx context.Context, args []string) error {
	if !a.session.Snapshot().IsAuthenticated() {
		return errNotLoggedIn
	}
	if len(args) == 0 {
		return fmt.Errorf("tasks: missing subcommand (list, get, create, update, delete, status)")
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return a.listTasks(ctx, rest)
	case "get":
		return a.getTask(ctx, rest)
	case "create":
		return a.createTask(ctx, rest)
	case "update":
		return a.updateTask(ctx, rest)
	case "delete":
		return a.deleteTask(ctx, rest)
	case "status":
		return a.bulkStatus(ctx, rest)
	}
	return fmt.Errorf("tasks: unknown subcommand %q", sub)
}

func (a *app) listTasks(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tasks list", flag.ContinueOnError)
	status := fs.String("status", "", "filter by status")
	search := fs.String("search", "", "search title and description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filters := domain.TaskFilters{Search: *search}
	if *status != "" {
		s, err := domain.ParseTaskStatus(*status)
		if err != nil {
			return err
		}
		filters.Status = s
	}

	if err := a.tasks.SetFilters(ctx, filters); err != nil {
		return err
	}
	printTasks(a.out, a.tasks.Tasks())
	return nil
}

func (a *app) getTask(ctx context.Context, args []string) error {
	id, err := singleID(args)
	if err != nil {
		return err
	}
	task, err := a.taskAPI.Get(ctx, id)
	if err != nil {
		return err
	}
	printTask(a.out, task)
	return nil
}

// taskFlags collects the optional fields shared by create and update.
type taskFlags struct {
	fs          *flag.FlagSet
	title       string
	description string
	status      string
}

func newTaskFlags(name string) *taskFlags {
	tf := &taskFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	tf.fs.StringVar(&tf.title, "title", "", "task title")
	tf.fs.StringVar(&tf.description, "description", "", "task description")
	tf.fs.StringVar(&tf.status, "status", "", "task status (todo, in_progress, done)")
	return tf
}

func (tf *taskFlags) set() map[string]bool {
	seen := map[string]bool{}
	tf.fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	return seen
}

func (tf *taskFlags) parsedStatus() (*domain.TaskStatus, error) {
	if !tf.set()["status"] {
		return nil, nil
	}
	s, err := domain.ParseTaskStatus(tf.status)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (a *app) createTask(ctx context.Context, args []string) error {
	tf := newTaskFlags("tasks create")
	if err := tf.fs.Parse(args); err != nil {
		return err
	}

	in := domain.TaskCreate{Title: strings.TrimSpace(tf.title)}
	if tf.set()["description"] {
		in.Description = &tf.description
	}
	status, err := tf.parsedStatus()
	if err != nil {
		return err
	}
	in.Status = status
	if err := a.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, validationMessage(err))
	}

	task, err := a.tasks.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created task %d\n", task.ID)
	printTask(a.out, task)
	return nil
}

func (a *app) updateTask(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: task id is required", domain.ErrValidation)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	tf := newTaskFlags("tasks update")
	if err := tf.fs.Parse(args[1:]); err != nil {
		return err
	}

	set := tf.set()
	var in domain.TaskUpdate
	if set["title"] {
		title := strings.TrimSpace(tf.title)
		in.Title = &title
	}
	if set["description"] {
		in.Description = &tf.description
	}
	if in.Status, err = tf.parsedStatus(); err != nil {
		return err
	}
	if in.Title == nil && in.Description == nil && in.Status == nil {
		return fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	if err := a.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, validationMessage(err))
	}

	task, err := a.tasks.Update(ctx, id, in)
	if err != nil {
		return err
	}
	printTask(a.out, task)
	return nil
}

func (a *app) deleteTask(ctx context.Context, args []string) error {
	id, err := singleID(args)
	if err != nil {
		return err
	}
	if err := a.tasks.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted task %d\n", id)
	return nil
}

// bulkStatus moves several tasks to one status through the sharded
// dispatcher and reports each outcome.
func (a *app) bulkStatus(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: usage: tasks status <id>[,<id>...] <status>", domain.ErrValidation)
	}
	ids, err := parseIDs(args[0])
	if err != nil {
		return err
	}
	status, err := domain.ParseTaskStatus(args[1])
	if err != nil {
		return err
	}

	changes := make([]queue.StatusChange, 0, len(ids))
	for _, id := range ids {
		changes = append(changes, queue.StatusChange{TaskID: id, Status: status})
	}
	results := queue.NewDispatcher(0, a.tasks, logger.Component("queue")).Apply(ctx, changes)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(a.out, "task %d: %s\n", r.Change.TaskID, describeError(r.Err))
			continue
		}
		fmt.Fprintf(a.out, "task %d: %s\n", r.Task.ID, r.Task.Status)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d status changes failed", failed, len(results))
	}
	return nil
}

func singleID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: exactly one task id is required", domain.ErrValidation)
	}
	return parseID(args[0])
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid task id %q", domain.ErrValidation, s)
	}
	return id, nil
}

// parseIDs accepts a comma-separated list and drops duplicates, keeping the
// first occurrence.
func parseIDs(s string) ([]int64, error) {
	var ids []int64
	seen := map[int64]bool{}
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := parseID(part)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no task ids given", domain.ErrValidation)
	}
	return ids, nil
}
