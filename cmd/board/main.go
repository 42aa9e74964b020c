package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/taskboard/backend/api/transport"
	"github.com/taskboard/backend/client/board"
	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/pkg/apiclient"
	"github.com/taskboard/backend/pkg/logger"
)

const usage = `taskboard client

Usage:
  board list                      show the board
  board add <title> [description] create a task
  board move <id> <status> [pos]  move a task to a column
  board rm <id>                   delete a task
  board profile                   show the caller's profile

Environment:
  TASKBOARD_API_URL  API base URL (default http://localhost:3000)
  TASKBOARD_TOKEN    bearer token (required)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	apiURL := os.Getenv("TASKBOARD_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:3000"
	}
	token := os.Getenv("TASKBOARD_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "TASKBOARD_TOKEN is not set")
		os.Exit(2)
	}

	zapLogger, err := logger.New(logger.Config{Level: "warn", Encoding: "console"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	api := apiclient.New(apiURL, func() string { return token })
	controller := board.NewController(api, 3*time.Second, zapLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, os.Args[1], os.Args[2:], api, controller); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string, api *apiclient.Client, controller *board.Controller) error {
	switch cmd {
	case "list":
		if err := controller.Refresh(ctx); err != nil {
			return err
		}
		printBoard(controller.Snapshot())
		return nil

	case "add":
		if len(args) < 1 {
			return fmt.Errorf("usage: board add <title> [description]")
		}
		req := transport.TaskCreateRequest{Title: args[0]}
		if len(args) > 1 {
			req.Description = &args[1]
		}
		task, err := controller.Create(ctx, req)
		if err != nil {
			return err
		}
		fmt.Printf("created %s (%s)\n", task.ID, task.Status)
		return nil

	case "move":
		if len(args) < 2 {
			return fmt.Errorf("usage: board move <id> <status> [pos]")
		}
		to, err := domain.ParseStatus(args[1])
		if err != nil {
			return err
		}
		pos := -1
		if len(args) > 2 {
			if pos, err = strconv.Atoi(args[2]); err != nil {
				return fmt.Errorf("pos must be a number")
			}
		}
		if err := controller.Refresh(ctx); err != nil {
			return err
		}
		from, ok := findColumn(controller.Snapshot(), args[0])
		if !ok {
			return domain.ErrTaskNotFound
		}
		action, err := controller.Move(ctx, args[0], from, to, pos)
		if err != nil {
			if action != nil && action.State == board.ActionReverted {
				fmt.Fprintln(os.Stderr, controller.Notice())
			}
			return err
		}
		fmt.Printf("moved %s to %s\n", args[0], to)
		return nil

	case "rm":
		if len(args) < 1 {
			return fmt.Errorf("usage: board rm <id>")
		}
		if err := controller.Refresh(ctx); err != nil {
			return err
		}
		if _, err := controller.Remove(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil

	case "profile":
		profile, err := api.GetProfile(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("id:    %s\nemail: %s\n", profile.ID, profile.Email)
		for k, v := range profile.Metadata {
			fmt.Printf("  %s: %v\n", k, v)
		}
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func findColumn(cols board.Columns, taskID string) (domain.Status, bool) {
	for status, tasks := range cols {
		for _, t := range tasks {
			if t.ID == taskID {
				return status, true
			}
		}
	}
	return "", false
}

func printBoard(cols board.Columns) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for _, status := range domain.Statuses {
		fmt.Fprintf(w, "== %s (%d)\n", status, len(cols[status]))
		for _, t := range cols[status] {
			due := "-"
			if t.DueDate != nil {
				due = t.DueDate.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t%s\tdue %s\n", t.ID, t.Title, due)
		}
	}
	w.Flush()
}
