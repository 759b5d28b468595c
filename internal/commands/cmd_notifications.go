package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/whimsicalfrog/frogshop/internal/core/notify"
	"github.com/whimsicalfrog/frogshop/internal/core/styles"
	"github.com/whimsicalfrog/frogshop/internal/shop"
	"github.com/whimsicalfrog/frogshop/pkg/iojson"
)

type NotificationsCmd struct {
	flags *Flags
	app   *shop.App

	// flags
	jsonOutput bool
	limit      int
	yes        bool
}

// NewNotificationsCmd creates a new notifications command
func NewNotificationsCmd(flags *Flags, app *shop.App) *NotificationsCmd {
	return &NotificationsCmd{flags: flags, app: app}
}

// Register adds the notifications command to the application
func (cmd *NotificationsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "notifications",
		Aliases: []string{"notif"},
		Usage:   "Notification history commands",
		Commands: []*cli.Command{
			{
				Name:        "ls",
				Usage:       "List past notifications, newest first",
				UsageText:   "frogshop notifications ls [--json] [--limit N]",
				Description: "Shows every notification the console has displayed. Use --json for one object per line.",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
					&cli.IntFlag{
						Name:        "limit",
						Usage:       "show at most N notifications (0 for all)",
						Destination: &cmd.limit,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "clear",
				Usage:     "Delete the notification history",
				UsageText: "frogshop notifications clear [--yes]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "yes",
						Aliases:     []string{"y"},
						Usage:       "skip the confirmation prompt",
						Destination: &cmd.yes,
					},
				},
				Action: cmd.runClear,
			},
		},
	})

	return app
}

// notificationInfo is the JSON output format for notifications ls --json.
type notificationInfo struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (cmd *NotificationsCmd) runList(ctx context.Context, c *cli.Command) error {
	items, err := cmd.app.History.History(ctx)
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}
	if cmd.limit > 0 && len(items) > cmd.limit {
		items = items[:cmd.limit]
	}

	out := stdout(c)

	if cmd.jsonOutput {
		infos := make([]notificationInfo, len(items))
		for i, n := range items {
			infos[i] = notificationInfo{
				ID:        n.ID,
				Kind:      string(n.Kind),
				Title:     n.Title,
				Message:   n.Message,
				CreatedAt: n.CreatedAt,
			}
		}
		return iojson.WriteLines(out, infos)
	}

	if len(items) == 0 {
		notices(c, cmd.app.Logger).Infof("No notifications yet")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tKIND\tTITLE\tMESSAGE")
	for _, n := range items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.CreatedAt.Format(time.DateTime), n.Kind, n.Title, n.Message)
	}
	return w.Flush()
}

func (cmd *NotificationsCmd) runClear(ctx context.Context, c *cli.Command) error {
	out := notices(c, cmd.app.Logger)

	if !cmd.yes {
		if !isTerminal(stdout(c)) {
			return fmt.Errorf("refusing to clear history without a terminal; pass --yes")
		}
		confirmed := false
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Clear notification history?").
					Affirmative("Clear").
					Negative("Cancel").
					Value(&confirmed),
			),
		).WithTheme(styles.FormTheme()).Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return fmt.Errorf("confirm: %w", err)
		}
		if !confirmed {
			return nil
		}
	}

	count, err := cmd.app.Notifications.Count(ctx)
	if err != nil {
		return fmt.Errorf("count notifications: %w", err)
	}
	if err := cmd.app.Notifications.Clear(ctx); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	_, _ = out.Show(fmt.Sprintf("Removed %d notification(s)", count), notify.KindSuccess, notify.Options{Title: "History"})
	return nil
}
