package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/ericfisherdev/threadpanel/internal/adapter/driving/tui"
	"github.com/ericfisherdev/threadpanel/internal/application"
	"github.com/ericfisherdev/threadpanel/internal/domain/model"
)

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Open the thread interactively",
		Action: withApp(true, func(ctx context.Context, a *app, _ *cli.Context) error {
			interval, err := a.cfg.RefreshInterval()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			bridge := tui.NewBridge(pagePath(a))
			forms := application.NewFormToggler("", tui.BottomForm)
			ctrl := a.controller(bridge, forms)
			refresh := application.NewRefreshService(a.threads, a.changes, a.cfg.Subject(), interval, bridge.ThreadSink())

			m := tui.NewModel(ctx, a.thread(), bridge, tui.Services{
				Controller: ctrl,
				Refresh:    refresh,
				Flash:      a.flash,
			})
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
			bridge.Attach(p)

			go bridge.Run(ctx)
			go refresh.Start(ctx)

			_, err = p.Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		}),
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the thread",
		Action: withApp(false, func(ctx context.Context, a *app, c *cli.Context) error {
			detail, err := a.threads.Load(ctx, a.cfg.Subject())
			if err != nil {
				return err
			}
			out := c.App.Writer
			if detail.Blocked {
				fmt.Fprintln(out, "comments are blocked")
			}
			for _, cm := range detail.Flatten() {
				state := ""
				if !cm.IsApproved() {
					state = " [draft]"
				}
				fmt.Fprintf(out, "%s%s (%s)%s\n", strings.Repeat("  ", cm.Depth), cm.AuthorName, cm.ID, state)
				for _, line := range strings.Split(application.ExtractPlainText(cm.BodyHTML), "\n") {
					fmt.Fprintf(out, "%s  %s\n", strings.Repeat("  ", cm.Depth), line)
				}
			}
			return nil
		}),
	}
}

func commentCommand() *cli.Command {
	return &cli.Command{
		Name:      "comment",
		Usage:     "Post a comment, or a reply with --reply-to",
		ArgsUsage: "TEXT",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "reply-to", Usage: "reply to comment `ID`"},
			&cli.StringFlag{Name: "success-message", Usage: "message shown after the page reloads"},
			&cli.StringFlag{Name: "email", Usage: "email of an anonymous commenter"},
			&cli.StringFlag{Name: "username", Usage: "name of an anonymous commenter"},
			&cli.BoolFlag{Name: "consent", Usage: "accept the portal's privacy terms"},
		},
		Action: withApp(false, func(ctx context.Context, a *app, c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if text == "" {
				return errors.New("comment text is required")
			}
			consent := ""
			if c.Bool("consent") {
				consent = "on"
			}

			return oneShot(a, c, func(ctx context.Context, ctrl *application.ThreadController) {
				if id := c.String("reply-to"); id != "" {
					ctrl.SaveReply(ctx, id, text)
					return
				}
				ctrl.SubmitForm(ctx, model.CommentForm{
					Content:        text,
					Email:          c.String("email"),
					Username:       c.String("username"),
					Consent:        consent,
					SuccessMessage: c.String("success-message"),
				})
			})(ctx)
		}),
	}
}

func approveCommand() *cli.Command {
	return idCommand("approve", "Approve a comment", func(ctx context.Context, ctrl *application.ThreadController, id string) {
		ctrl.ApproveComment(ctx, id)
	})
}

func draftCommand() *cli.Command {
	return idCommand("draft", "Move a comment back to draft", func(ctx context.Context, ctrl *application.ThreadController, id string) {
		ctrl.DraftComment(ctx, id)
	})
}

func deleteCommand() *cli.Command {
	cmd := idCommand("delete", "Delete a comment, optionally notifying its author", func(ctx context.Context, ctrl *application.ThreadController, id string) {
		ctrl.RemoveComment(ctx, id)
	})
	cmd.Flags = []cli.Flag{
		&cli.StringFlag{Name: "subject", Usage: "subject of the notice sent to the author"},
		&cli.StringFlag{Name: "body", Usage: "body of the notice sent to the author"},
	}
	inner := cmd.Action
	cmd.Action = func(c *cli.Context) error {
		subject, body := c.String("subject"), c.String("body")
		if (subject == "") != (body == "") {
			return errors.New("--subject and --body must be given together")
		}
		return inner(c)
	}
	return cmd
}

func blockCommand() *cli.Command {
	return &cli.Command{
		Name:  "block",
		Usage: "Block new comments on the subject",
		Action: withApp(false, func(ctx context.Context, a *app, c *cli.Context) error {
			return oneShot(a, c, func(ctx context.Context, ctrl *application.ThreadController) {
				ctrl.BlockComments(ctx)
			})(ctx)
		}),
	}
}

func unblockCommand() *cli.Command {
	return &cli.Command{
		Name:  "unblock",
		Usage: "Allow new comments on the subject again",
		Action: withApp(false, func(ctx context.Context, a *app, c *cli.Context) error {
			return oneShot(a, c, func(ctx context.Context, ctrl *application.ThreadController) {
				ctrl.UnblockComments(ctx)
			})(ctx)
		}),
	}
}

func flashCommand() *cli.Command {
	return &cli.Command{
		Name:  "flash",
		Usage: "Print and clear messages waiting for the next page load",
		Action: withApp(false, func(ctx context.Context, a *app, c *cli.Context) error {
			for _, n := range a.flash.Deliver(ctx) {
				printNotice(c.App.Writer, n)
			}
			return nil
		}),
	}
}

// idCommand builds a one-shot command taking a comment id argument.
func idCommand(name, usage string, fn func(ctx context.Context, ctrl *application.ThreadController, id string)) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "ID",
		Action: withApp(false, func(ctx context.Context, a *app, c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("%s: comment ID is required", name)
			}
			return oneShot(a, c, func(ctx context.Context, ctrl *application.ThreadController) {
				if c.IsSet("subject") {
					ctrl.SetConfirmationFields(id, c.String("subject"), c.String("body"))
				}
				fn(ctx, ctrl, id)
			})(ctx)
		}),
	}
}

// oneShot binds a controller to a console page, runs one handler and turns
// the notices it produced into the command result.
func oneShot(a *app, c *cli.Context, fn func(ctx context.Context, ctrl *application.ThreadController)) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		page := newConsolePage(c.App.Writer, pagePath(a))
		ctrl := a.controller(page, application.NewFormToggler(""))
		return runOneShot(ctx, page, ctrl, a.flash, fn)
	}
}

// runOneShot runs fn on a freshly bound controller. When fn navigated or
// reloaded the page, the page load that follows delivers the flash relay,
// so a message persisted for the next page is printed and counts toward
// the outcome.
func runOneShot(
	ctx context.Context,
	page *consolePage,
	ctrl *application.ThreadController,
	flash *application.FlashService,
	fn func(ctx context.Context, ctrl *application.ThreadController),
) error {
	ctrl.Bind(nil)
	fn(ctx, ctrl)
	ctrl.Teardown()

	if page.pendingLoad() {
		flash.DeliverTo(ctx, page)
	}
	return page.outcome()
}

// pagePath is the location of the thread's page on the portal.
func pagePath(a *app) string {
	subject := a.cfg.Subject()
	switch subject.Type {
	case model.SubjectTypePackage:
		return "/dataset/" + subject.ID
	case model.SubjectTypeUser:
		return "/user/" + subject.ID
	default:
		return "/" + string(subject.Type) + "/" + subject.ID
	}
}
