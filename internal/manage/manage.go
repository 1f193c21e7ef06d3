// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package manage provides the administrative subcommands for teams and
// invitations.
package manage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"codeberg.org/oliverandrich/teamjoin/internal/config"
	"codeberg.org/oliverandrich/teamjoin/internal/repository"
	"codeberg.org/oliverandrich/teamjoin/internal/server"
	"codeberg.org/oliverandrich/teamjoin/internal/services/email"
	"codeberg.org/oliverandrich/teamjoin/internal/services/invite"
	"github.com/urfave/cli/v3"
)

// Commands returns the management subcommands.
func Commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "teams",
			Usage: "Manage teams",
			Commands: []*cli.Command{
				{
					Name:  "create",
					Usage: "Create a team",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "name", Usage: "Team name", Required: true},
					},
					Action: createTeam,
				},
			},
		},
		{
			Name:  "invitations",
			Usage: "Manage invitations",
			Commands: []*cli.Command{
				{
					Name:  "create",
					Usage: "Create an invitation and print its join link",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "team", Usage: "Team slug", Required: true},
						&cli.StringFlag{Name: "email", Usage: "Bind the invitation to this address and mail it"},
						&cli.DurationFlag{Name: "ttl", Value: invite.DefaultTTL, Usage: "How long the invitation stays valid"},
					},
					Action: createInvitation,
				},
				{
					Name:  "list",
					Usage: "List a team's invitations",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "team", Usage: "Team slug", Required: true},
					},
					Action: listInvitations,
				},
			},
		},
	}
}

func withApp(cmd *cli.Command, fn func(app *server.App) error) error {
	app, err := server.Bootstrap(config.NewFromCLI(cmd))
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func newInviteService(app *server.App) *invite.Service {
	var mailer invite.Mailer
	if app.Mailer != nil {
		mailer = app.Mailer
	}
	return invite.NewService(app.Repo, mailer, app.Config.Server.BaseURL)
}

func out(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

func createTeam(ctx context.Context, cmd *cli.Command) error {
	return withApp(cmd, func(app *server.App) error {
		team, err := newInviteService(app).CreateTeam(ctx, cmd.String("name"))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out(cmd), "Created team %q with slug %s\n", team.Name, team.Slug)
		return err
	})
}

func createInvitation(ctx context.Context, cmd *cli.Command) error {
	return withApp(cmd, func(app *server.App) error {
		issued, err := newInviteService(app).CreateInvitation(ctx, invite.InvitationParams{
			TeamSlug: cmd.String("team"),
			Email:    cmd.String("email"),
			TTL:      cmd.Duration("ttl"),
		})
		if issued == nil {
			return err
		}

		w := out(cmd)
		fmt.Fprintf(w, "Join link: %s\n", issued.JoinURL)
		fmt.Fprintf(w, "Expires:   %s\n", issued.Invitation.ExpiresAt.Format(time.RFC3339))
		if issued.Invitation.SentViaEmail && !issued.Mailed && err == nil {
			fmt.Fprintln(w, "SMTP is not configured, share the link yourself.")
		}
		return err
	})
}

func listInvitations(ctx context.Context, cmd *cli.Command) error {
	return withApp(cmd, func(app *server.App) error {
		team, err := app.Repo.GetTeamBySlug(ctx, cmd.String("team"))
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", invite.ErrTeamNotFound, cmd.String("team"))
		}
		if err != nil {
			return err
		}

		invitations, err := app.Repo.ListTeamInvitations(ctx, team.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tEMAIL\tEXPIRES\tSTATUS\tLINK")
		for _, inv := range invitations {
			bound := inv.BoundEmail()
			if bound == "" {
				bound = "-"
			}
			status := "valid"
			if inv.IsExpired(now) {
				status = "expired"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
				inv.ID, bound, inv.ExpiresAt.Format(time.RFC3339), status,
				email.JoinURL(app.Config.Server.BaseURL, inv.Token))
		}
		return tw.Flush()
	})
}
