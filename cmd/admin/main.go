// Command admin manages panel accounts directly against the database.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/forexfactory/site/internal/config"
	"github.com/forexfactory/site/internal/database"
	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/modules/auth"
	"github.com/urfave/cli/v3"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "admin",
		Usage: "Manage admin panel users",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: config.DefaultConfigPath, Usage: "Path to YAML config file"},
		},
		Commands: []*cli.Command{
			createUserCommand(),
			resetPasswordCommand(),
			listUsersCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openService(c *cli.Command) (*auth.Service, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return auth.NewService(db, cfg.Session.TTL), nil
}

func createUserCommand() *cli.Command {
	return &cli.Command{
		Name:    "create-user",
		Aliases: []string{"create-admin"},
		Usage:   "Create a panel user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "role", Value: models.RoleAdmin, Usage: "admin or editor"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			svc, err := openService(c)
			if err != nil {
				return err
			}
			u, err := svc.CreateUser(ctx, auth.CreateUserInput{
				Username: c.String("username"),
				Password: c.String("password"),
				Email:    c.String("email"),
				Name:     c.String("name"),
				Role:     c.String("role"),
			})
			if err != nil {
				return err
			}
			fmt.Printf("created %s user %q (id %d)\n", u.Role, u.Username, u.ID)
			return nil
		},
	}
}

func resetPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset-password",
		Usage: "Set a new password and sign the user out everywhere",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			svc, err := openService(c)
			if err != nil {
				return err
			}
			if err := svc.ResetPassword(ctx, c.String("username"), c.String("password")); err != nil {
				return err
			}
			fmt.Printf("password updated for %q\n", c.String("username"))
			return nil
		},
	}
}

func listUsersCommand() *cli.Command {
	return &cli.Command{
		Name:    "list-users",
		Aliases: []string{"list-admins"},
		Usage:   "List panel users",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "role", Usage: "filter by role"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			svc, err := openService(c)
			if err != nil {
				return err
			}
			users, err := svc.ListUsers(ctx, c.String("role"))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tEMAIL\tLAST LOGIN")
			for _, u := range users {
				last := "-"
				if u.LastLoginAt != nil {
					last = u.LastLoginAt.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, u.Email, last)
			}
			return tw.Flush()
		},
	}
}
