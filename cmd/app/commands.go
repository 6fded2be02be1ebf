package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/keyvault/cmd/app/commands"
	"github.com/allisson/keyvault/internal/app"
	"github.com/allisson/keyvault/internal/config"
	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
)

// withContainer loads the configuration, builds a container for one command and shuts it down
// afterwards.
func withContainer(
	ctx context.Context,
	fn func(cfg *config.Config, container *app.Container) error,
) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()
	return fn(cfg, container)
}

func getCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the vault API and metrics servers",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Apply the backup store migrations for DB_DRIVER",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(cfg *config.Config, container *app.Container) error {
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				})
			},
		},
		{
			Name:  "create-master-key",
			Usage: "Generate a vault master key, optionally wrapped by a KMS key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-provider",
					Usage: "KMS provider (awskms, azurekeyvault, gcpkms, hashivault, localsecrets)",
				},
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Usage: "KMS key URI (e.g. base64key://..., gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(cfg *config.Config, container *app.Container) error {
					return commands.RunCreateMasterKey(
						ctx,
						cryptoService.NewKMSService(),
						container.Logger(),
						commands.Stdout,
						cmd.String("kms-provider"),
						cmd.String("kms-key-uri"),
					)
				})
			},
		},
		{
			Name:  "create-bootstrap-secret",
			Usage: "Generate the secret that gates POST /admin/init and print its hash",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(cfg *config.Config, container *app.Container) error {
					return commands.RunCreateBootstrapSecret(
						container.SecretService(),
						commands.Stdout,
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "verify-backup",
			Usage: "Check that every key in a stored backup opens under the configured master key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Required: true,
					Usage:    "Backup id as listed by GET /admin/backups",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(cfg *config.Config, container *app.Container) error {
					repo, err := container.BackupRepository()
					if err != nil {
						return err
					}
					box, err := container.CipherBox()
					if err != nil {
						return err
					}
					return commands.RunVerifyBackup(
						ctx,
						repo,
						box,
						container.Logger(),
						commands.Stdout,
						cmd.String("id"),
					)
				})
			},
		},
	}
}
