package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	githubinfra "github.com/m-mizutani/drover/pkg/infra/github"
)

// GitHub holds GitHub App configuration
type GitHub struct {
	WebhookSecret  string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKeyFile string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Required:    true,
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("DROVER_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Required:    true,
			Destination: &c.AppID,
			Sources:     cli.EnvVars("DROVER_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Required:    true,
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("DROVER_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key-file",
			Usage:       "Path to the GitHub App private key PEM file",
			Required:    true,
			Destination: &c.PrivateKeyFile,
			Sources:     cli.EnvVars("DROVER_GITHUB_PRIVATE_KEY_FILE"),
		},
	}
}

// OptionalFlags returns the same flags without the required constraint,
// for commands that only need GitHub credentials in some modes
func (c *GitHub) OptionalFlags() []cli.Flag {
	flags := c.Flags()
	for _, flag := range flags {
		switch f := flag.(type) {
		case *cli.StringFlag:
			f.Required = false
		case *cli.Int64Flag:
			f.Required = false
		}
	}
	return flags
}

// Validate checks that all credentials needed for dispatching are set
func (c *GitHub) Validate() error {
	if c.AppID == 0 || c.InstallationID == 0 || c.PrivateKeyFile == "" {
		return goerr.New("github-app-id, github-installation-id and github-private-key-file are required")
	}
	return nil
}

// Dispatcher builds an authenticated workflow dispatcher from the configuration
func (c *GitHub) Dispatcher() (interfaces.WorkflowDispatcher, error) {
	key, err := os.ReadFile(c.PrivateKeyFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read private key file", goerr.V("path", c.PrivateKeyFile))
	}

	return githubinfra.NewDispatcher(c.AppID, c.InstallationID, key)
}
