package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/send"
	"github.com/pkg/errors"
	trackjs "github.com/trackjs/trackjs-go"
	"github.com/urfave/cli"
)

func main() {
	app := buildApp()
	grip.EmergencyFatal(app.Run(os.Args))
}

func buildApp() *cli.App {
	app := cli.NewApp()
	app.Name = "trackjs"
	app.Usage = "submit diagnostic reports to the TrackJS capture service"
	app.Version = trackjs.AgentVersion
	app.Commands = []cli.Command{
		sendCommand(),
	}
	return app
}

func sendCommand() cli.Command {
	const (
		tokenFlagName       = "token"
		applicationFlagName = "application"
		codeVersionFlagName = "code-version"
		severityFlagName    = "severity"
		messageFlagName     = "message"
		metaFlagName        = "meta"
		sessionFlagName     = "session"
		userFlagName        = "user"
	)

	return cli.Command{
		Name:  "send",
		Usage: "send a single report",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:   tokenFlagName,
				Usage:  "account capture token",
				EnvVar: "TRACKJS_TOKEN",
			},
			cli.StringFlag{
				Name:   applicationFlagName,
				Usage:  "application identifier within the account",
				EnvVar: "TRACKJS_APPLICATION",
			},
			cli.StringFlag{
				Name:  codeVersionFlagName,
				Usage: "deployed code revision to report under",
			},
			cli.StringFlag{
				Name:  severityFlagName,
				Usage: "report severity (error, warn, info, debug, log)",
				Value: string(trackjs.SeverityError),
			},
			cli.StringFlag{
				Name:  messageFlagName,
				Usage: "report message",
			},
			cli.StringSliceFlag{
				Name:  metaFlagName,
				Usage: "metadata entry as key=value, repeatable",
			},
			cli.StringFlag{
				Name:  sessionFlagName,
				Usage: "session identifier to attach to the report",
			},
			cli.StringFlag{
				Name:  userFlagName,
				Usage: "user identifier to attach to the report",
			},
		},
		Before: func(c *cli.Context) error {
			if err := grip.SetSender(send.MakePlainLogger()); err != nil {
				return errors.Wrap(err, "setting up logger")
			}
			if c.String(tokenFlagName) == "" {
				return errors.New("capture token must be specified")
			}
			if c.String(messageFlagName) == "" {
				return errors.New("report message must be specified")
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			severity, err := trackjs.ParseSeverity(c.String(severityFlagName))
			if err != nil {
				return err
			}
			metadata, err := parseMetadata(c.StringSlice(metaFlagName))
			if err != nil {
				return err
			}

			reporter, err := trackjs.NewReporter(trackjs.ReporterOptions{
				Credentials: trackjs.Credentials{
					Token:       c.String(tokenFlagName),
					Application: c.String(applicationFlagName),
					CodeVersion: c.String(codeVersionFlagName),
				},
				Scope: trackjs.Scope{
					SessionID: c.String(sessionFlagName),
					UserID:    c.String(userFlagName),
				},
			})
			if err != nil {
				return errors.Wrap(err, "constructing reporter")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			id, err := reporter.Report(ctx, severity, c.String(messageFlagName), metadata)
			if err != nil {
				return errors.Wrap(err, "sending report")
			}

			fmt.Println(id.String())
			return nil
		},
	}
}

func parseMetadata(pairs []string) (map[string]string, error) {
	metadata := map[string]string{}
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, errors.Errorf("malformed metadata entry '%s', expected key=value", pair)
		}
		metadata[key] = value
	}
	return metadata, nil
}
