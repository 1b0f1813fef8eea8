package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/openweb3-io/nsigner/cmd/nsigner/setup"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:          "nsigner",
		Short:        "Sign and encrypt nostr events through a key custody provider",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			args, err := setup.ArgsFromCmd(cmd)
			if err != nil {
				return err
			}

			cfg, err := setup.LoadConfig(args)
			if err != nil {
				return err
			}

			if err := setup.InitLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
				return err
			}

			logrus.WithFields(logrus.Fields{
				"provider": cfg.Provider,
				"endpoint": cfg.Endpoint,
			}).Debug("config")

			cmd.SetContext(setup.CreateContext(cmd.Context(), cfg))
			return nil
		},
	}
	setup.AddArgs(cmd)

	cmd.AddCommand(CmdPubkey())
	cmd.AddCommand(CmdEncrypt())
	cmd.AddCommand(CmdDecrypt())
	cmd.AddCommand(CmdSign())
	cmd.AddCommand(CmdDirectMessage())
	cmd.AddCommand(CmdVerify())
	cmd.AddCommand(CmdServe())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
