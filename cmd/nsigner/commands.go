package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/openweb3-io/nsigner/builder"
	"github.com/openweb3-io/nsigner/cmd/nsigner/setup"
	"github.com/openweb3-io/nsigner/host/jsonrpc"
	"github.com/openweb3-io/nsigner/signer"
	"github.com/openweb3-io/nsigner/types"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// withSigner builds the configured signer and a context bounded by the
// configured request timeout.
func withSigner(cmd *cobra.Command) (context.Context, context.CancelFunc, signer.Signer, error) {
	cfg := setup.UnwrapConfig(cmd.Context())
	ctx, cancel := cmd.Context(), context.CancelFunc(func() {})
	if cfg.RequestTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
	}
	s, err := setup.LoadSigner(ctx, cfg)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return ctx, cancel, s, nil
}

func CmdPubkey() *cobra.Command {
	return &cobra.Command{
		Use:   "pubkey",
		Short: "Print the provider's public key.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel, s, err := withSigner(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			pk, err := s.PublicKey(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pk.String())
			return nil
		},
	}
}

func CmdEncrypt() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <pubkey> <plaintext>",
		Short: "Encrypt a message for a recipient.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipient, err := types.ParsePublicKey(args[0])
			if err != nil {
				return err
			}
			ctx, cancel, s, err := withSigner(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			ct, err := s.Encrypt(ctx, recipient, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ct)
			return nil
		},
	}
}

func CmdDecrypt() *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt <pubkey> <ciphertext>",
		Short: "Decrypt a message from a sender.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := types.ParsePublicKey(args[0])
			if err != nil {
				return err
			}
			ctx, cancel, s, err := withSigner(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			plain, err := s.Decrypt(ctx, sender, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), plain)
			return nil
		},
	}
}

func CmdSign() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Build an event for the provider's key and have it signed.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetInt("kind")
			content, _ := cmd.Flags().GetString("content")
			rawTags, _ := cmd.Flags().GetStringArray("tag")
			createdAt, _ := cmd.Flags().GetInt64("created-at")

			options := []builder.BuilderOption{}
			if createdAt != 0 {
				options = append(options, builder.WithCreatedAt(createdAt))
			}
			for _, raw := range rawTags {
				options = append(options, builder.WithTags(types.Tag(strings.Split(raw, ","))))
			}
			eventArgs, err := builder.NewEventArgs(types.Kind(kind), content, options...)
			if err != nil {
				return err
			}

			ctx, cancel, s, err := withSigner(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			unsigned, err := builder.Unsigned(ctx, s, eventArgs)
			if err != nil {
				return err
			}
			logrus.WithField("id", unsigned.ID().String()).Info("signing event")

			evt, err := s.SignEvent(ctx, unsigned)
			if err != nil {
				return err
			}
			bz, _ := json.MarshalIndent(evt, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return nil
		},
	}
	cmd.Flags().Int("kind", int(types.KindTextNote), "Event kind")
	cmd.Flags().String("content", "", "Event content")
	cmd.Flags().StringArray("tag", nil, "Tag as comma separated values, e.g. p,<pubkey>. Repeatable.")
	cmd.Flags().Int64("created-at", 0, "Unix timestamp, defaults to now")
	return cmd
}

func CmdDirectMessage() *cobra.Command {
	return &cobra.Command{
		Use:   "dm <pubkey> <message>",
		Short: "Encrypt a message for a recipient and sign it as a direct message event.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipient, err := types.ParsePublicKey(args[0])
			if err != nil {
				return err
			}
			ctx, cancel, s, err := withSigner(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			evt, err := builder.DirectMessage(ctx, s, recipient, args[1])
			if err != nil {
				return err
			}
			bz, _ := json.MarshalIndent(evt, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return nil
		},
	}
}

func CmdVerify() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <event.json|->",
		Short: "Check an event's id and signature.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			var evt types.Event
			if err := json.NewDecoder(r).Decode(&evt); err != nil {
				return fmt.Errorf("invalid event: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid %s\n", evt.ID())
			return nil
		},
	}
}

func CmdServe() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a local development key as a JSON-RPC provider.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup.UnwrapConfig(cmd.Context())
			listen, _ := cmd.Flags().GetString("listen")
			if listen == "" {
				listen = cfg.Listen
			}
			h, err := setup.NewLocalHost(cfg)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              listen,
				Handler:           jsonrpc.NewServer(h),
				ReadHeaderTimeout: 10 * time.Second,
			}
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				logrus.WithField("listen", listen).Info("serving development provider")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().String("listen", "", "Listen address, defaults to the configured one")
	return cmd
}
