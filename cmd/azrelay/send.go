package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"relayhq/azrelay/pkg/cli"
	"relayhq/azrelay/pkg/proxy"
	"relayhq/azrelay/pkg/telemetry/logging"
)

var sendFlags struct {
	output string
}

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Relay one message and print the reply",
	Long: `Send a single message to the configured deployment without starting the
server. The reply, or the error the HTTP endpoint would have returned, is
printed to stdout; logs go to stderr.

Examples:
  azrelay send "How can I reduce plastic waste?"
  azrelay send --output json "What is a plastic boat?"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.NewCommandError("send", sendOnce(cmd, args[0]))
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendFlags.output, "output", "o", "text", "output format: text, json, yaml")
}

// errRelayFailed is returned after a failed relay has been printed.
var errRelayFailed = errors.New("relay failed")

// sendResult mirrors what POST /api/messages would have returned.
type sendResult struct {
	Status   int    `json:"status" yaml:"status"`
	Response string `json:"response,omitempty" yaml:"response,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (r sendResult) String() string {
	if r.Error != "" {
		return fmt.Sprintf("✗ %d %s", r.Status, r.Error)
	}
	return r.Response
}

func sendOnce(cmd *cobra.Command, message string) error {
	format, err := cli.ParseFormat(sendFlags.output)
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	cfg, err := loadConfig(ctx, cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logCfg := logging.FromConfig(cfg.Telemetry.Logging, cfg.Upstream.APIKey)
	logCfg.Writer = cmd.ErrOrStderr()
	logger, err := logging.New(logCfg)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	stack, err := newRelayStack(cfg, logger, nil, nil)
	if err != nil {
		return err
	}
	defer stack.Close()

	result := relayOnce(ctx, stack.service, message, logger)
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if result.Error != "" {
		return errRelayFailed
	}
	return nil
}

// relayer is the part of relay.Service used by send.
type relayer interface {
	Relay(ctx context.Context, message string) (string, error)
}

func relayOnce(ctx context.Context, r relayer, message string, logger *slog.Logger) sendResult {
	reply, err := r.Relay(logging.WithRequestID(ctx, "cli"), message)
	if err != nil {
		status, errResp := proxy.HandleError(err)
		logger.Debug("send failed", "status", status, logging.Err(err))
		return sendResult{Status: status, Error: errResp.Error}
	}
	return sendResult{Status: http.StatusOK, Response: reply}
}
