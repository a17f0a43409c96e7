package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mercator-hq/interviewer/pkg/cli"
	"mercator-hq/interviewer/pkg/client"
	"mercator-hq/interviewer/pkg/config"
	"mercator-hq/interviewer/pkg/telemetry/logging"
)

const chatPrompt = "> "

var chatFlags struct {
	relayURL string
	style    string
	plain    bool
	message  string
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a running relay",
	Long: `Open an interactive chat session against a running relay.

Each line you enter is sent with the whole conversation so far. The reply is
rendered as markdown and redrawn in place while it streams. Enter /quit or
press Ctrl+D to leave.

Examples:
  # Chat with the relay on localhost
  interviewer chat

  # Chat with a remote relay
  interviewer chat --relay-url https://interviewer.example.com

  # Send a single message and print the reply without formatting
  interviewer chat --plain -m "Ask me about Go concurrency"`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatFlags.relayURL, "relay-url", "", "override relay base URL")
	chatCmd.Flags().StringVar(&chatFlags.style, "style", "", "override markdown style (auto, dark, light, notty)")
	chatCmd.Flags().BoolVar(&chatFlags.plain, "plain", false, "print replies without markdown rendering or redraws")
	chatCmd.Flags().StringVarP(&chatFlags.message, "message", "m", "", "send one message and exit")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if chatFlags.relayURL != "" {
		cfg.Client.RelayURL = chatFlags.relayURL
	}
	if chatFlags.style != "" {
		cfg.Client.Style = chatFlags.style
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("", "invalid configuration", err)
	}

	// Diagnostics go to stderr so they never break the in-place redraw.
	level := "error"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{Level: level, Format: "text", RedactSecrets: true, Writer: os.Stderr})
	if err != nil {
		return cli.NewCommandError("chat", err)
	}
	slog.SetDefault(logger.Logger)

	ctx, stop := cli.ShutdownContext(cmd.Context())
	defer stop()

	out := cmd.OutOrStdout()
	transport, err := client.NewHTTPTransport(cfg.Client.RelayURL)
	if err != nil {
		return cli.NewConfigError("client.relay_url", "invalid relay URL", err)
	}

	opts := client.SurfaceOptionsFromConfig(cfg.Client)
	opts.Plain = chatFlags.plain || !isTerminal(out)
	surface, err := client.NewTerminalSurface(out, opts)
	if err != nil {
		return cli.NewCommandError("chat", err)
	}

	session := client.NewSession(transport, surface)

	if chatFlags.message != "" {
		if err := session.Submit(ctx, chatFlags.message); err != nil {
			return cli.NewCommandError("chat", err)
		}
		return nil
	}

	return chatLoop(ctx, session, cmd.InOrStdin(), out, !opts.Plain)
}

// chatLoop submits each input line until EOF, /quit or ctx is done.
// Reply failures are already on the surface and do not end the loop.
func chatLoop(ctx context.Context, session *client.Session, in io.Reader, out io.Writer, prompt bool) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		if prompt {
			fmt.Fprint(out, chatPrompt)
		}

		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}

		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return nil
		}

		err := session.Submit(ctx, line)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, client.ErrReplyFailed):
			slog.Debug("reply failed")
		default:
			slog.Debug("reply stream failed", "error", err)
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
