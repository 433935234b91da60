package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/klokku/klokku-calendar/internal/app"
	"github.com/klokku/klokku-calendar/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const prompt = "calendar> "

type options struct {
	configPath string
	mode       string
}

// NewRootCommand builds the calendar command. Without arguments it reads commands from stdin,
// with a file argument it reads them from that file.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "calendar [command-file]",
		Short: "Manage timezone aware calendars from a command line",
		Long: `Reads calendar commands such as "create event", "print events" or "export cal"
one line at a time. In headless mode the commands come from a file that must end with exit.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommands(cmd, opts, args)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "./config/application.yaml", "path to the YAML configuration")
	cmd.Flags().StringVar(&opts.mode, "mode", string(app.ModeInteractive), "interactive or headless")

	cmd.AddCommand(newServeCommand(opts))
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCommands(cmd *cobra.Command, opts *options, args []string) error {
	mode, err := app.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	if mode == app.ModeHeadless && len(args) == 0 {
		return fmt.Errorf("headless mode needs a command file")
	}
	application, err := newApplication(opts)
	if err != nil {
		return err
	}

	session := app.Session{Mode: mode, In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open command file: %w", err)
		}
		defer f.Close()
		session.In = f
	}
	if mode == app.ModeInteractive && isTerminal(session.In) {
		session.Prompt = prompt
	}
	return application.Run(cmd.Context(), session)
}

func newApplication(opts *options) (*app.Application, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := setLogLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	return app.NewApplication(cfg)
}

// setLogLevel applies level unless LOG_LEVEL already chose one.
func setLogLevel(level string) error {
	if os.Getenv("LOG_LEVEL") != "" || level == "" {
		return nil
	}
	logrusLevel, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(logrusLevel)
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
