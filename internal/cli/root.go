package cli

import (
	stdcontext "context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/livetw/internal/cliutil"
	"github.com/Paintersrp/livetw/internal/config"
)

func NewRootCmd() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *context) {
	ctx := &context{
		configFile: config.DefaultFile,
		console:    cliutil.NewConsole(os.Stdout),
	}

	root := &cobra.Command{
		Use:   "livetw",
		Short: "Tailwindcss live reload dev server for flask projects",
	}

	root.PersistentFlags().
		StringVarP(&ctx.configFile, "config", "c", config.DefaultFile, "Path to project configuration")

	root.AddCommand(newDevCmd(ctx))
	root.AddCommand(newBuildCmd(ctx))
	root.AddCommand(newInitCmd(ctx))

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root, ctx
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// context carries state shared by every subcommand.
type context struct {
	configFile string
	console    *cliutil.Console
}

// loadConfig reads the project configuration, pointing the user at init when
// none exists yet.
func (c *context) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return nil, fmt.Errorf("%w (run 'livetw init' to configure the project)", err)
		}
		return nil, err
	}
	return cfg, nil
}

// setDefaultEnv sets key only when the environment does not define it, so an
// operator override always wins.
func setDefaultEnv(key, value string) {
	if _, ok := os.LookupEnv(key); !ok {
		_ = os.Setenv(key, value)
	}
}
