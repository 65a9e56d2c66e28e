package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/livetw/internal/config"
	"github.com/Paintersrp/livetw/internal/engine"
	"github.com/Paintersrp/livetw/internal/runtime/process"
)

// flaskBaseExcludePatterns keeps the flask reloader from restarting the app
// when generated dev assets change.
var flaskBaseExcludePatterns = []string{"*/**/dev.py"}

type devFlags struct {
	noLiveReload   bool
	liveReloadHost string
	liveReloadPort int

	noFlask              bool
	flaskApp             string
	flaskHost            string
	flaskPort            int
	flaskMode            string
	flaskExcludePatterns []string

	noTailwind     bool
	tailwindInput  string
	tailwindOutput string
	tailwindMinify bool
}

func newDevCmd(ctx *context) *cobra.Command {
	var flags devFlags

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Run the development server",
		Long: "Extended dev mode for flask apps. By default runs the flask app in debug\n" +
			"mode, tailwindcss in watch mode and the live reload server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(cmd, ctx, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noLiveReload, "no-live-reload", false, "Disable the live reload server")
	cmd.Flags().StringVar(&flags.liveReloadHost, "live-reload-host", "", "Hostname for the live reload server")
	cmd.Flags().IntVar(&flags.liveReloadPort, "live-reload-port", 0, "Port for the live reload server")

	cmd.Flags().BoolVar(&flags.noFlask, "no-flask", false, "Disable the flask server")
	cmd.Flags().StringVar(&flags.flaskApp, "flask-app", "", "Flask entrypoint")
	cmd.Flags().StringVar(&flags.flaskHost, "flask-host", "", "Hostname for the flask server")
	cmd.Flags().IntVar(&flags.flaskPort, "flask-port", 0, "Port for the flask server")
	cmd.Flags().StringVar(&flags.flaskMode, "flask-mode", "debug", "Flask server mode (debug or no-debug)")
	cmd.Flags().StringSliceVar(&flags.flaskExcludePatterns, "flask-exclude-patterns", nil, "Extra file exclude patterns for the flask reloader")

	cmd.Flags().BoolVar(&flags.noTailwind, "no-tailwind", false, "Disable tailwindcss generation (also disables live reload)")
	cmd.Flags().StringVar(&flags.tailwindInput, "tailwind-input", "", "Input path for the global css file")
	cmd.Flags().StringVar(&flags.tailwindOutput, "tailwind-output", "", "Output path for the generated css file")
	cmd.Flags().BoolVar(&flags.tailwindMinify, "tailwind-minify", false, "Minify the generated css file")

	return cmd
}

func runDev(cmd *cobra.Command, ctx *context, flags devFlags) error {
	setDefaultEnv("LIVETW_ENV", "development")

	cfg, err := ctx.loadConfig()
	if err != nil {
		return err
	}

	opts := devOptions(cfg, flags)
	opts.Runtime = process.New()
	opts.Output = ctx.console

	events := make(chan engine.Event, 64)
	opts.Events = events
	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		printEvents(ctx, events)
	}()

	ctx.console.Printf("Starting dev server...")
	orch := engine.New(opts)
	runErr := orch.Run(cmd.Context())

	// Every sender has unwound once Run returns; closing lets the printer
	// flush the remaining events before the farewell line.
	close(events)
	<-printerDone
	ctx.console.Printf("Exiting dev server...")

	return runErr
}

// devOptions resolves the effective role commands from the project config and
// flag overrides. Flags win over config; the live reload hub is only enabled
// when the tailwind watcher is, since reload events originate from it.
func devOptions(cfg *config.Config, flags devFlags) engine.Options {
	var opts engine.Options

	if !flags.noTailwind {
		input := flags.tailwindInput
		if input == "" {
			input = cfg.FullGlobalCSS()
		}
		output := flags.tailwindOutput
		if output == "" {
			output = cfg.FullTailwindDev()
		}
		command := []string{"tailwindcss", "--watch", "-i", input, "-o", output}
		if flags.tailwindMinify {
			command = append(command, "--minify")
		}
		opts.Builder = &engine.RoleSpec{Name: "twcss", Command: command}

		if !flags.noLiveReload {
			host := flags.liveReloadHost
			if host == "" {
				host = cfg.LiveReloadHost
			}
			port := flags.liveReloadPort
			if port == 0 {
				port = cfg.LiveReloadPort
			}
			opts.Hub = &engine.HubConfig{Host: host, Port: port}
		}
	}

	if !flags.noFlask {
		app := flags.flaskApp
		if app == "" {
			app = cfg.FlaskApp
		}
		command := []string{"flask", "--app", app, "run"}

		host := flags.flaskHost
		if host == "" {
			host = cfg.FlaskHost
		}
		if host != "" {
			command = append(command, "--host", host)
		}

		port := flags.flaskPort
		if port == 0 {
			port = cfg.FlaskPort
		}
		if port != 0 {
			command = append(command, "--port", strconv.Itoa(port))
		}

		if flags.flaskMode == "debug" {
			command = append(command, "--debug")
		}

		patterns := append([]string{}, flaskBaseExcludePatterns...)
		if len(flags.flaskExcludePatterns) > 0 {
			patterns = append(patterns, flags.flaskExcludePatterns...)
		} else {
			patterns = append(patterns, cfg.FlaskExcludePattern...)
		}
		command = append(command, "--exclude-patterns", strings.Join(patterns, ";"))

		opts.Server = &engine.RoleSpec{Name: "flask", Command: command}
	}

	return opts
}

func printEvents(ctx *context, events <-chan engine.Event) {
	for evt := range events {
		switch evt.Type {
		case engine.EventTypeReady:
			ctx.console.Successf("%s", evt.Message)
		case engine.EventTypeError:
			ctx.console.Errorf("%s: %v", evt.Message, evt.Err)
		case engine.EventTypeBroadcast:
			// Reload triggers are visible through the relayed builder output.
		default:
			ctx.console.Printf("%s", evt.Message)
		}
	}
}
