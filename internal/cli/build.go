package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/livetw/internal/relay"
	"github.com/Paintersrp/livetw/internal/runtime"
	"github.com/Paintersrp/livetw/internal/runtime/process"
)

func newBuildCmd(ctx *context) *cobra.Command {
	var (
		input    string
		output   string
		noMinify bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build tailwindcss for production",
		Long:  "Build the tailwindcss of the project as a single minified css file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			setDefaultEnv("LIVETW_BUILD", "TRUE")

			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}

			if input == "" {
				input = cfg.FullGlobalCSS()
			}
			if output == "" {
				output = cfg.FullTailwindProd()
			}

			command := []string{"tailwindcss", "-i", input, "-o", output}
			if !noMinify {
				command = append(command, "--minify")
			}

			ctx.console.Printf("Building tailwindcss for production...")

			spec := runtime.StartSpec{Role: "twcss", Command: command}
			handle, err := process.New().Start(cmd.Context(), spec)
			if err != nil {
				return err
			}

			// An interrupt mid-build kills the process group like dev does.
			done := make(chan struct{})
			defer close(done)
			go func() {
				select {
				case <-cmd.Context().Done():
					_ = handle.Terminate()
				case <-done:
				}
			}()

			rel := relay.Relay{Tag: spec.Role, Out: ctx.console}
			rel.Run(handle.Output())

			if err := handle.Wait(); err != nil {
				ctx.console.Errorf("Tailwind build for production failed")
				return fmt.Errorf("tailwind build: %w", err)
			}

			ctx.console.Successf("Tailwind build for production ready")
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input path, accepts glob patterns")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path")
	cmd.Flags().BoolVar(&noMinify, "no-minify", false, "Do not minify the output")

	return cmd
}
