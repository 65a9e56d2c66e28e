package cli

import (
	"github.com/spf13/cobra"

	"github.com/Paintersrp/livetw/internal/config"
	"github.com/Paintersrp/livetw/internal/scaffold"
)

func newInitCmd(ctx *context) *cobra.Command {
	var (
		force     bool
		gitignore bool

		flaskRoot       string
		staticFolder    string
		templatesFolder string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize livetw for the project",
		Long: "Initialize livetw in the current working directory. Writes the\n" +
			"configuration file and creates the tailwind setup, dev assets and base\n" +
			"layout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if flaskRoot != "" {
				cfg.FlaskRoot = flaskRoot
			}
			if staticFolder != "" {
				cfg.StaticFolder = staticFolder
			}
			if templatesFolder != "" {
				cfg.TemplatesFolder = templatesFolder
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return scaffold.Run(ctx.console, cfg, scaffold.Options{
				Force:     force,
				Gitignore: gitignore,
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	cmd.Flags().BoolVar(&gitignore, "gitignore", false, "Update .gitignore to exclude generated dev files")
	cmd.Flags().StringVar(&flaskRoot, "flask-root", "", "Project folder containing the flask app")
	cmd.Flags().StringVar(&staticFolder, "static-folder", "", "Static assets folder, relative to the flask root")
	cmd.Flags().StringVar(&templatesFolder, "templates-folder", "", "Templates folder, relative to the flask root")

	return cmd
}
