// Package scaffold bootstraps a project for tailwind-driven live reload: it
// writes the livetw configuration file, the tailwind setup and the generated
// dev assets, and wires the live reload snippet into the base layout.
package scaffold

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Paintersrp/livetw/internal/cliutil"
	"github.com/Paintersrp/livetw/internal/config"
)

var (
	//go:embed resources/live_reload.js
	liveReloadScript string

	//go:embed resources/tailwind.config.js
	tailwindConfig string

	//go:embed resources/global.css
	globalCSS string

	//go:embed resources/layout.html
	layoutTemplate string
)

// TailwindConfigFile is the tailwind configuration expected at the project
// root.
const TailwindConfigFile = "tailwind.config.js"

// contentGlobRe locates the content array of an existing tailwind config so
// the templates glob can be appended without rewriting the rest of the file.
var contentGlobRe = regexp.MustCompile(`content:\s*\[([^\]]*)\]`)

// Options selects optional scaffolding steps.
type Options struct {
	// Force overwrites an existing livetw configuration file.
	Force bool
	// Gitignore appends the generated dev stylesheet to .gitignore.
	Gitignore bool
}

// ErrConfigExists reports that a configuration file is already present and
// Force was not set.
var ErrConfigExists = errors.New("configuration file already exists")

// Run performs the full initialization in the current working directory.
// Steps are ordered so a failure leaves earlier steps usable: config first,
// then tailwind, then generated files, then the layout.
func Run(con *cliutil.Console, cfg *config.Config, opts Options) error {
	con.Printf("Initializing livetw...")

	if err := writeConfig(con, cfg, opts.Force); err != nil {
		return err
	}
	if err := configureTailwind(con, cfg.FullTemplatesGlob()); err != nil {
		return err
	}
	if err := generateFiles(con, cfg); err != nil {
		return err
	}
	if err := ensureLayout(con, cfg); err != nil {
		return err
	}
	if opts.Gitignore {
		if err := updateGitignore(con, cfg); err != nil {
			return err
		}
	}

	con.Successf("Initialization completed")
	return nil
}

func writeConfig(con *cliutil.Console, cfg *config.Config, force bool) error {
	if _, err := os.Stat(config.DefaultFile); err == nil && !force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, config.DefaultFile)
	}
	if err := cfg.Save(config.DefaultFile); err != nil {
		return err
	}
	con.Printf("Wrote %s", config.DefaultFile)
	return nil
}

// configureTailwind creates tailwind.config.js, or appends the templates glob
// to the content array of an existing one. An existing config without a
// recognizable content array is left alone with a warning rather than failing
// the whole initialization.
func configureTailwind(con *cliutil.Console, contentGlob string) error {
	existing, err := os.ReadFile(TailwindConfigFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("read %s: %w", TailwindConfigFile, err)
		}
		generated := strings.ReplaceAll(tailwindConfig, "{content_glob_placeholder}", contentGlob)
		if err := os.WriteFile(TailwindConfigFile, []byte(generated), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", TailwindConfigFile, err)
		}
		con.Printf("Tailwindcss configured")
		return nil
	}

	con.Infof("Detected existing %s, updating content globs", TailwindConfigFile)
	updated, ok := AddContentGlob(string(existing), contentGlob)
	if !ok {
		con.Warnf("No content array found in %s", TailwindConfigFile)
		con.Warnf("Add %q to your content config manually", contentGlob)
		return nil
	}
	if err := os.WriteFile(TailwindConfigFile, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", TailwindConfigFile, err)
	}
	con.Printf("Tailwindcss configured")
	return nil
}

// AddContentGlob inserts glob into the content array of a tailwind config.
// It reports false when no content array is present. The glob is skipped when
// already listed.
func AddContentGlob(cfgText, glob string) (string, bool) {
	m := contentGlobRe.FindStringSubmatchIndex(cfgText)
	if m == nil {
		return cfgText, false
	}
	start, end := m[2], m[3]
	existing := cfgText[start:end]
	if strings.Contains(existing, "'"+glob+"'") || strings.Contains(existing, `"`+glob+`"`) {
		return cfgText, true
	}

	var entries string
	if strings.TrimSpace(existing) == "" {
		entries = fmt.Sprintf("'%s',", glob)
	} else {
		trimmed := strings.TrimRight(strings.TrimLeft(existing, "\n"), ", \t\n")
		entries = fmt.Sprintf("\n    %s,\n    '%s',\n  ", trimmed, glob)
	}
	return strings.TrimRight(cfgText[:start]+entries+cfgText[end:], "\n") + "\n", true
}

func generateFiles(con *cliutil.Console, cfg *config.Config) error {
	con.Printf("Generating files...")

	script := strings.ReplaceAll(liveReloadScript, "{live_reload_host_placeholder}", cfg.LiveReloadHost)
	script = strings.ReplaceAll(script, "{live_reload_port_placeholder}", strconv.Itoa(cfg.LiveReloadPort))

	files := []struct {
		path    string
		content string
	}{
		{cfg.FullLiveReloadFile(), script},
		{cfg.FullGlobalCSS(), globalCSS},
	}
	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(f.path), err)
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
	}

	con.Printf("Files generated")
	return nil
}

// LiveReloadSnippet renders the template block that loads the dev stylesheet
// and reload script during development and the minified stylesheet otherwise.
func LiveReloadSnippet(cfg *config.Config) string {
	devCSS := cfg.LivetwFolder + "/" + cfg.TailwindDev
	script := cfg.LivetwFolder + "/" + cfg.LiveReloadFile
	return strings.Join([]string{
		`{% if config.DEBUG %}`,
		`    <link rel="stylesheet" type="text/css" href="{{ url_for('static', filename='` + devCSS + `') }}">`,
		`    <script src="{{ url_for('static', filename='` + script + `') }}" defer></script>`,
		`  {% else %}`,
		`    <link rel="stylesheet" type="text/css" href="{{ url_for('static', filename='` + cfg.TailwindProd + `') }}">`,
		`  {% endif %}`,
	}, "\n")
}

// ensureLayout injects the live reload snippet into an existing base layout,
// or creates the layout from the bundled template when none exists. An
// existing layout without a closing head tag is an error since the snippet
// has nowhere to go.
func ensureLayout(con *cliutil.Console, cfg *config.Config) error {
	layoutPath := cfg.FullBaseLayout()
	snippet := LiveReloadSnippet(cfg)

	existing, err := os.ReadFile(layoutPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("read %s: %w", layoutPath, err)
		}
		if err := os.MkdirAll(filepath.Dir(layoutPath), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(layoutPath), err)
		}
		generated := strings.ReplaceAll(layoutTemplate, "{live_reload_template_placeholder}", snippet)
		if err := os.WriteFile(layoutPath, []byte(generated), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", layoutPath, err)
		}
		con.Printf("Base layout created at %s", layoutPath)
		return nil
	}

	layout := string(existing)
	if !strings.Contains(layout, "</head>") {
		return fmt.Errorf("layout %s has no </head> tag to inject into", layoutPath)
	}
	layout = strings.Replace(layout, "</head>", "  "+snippet+"\n</head>", 1)
	if err := os.WriteFile(layoutPath, []byte(layout), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", layoutPath, err)
	}
	con.Printf("Base layout updated")
	return nil
}

func updateGitignore(con *cliutil.Console, cfg *config.Config) error {
	entry := fmt.Sprintf("\n# livetw\n%s\n", cfg.FullTailwindDev())

	f, err := os.OpenFile(".gitignore", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open .gitignore: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("update .gitignore: %w", err)
	}

	con.Printf(".gitignore updated")
	return nil
}
