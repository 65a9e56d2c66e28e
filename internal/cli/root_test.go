package cli

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/Paintersrp/livetw/internal/config"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root, _ := newRootCommand()

	for _, name := range []string{"dev", "build", "init"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("subcommand %q not registered: %v", name, err)
		}
	}
}

func TestRootCommandConfigFlagOverridesPath(t *testing.T) {
	root, ctx := newRootCommand()

	if ctx.configFile != config.DefaultFile {
		t.Fatalf("default config file = %q", ctx.configFile)
	}
	if err := root.PersistentFlags().Set("config", "etc/livetw.toml"); err != nil {
		t.Fatalf("set config flag: %v", err)
	}
	if ctx.configFile != "etc/livetw.toml" {
		t.Fatalf("config file = %q after override", ctx.configFile)
	}
}

func TestLoadConfigMissingFileSuggestsInit(t *testing.T) {
	chdir(t, t.TempDir())
	_, ctx := newRootCommand()

	_, err := ctx.loadConfig()
	if !errors.Is(err, config.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "livetw init") {
		t.Fatalf("error does not point at init: %v", err)
	}
}

func TestSetDefaultEnvDoesNotClobber(t *testing.T) {
	t.Setenv("LIVETW_TEST_ENV", "operator")
	setDefaultEnv("LIVETW_TEST_ENV", "fallback")
	if got := os.Getenv("LIVETW_TEST_ENV"); got != "operator" {
		t.Fatalf("env = %q, operator value clobbered", got)
	}

	os.Unsetenv("LIVETW_TEST_ENV")
	setDefaultEnv("LIVETW_TEST_ENV", "fallback")
	if got := os.Getenv("LIVETW_TEST_ENV"); got != "fallback" {
		t.Fatalf("env = %q, default not applied", got)
	}
}
