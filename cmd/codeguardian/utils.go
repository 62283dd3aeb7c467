package codeguardian

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	semver3 "github.com/blang/semver"
	semver "github.com/blang/semver/v4"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/codeguardian/codeguardian/internal/client"
	"github.com/codeguardian/codeguardian/internal/config"
	"github.com/codeguardian/codeguardian/internal/logging"
	"github.com/codeguardian/codeguardian/internal/update"
)

// settings are the effective values after applying CLI > local > global.
type settings struct {
	apiURL       string
	timeout      time.Duration
	noColor      bool
	language     string
	failOn       string
	exportFormat string
	exportDir    string
	logLevel     string
}

var (
	cfg           settings
	local, global config.FileConfig
)

// loadConfigs reads the global and project-local files. A missing file is
// not an error; a malformed one is.
func loadConfigs() error {
	var err error
	if global, err = config.LoadGlobal(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("global config: %w", err)
	}
	wd, _ := os.Getwd()
	if local, err = config.LoadLocal(wd); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("local config: %w", err)
	}
	return nil
}

func resolve() settings {
	s := settings{
		apiURL:       pickString(flagAPIURL, local.APIURL, global.APIURL),
		timeout:      pickDuration(flagTimeout, local.TimeoutDuration(), global.TimeoutDuration()),
		noColor:      pickBool(flagNoColor, local.NoColor, global.NoColor),
		language:     pickString("", local.Language, global.Language),
		failOn:       pickString("", local.FailOn, global.FailOn),
		exportFormat: pickString("", local.ExportFormat, global.ExportFormat),
		exportDir:    pickString("", local.ExportDir, global.ExportDir),
		logLevel:     pickString(flagLogLevel, local.LogLevel, global.LogLevel),
	}
	if s.apiURL == "" {
		s.apiURL = client.DefaultBaseURL
	}
	if s.timeout == 0 {
		s.timeout = client.DefaultTimeout
	}
	if !isTerminal(os.Stdout) || os.Getenv("NO_COLOR") != "" {
		s.noColor = true
	}
	return s
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := loadConfigs(); err != nil {
		return err
	}
	cfg = resolve()
	if _, err := logging.Setup(logging.Options{Level: cfg.logLevel, JSON: flagLogJSON, NoColor: cfg.noColor || !isTerminal(os.Stderr)}); err != nil {
		return err
	}
	log.Debug().Str("api_url", cfg.apiURL).Dur("timeout", cfg.timeout).Msg("configuration resolved")

	if flagSelfUpdate {
		if err := selfUpdate(); err != nil {
			return fmt.Errorf("self-update: %w", err)
		}
		fmt.Fprintln(os.Stderr, "updated to latest; re-run command")
		os.Exit(0)
	}
	return nil
}

func newClient() *client.Client {
	return client.New(cfg.apiURL,
		client.WithTimeout(cfg.timeout),
		client.WithLogger(log.Logger),
		client.WithUserAgent("codeguardian/"+version),
	)
}

// updateChecker is replaced in tests.
var updateChecker = update.Checker{}

// startUpdateCheck looks up the latest release in the background. The
// returned func prints a notice to w if the lookup has already finished and
// never waits for it. Nothing runs unless interactive is set.
func startUpdateCheck(ctx context.Context, w io.Writer, interactive bool) func() {
	if flagNoUpdateCheck || !interactive {
		return func() {}
	}
	checker := updateChecker
	found := make(chan string, 1)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		latest, newer, err := checker.Check(ctx, version)
		if err != nil {
			log.Debug().Err(err).Msg("update check failed")
			return
		}
		if newer {
			found <- latest
		}
	}()
	return func() {
		select {
		case latest := <-found:
			fmt.Fprintf(w, "(new version available: v%s)  run 'codeguardian --self-update' to upgrade\n", latest)
		default:
		}
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func selfUpdate() error {
	v := version
	// Use build info if tag overridden at build-time
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(v) == 0 {
				v = s.Value
			}
		}
	}
	ver, err := semver.ParseTolerant(v)
	if err != nil {
		ver = semver.MustParse("0.0.0")
	}
	latest, err := selfupdate.UpdateSelf(semver3.MustParse(ver.String()), update.Repo)
	if err != nil {
		return err
	}
	log.Info().Str("version", latest.Version.String()).Msg("self-update complete")
	return nil
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickDuration(cli, local, global time.Duration) time.Duration {
	if cli != 0 {
		return cli
	}
	if local != 0 {
		return local
	}
	return global
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}
