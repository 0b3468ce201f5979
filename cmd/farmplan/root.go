package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/udisondev/farmplan/internal/config"
	"github.com/udisondev/farmplan/internal/data"
)

const configEnv = "FARMPLAN_CONFIG"

// app carries state shared by all subcommands.
type app struct {
	configPath string
	defsPath   string
	logLevel   string
	dsn        string
	noCache    bool
	jsonOutput bool

	cfg config.Planner
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "farmplan",
		Short: "Farm plot planner and crop growth simulator",
		Long: `farmplan searches crop mixes for a farm plot whose nutrient usage balances out
and projects the growth, stress and loot of single crops.

Environment Variables:
  FARMPLAN_CONFIG  Path to a YAML config file (default: config/farmplan.yaml)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (overrides FARMPLAN_CONFIG)")
	pf.StringVar(&a.defsPath, "defs", "", "farming defs document (JSON or YAML)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.dsn, "dsn", "", "PostgreSQL DSN of the plan run cache")
	pf.BoolVar(&a.noCache, "no-cache", false, "bypass the plan run cache")
	pf.BoolVar(&a.jsonOutput, "json", false, "output JSON instead of human-readable text")

	root.AddCommand(
		newPlanCmd(a),
		newSimCmd(a),
		newListCmd(a),
		newFixedCmd(a),
		newHistoryCmd(a),
	)
	return root
}

// setup loads config, applies persistent flag overrides and installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	path := resolveConfigPath(a.configPath)
	cfg, err := config.LoadPlanner(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.defsPath != "" {
		cfg.DefsPath = a.defsPath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.dsn != "" {
		cfg.DatabaseDSN = a.dsn
	}
	a.cfg = cfg

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)
	slog.Debug("config loaded", "path", path, "defs", cfg.DefsPath)
	return nil
}

func (a *app) loadDefs() (*data.FarmingDefs, error) {
	defs, err := data.LoadFarmingDefs(a.cfg.DefsPath)
	if err != nil {
		return nil, fmt.Errorf("loading farming defs: %w", err)
	}
	return defs, nil
}

// resolveConfigPath returns the config path from flag, env, or default (in priority order).
func resolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(configEnv); env != "" {
		return env
	}
	return "config/farmplan.yaml"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDims parses "WxH" (also "W,H") into two positive integers.
func parseDims(s string) (int, int, error) {
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == 'x' || r == ','
	})
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid dimensions %q: want WxH", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid dimensions %q: must be positive", s)
	}
	return w, h, nil
}
