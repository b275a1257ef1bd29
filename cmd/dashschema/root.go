package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/dashschema"
	"github.com/reoring/dashschema/catalog"
	"github.com/reoring/dashschema/i18n"
	"github.com/reoring/dashschema/internal/config"
	"github.com/reoring/dashschema/internal/logger"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configFile string
	envFile    string
	logLevel   string
	logJSON    bool
	lang       string
	jsonOut    bool

	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "dashschema",
		Short:         "Search, render and validate dashboard configuration schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&a.configFile, "config", "", "YAML configuration file")
	f.StringVar(&a.envFile, "env-file", "", "dotenv file with DASHSCHEMA_ variables")
	f.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	f.BoolVar(&a.logJSON, "log-json", false, "log as JSON")
	f.StringVar(&a.lang, "lang", "en", "message language (en, ja)")
	f.BoolVar(&a.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		listCmd(a),
		searchCmd(a),
		renderCmd(a),
		describeCmd(a),
		validateCmd(a),
		serveCmd(a),
		submitCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	overrides := map[string]any{}
	if a.logLevel != "" {
		overrides["log.level"] = a.logLevel
	}
	if cmd.Flags().Changed("log-json") {
		overrides["log.json"] = a.logJSON
	}
	cfg, err := config.Load(config.Sources{File: a.configFile, EnvFile: a.envFile, Overrides: overrides})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.NewLogger(cfg.Log.LoggerConfig(cmd.ErrOrStderr()))
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), a.log))
	i18n.SetLanguage(a.lang)
	return nil
}

// catalog builds the catalog named by the configuration.
func (a *app) catalog() (*catalog.Catalog, error) {
	opts := catalog.Options{
		DataSources: a.cfg.Catalog.DataSources,
		Columns:     a.cfg.Catalog.Columns,
		MaxDepth:    a.cfg.Catalog.MaxDepth,
	}
	var (
		c   *catalog.Catalog
		err error
	)
	if dir := a.cfg.Catalog.Dir; dir != "" {
		c, err = catalog.Load(os.DirFS(dir), opts)
	} else {
		c, err = catalog.Build(opts)
	}
	if err != nil {
		return nil, err
	}
	for _, w := range c.Warnings() {
		a.log.Warn("Schema warning", "detail", w)
	}
	return c, nil
}

// print writes v as JSON with --json, or lines otherwise.
func (a *app) print(w io.Writer, v any, lines ...string) error {
	if a.jsonOut {
		enc := gojson.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	if len(lines) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// errorMessage renders err for the terminal in the selected language.
func errorMessage(err error) string {
	iss, ok := dashschema.AsIssues(err)
	if !ok || len(iss) == 0 {
		return err.Error()
	}
	it := iss[0]
	msg := i18n.T(it.Code, map[string]string{"segment": it.Segment, "path": it.Path})
	if len(iss) > 1 {
		msg += fmt.Sprintf(" (+%d more)", len(iss)-1)
	}
	return msg
}
