package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dataviz/internal/config"
	"dataviz/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settings is the CLI configuration after flags, DATAVIZ_* variables and
// ~/.dataviz.yaml are merged, in that order of precedence.
type settings struct {
	Output      string `mapstructure:"output"`
	DBDriver    string `mapstructure:"db_driver"`
	DatabaseURL string `mapstructure:"database_url"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	BlankPolicy string `mapstructure:"blank_policy"`
	LogLevel    string `mapstructure:"log_level"`
}

// database returns the connection settings in the server's config shape.
func (s settings) database() config.DatabaseConfig {
	driver := strings.ToLower(s.DBDriver)
	if driver == "" {
		driver = config.DriverSQLite
		if strings.HasPrefix(s.DatabaseURL, "postgres://") || strings.HasPrefix(s.DatabaseURL, "postgresql://") {
			driver = config.DriverPostgres
		}
	}
	return config.DatabaseConfig{Driver: driver, URL: s.DatabaseURL, SQLitePath: s.SQLitePath}
}

type cli struct {
	v       *viper.Viper
	cfgFile string
	cfg     settings
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "dataviz",
		Short:         "Inspect, chart and manage tabular datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(); err != nil {
				return err
			}
			logging.SetupWriter(cmd.ErrOrStderr(), c.cfg.LogLevel, "text")
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default ~/.dataviz.yaml)")
	flags.StringP("output", "o", "markdown", "output format: markdown|json|yaml")
	flags.String("db-driver", "", "database driver: sqlite|postgres")
	flags.String("database-url", "", "database URL or DSN")
	flags.String("sqlite-path", "dataviz.db", "SQLite database file")
	flags.String("blank-policy", "zero", "how blank cells are read: zero|missing")
	flags.String("log-level", "warn", "log level: debug|info|warn|error")

	for key, flag := range map[string]string{
		"output":       "output",
		"db_driver":    "db-driver",
		"database_url": "database-url",
		"sqlite_path":  "sqlite-path",
		"blank_policy": "blank-policy",
		"log_level":    "log-level",
	} {
		_ = c.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newInspectCmd(c),
		newChartCmd(c),
		newSnapshotsCmd(c),
		newMigrateCmd(c),
	)
	return root
}

// load merges the config file, the environment and the flags.
func (c *cli) load() error {
	c.v.SetEnvPrefix("DATAVIZ")
	c.v.AutomaticEnv()

	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		c.v.SetConfigFile(filepath.Join(home, ".dataviz.yaml"))
	}
	if err := c.v.ReadInConfig(); err != nil {
		// the default file is optional; an explicit one is not
		if c.cfgFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if err := c.v.Unmarshal(&c.cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	switch c.cfg.Output {
	case "markdown", "md", "json", "yaml":
	default:
		return fmt.Errorf("unsupported --output %q (use markdown|json|yaml)", c.cfg.Output)
	}
	return nil
}
