package main

import (
	"os"

	"github.com/agenthands/gitcas/pkg/core"
	"github.com/agenthands/gitcas/pkg/objstore"
	"github.com/agenthands/gitcas/pkg/repo"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// app carries the global flags shared by every subcommand.
type app struct {
	gitDir     string
	configPath string
	logLevel   string

	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "gitcas [command] [flags]",
		Short:         "git loose object store",
		Long:          `gitcas stores and reads zlib-compressed, SHA-1 addressed git loose objects.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogger(cmd)
		},
	}

	a.addFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newInitCmd(a),
		newHashObjectCmd(a),
		newCatFileCmd(a),
		newVerifyCmd(a),
		newLsObjectsCmd(a),
		newReindexCmd(a),
	)
	return rootCmd
}

func (a *app) addFlags(flags *pflag.FlagSet) {
	flags.StringVar(&a.gitDir, "git-dir", defaultGitDir(), "repository directory (env GIT_DIR)")
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func defaultGitDir() string {
	if dir := os.Getenv("GIT_DIR"); dir != "" {
		return dir
	}
	return core.DefaultDir
}

func (a *app) setupLogger(cmd *cobra.Command) error {
	a.log = logrus.New()
	a.log.SetOutput(cmd.ErrOrStderr())

	level := a.logLevel
	if level == "" && a.configPath != "" {
		cfg, err := core.LoadFile(a.configPath)
		if err != nil {
			return errors.Wrap(err, "load config failed")
		}
		level = cfg.Log.Level
	}
	if level == "" {
		level = core.Default().Log.Level
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(core.ErrInvalidInput, "log level %q", level)
	}
	a.log.SetLevel(lvl)
	return nil
}

// config merges the config file and --git-dir. An explicit --git-dir always
// wins; otherwise a dir from the config file is kept.
func (a *app) config(cmd *cobra.Command) (core.Config, error) {
	cfg := core.Default()
	if a.configPath != "" {
		var err error
		cfg, err = core.LoadFile(a.configPath)
		if err != nil {
			return cfg, errors.Wrap(err, "load config failed")
		}
	}
	if cmd.Flags().Changed("git-dir") || a.configPath == "" {
		cfg.Dir = a.gitDir
	}
	return cfg.WithDefaults(), nil
}

// openStore opens the object store of an initialized repository.
func (a *app) openStore(cmd *cobra.Command, mutate ...func(*core.Config)) (objstore.Store, error) {
	cfg, err := a.config(cmd)
	if err != nil {
		return nil, err
	}
	for _, m := range mutate {
		m(&cfg)
	}
	if !repo.Exists(cfg) {
		return nil, errors.Errorf("not a gitcas repository: %s", cfg.Dir)
	}
	s, err := objstore.Open(cfg, objstore.WithLogger(a.log.WithField("repo", cfg.Dir)))
	if err != nil {
		return nil, errors.Wrap(err, "open object store failed")
	}
	return s, nil
}
