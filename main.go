package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scripty-bot/scripty/scripty"
	"github.com/scripty-bot/scripty/scripty/config"

	// For runtime profiling if enabled in config
	"net/http"
	_ "net/http/pprof"
)

func init() {
	log.SetReportCaller(true)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.UnixDate,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			split := strings.Split(f.File, "scripty/")
			filename := "scripty/" + split[len(split)-1]
			return "", fmt.Sprintf("%s:%d", filename, f.Line)
		},
	})
}

type pprofConfig struct {
	Enabled              bool   `json:"enabled"`
	Address              string `json:"address"`
	BlockProfileRate     int    `json:"block-profile-rate"`
	MutexProfileFraction int    `json:"mutex-profile-fraction"`
}

var cfgPath = scripty.MainConfigFile

var rootCmd = &cobra.Command{
	Use:           "scripty",
	Short:         "Run the scripty Discord bot",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setLogLevel(cfgPath)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := startPprof(cfgPath); err != nil {
			return err
		}
		return scripty.RunAndBlock(cfgPath)
	},
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the application commands the bot registers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), scripty.DescribeCommands())
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", scripty.MainConfigFile, "path to the JSON config file")
	rootCmd.AddCommand(commandsCmd)
}

func setLogLevel(path string) error {
	cfg := struct {
		DefaultLogLvl string `json:"default-log-level"`
	}{"info"}

	jsonCfg, err := config.NewJsonConfig(path)
	if err != nil {
		return err
	}
	if err = jsonCfg.Unmarshal(&cfg); err != nil {
		return err
	}

	if lvl, err := log.ParseLevel(cfg.DefaultLogLvl); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(log.InfoLevel)
		log.Warnf(`Could not read default log level from config (%s). Defaulting to "%s".`, cfg.DefaultLogLvl, log.InfoLevel)
	}
	return nil
}

// Start an http server for pprof profiling data
// if configured. No-op if not.
// See https://pkg.go.dev/net/http/pprof
func startPprof(path string) error {
	jsonCfg, err := config.NewJsonConfig(path)
	if err != nil {
		return err
	}
	pprofCfg := pprofConfig{}
	if err = jsonCfg.Section("pprof", &pprofCfg); err != nil {
		return err
	}

	if !pprofCfg.Enabled {
		log.Info("pprof not enabled (this is normal)")
		return nil
	}
	if pprofCfg.Address == "" {
		log.Warn("pprof is enabled but address is not set, not starting pprof server")
		return nil
	}

	log.Infof("Setting block profile rate to %d", pprofCfg.BlockProfileRate)
	runtime.SetBlockProfileRate(pprofCfg.BlockProfileRate)

	log.Infof("Setting mutex profile fraction to %d", pprofCfg.MutexProfileFraction)
	runtime.SetMutexProfileFraction(pprofCfg.MutexProfileFraction)

	go func() {
		log.Infof("Starting pprof server at %s/debug/pprof/", pprofCfg.Address)
		log.Info(http.ListenAndServe(pprofCfg.Address, nil))
	}()
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
