package cmd

import (
	"fmt"
	"os"

	"github.com/beanboi7/chyp-8/config"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	logger  *log.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "chyp8 [command]",
	Short:         "Chip-8 emulator using Go",
	Long:          "A Chip-8 emulator written from scratch that mimics the functionalities of a Chip-8, an interpretted language originally written for the COSMIC-VIP/ Telmac 8 bit systems.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.chyp8.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log errors")
	bindFlags(flags, map[string]string{
		config.KeyDebug: "debug",
		config.KeyQuiet: "quiet",
	})

	rootCmd.AddCommand(startCmd, disasmCmd, versionCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	used, err := config.Init(cfgFile)
	cobra.CheckErr(err)

	logger = config.CreateLogger(viper.GetBool(config.KeyDebug), viper.GetBool(config.KeyQuiet))
	if used != "" {
		logger.Debug("Using config file", log.String("path", used))
	}
}
