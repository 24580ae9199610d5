package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/marketerz/marketerz/internal/utils"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `                     _        _
 _ __ ___   __ _ _ __| | _____| |_ ___ _ __ ____
| '_ ` + "`" + ` _ \ / _` + "`" + ` | '__| |/ / _ \ __/ _ \ '__|_  /
| | | | | | (_| | |  |   <  __/ ||  __/ |   / /
|_| |_| |_|\__,_|_|  |_|\_\___|\__\___|_|  /___|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "marketerz",
	Short: "Turn a marketing idea into prompts engineered for generative AI models.",
	Long: LOGO + `marketerz turns a raw marketing idea into distinct, optimized prompts for strategy, copy,
technical specs, social hooks, images and video, right from your command line.

Your draft, your settings and every generation run are kept locally between invocations.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.marketerz.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("provider", "", "Generation backend: gemini or openai (overrides backend.provider)")
	rootCmd.PersistentFlags().String("dbpath", "", "Path to the storage file (overrides storage.path)")

	viper.BindPFlag("backend.provider", rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("storage.path", rootCmd.PersistentFlags().Lookup("dbpath"))
}

// initConfig reads in config file, .env and ENV variables if set.
func initConfig() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".marketerz")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("backend.provider", "gemini")
	viper.SetDefault("backend.api_key", "")
	viper.SetDefault("backend.model", "")
	viper.SetDefault("backend.image_model", "")
	viper.SetDefault("backend.endpoint", "")
	viper.SetDefault("backend.timeout", "60s")
	viper.SetDefault("storage.path", "")
	viper.SetDefault("share.base_url", "https://marketerz.app/")
	viper.SetDefault("autosave.delay", "1s")
	viper.SetDefault("autosave.status_display", "2s")

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.marketerz.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s\n", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	if err := utils.SetLogLevel(levelString); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
