package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/acvora/acvora/internal/utils"
	"github.com/acvora/acvora/pkg/api"
)

var cfgFile string

const (
	LOGO = `
	  __ _  _____   _____  _ __ __ _
	 / _' |/ __\ \ / / _ \| '__/ _' |
	| (_| | (__ \ V / (_) | | | (_| |
	 \__,_|\___| \_/ \___/|_|  \__,_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "acvora",
	Short: "Browse the Acvora course catalog and exam calendar.",
	Long: LOGO + `acvora lets you filter the course catalog by stream, level, location, accepted exams and specializations,
bookmark courses to your account and follow upcoming, ongoing and past entrance exams, right from your command line.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
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
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.acvora.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().StringP("api", "", "", "Catalog API base URL (default "+api.DefaultBaseURL+")")
	rootCmd.PersistentFlags().StringP("state", "", "", "Local state database (default $HOME/.config/acvora/acvora.sqlite)")

	viper.BindPFlag("api.baseurl", rootCmd.PersistentFlags().Lookup("api"))
	viper.BindPFlag("state.path", rootCmd.PersistentFlags().Lookup("state"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A .env in the working directory is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %s\n", err)
	}

	viper.SetDefault("api.baseurl", api.DefaultBaseURL)
	viper.SetDefault("api.timeout", int(api.DefaultTimeout.Seconds()))
	viper.SetDefault("api.retries", api.DefaultRetries)
	viper.SetDefault("api.ratelimit", api.DefaultRateLimit)
	viper.SetDefault("state.path", "")
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".acvora")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("acvora")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := filepath.Join(home, ".acvora.yaml")
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
