package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "job-matcher"
)

type Config struct {
	User      string          `mapstructure:"user"`
	Database  string          `mapstructure:"database"`
	UploadDir string          `mapstructure:"upload-dir"`
	Gemini    *GeminiConfig   `mapstructure:"gemini"`
	Discover  *DiscoverConfig `mapstructure:"discover"`
	Fetch     *FetchConfig    `mapstructure:"fetch"`
	Batch     *BatchConfig    `mapstructure:"batch"`
}

type GeminiConfig struct {
	APIKey       string   `mapstructure:"api-key" json:"-"`
	APIKeyFile   string   `mapstructure:"api-key-file"`
	Models       []string `mapstructure:"models"`
	MaxLogLength int      `mapstructure:"max-log-length"`
}

type DiscoverConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	Location         string        `mapstructure:"location"`
	ExcludeCompanies []string      `mapstructure:"exclude-companies"`
	ExcludeFile      string        `mapstructure:"exclude-file"`
	UserAgent        string        `mapstructure:"user-agent"`
}

type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user-agent"`
	MaxChars  int           `mapstructure:"max-chars"`
	MinChars  int           `mapstructure:"min-chars"`
}

type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-matcher extracts a profile from a résumé, discovers job postings and scores how well they fit",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"user":                "JOB_MATCHER_USER",
		"gemini.api-key":      "GEMINI_API_KEY",
		"gemini.api-key-file": "GEMINI_API_KEY_FILE",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("database", "job-matcher.db")
	viper.SetDefault("upload-dir", "uploads")
	viper.SetDefault("gemini.max-log-length", 200)
	viper.SetDefault("discover.timeout", 8*time.Second)
	viper.SetDefault("discover.location", "Turkey")
	viper.SetDefault("fetch.timeout", 10*time.Second)
	viper.SetDefault("fetch.max-chars", 15000)
	viper.SetDefault("fetch.min-chars", 100)
	viper.SetDefault("batch.workers", 5)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("user", "u", "", "email of the user to act as")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The default file is optional; an explicit one must exist and parse.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Gemini == nil {
		config.Gemini = &GeminiConfig{}
	}
	if config.Discover == nil {
		config.Discover = &DiscoverConfig{}
	}
	if config.Fetch == nil {
		config.Fetch = &FetchConfig{}
	}
	if config.Batch == nil {
		config.Batch = &BatchConfig{}
	}

	return config, nil
}
