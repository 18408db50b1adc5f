package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/polscope/internal/llm"
	"github.com/ppiankov/polscope/internal/logging"
	"github.com/ppiankov/polscope/internal/model"
	"github.com/ppiankov/polscope/internal/pipeline"
)

// Version is overridden at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	logger  *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "polscope",
	Short: "PolScope - politician record aggregation and assessment",
	Long: `PolScope gathers what public sources say about a politician and assembles
one structured record: legislation from Congress.gov, a biography from
Wikipedia, and recent activities from NewsAPI.

Sources that are missing credentials or fail fall back to a curated catalog,
so every analysis returns a complete record. Promise counts and fulfillment
rates are always computed from the record itself; an optional LLM adds a
narrative summary.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("polscope " + Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := model.DefaultConfig()

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.polscope/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "log format (json, console)")
	flags.String("ua", defaults.HTTP.UserAgent, "HTTP User-Agent for source requests")
	flags.Duration("budget", defaults.Sources.Budget, "time budget for each source call")
	flags.Float64("rps", defaults.RateLimiting.RequestsPerSecond, "requests per second per upstream host (0 disables)")
	flags.String("llm-provider", defaults.LLM.Provider, "LLM provider (groq, openai, anthropic, ollama, none)")
	flags.String("llm-model", defaults.LLM.Model, "LLM model name (empty uses the provider default)")

	// Bind flags to viper
	for key, name := range map[string]string{
		"log.level":                         "log-level",
		"log.format":                        "log-format",
		"http.user_agent":                   "ua",
		"sources.budget":                    "budget",
		"rate_limiting.requests_per_second": "rps",
		"llm.provider":                      "llm-provider",
		"llm.model":                         "llm-model",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".polscope"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match POLSCOPE_*
	viper.SetEnvPrefix("POLSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Credentials keep their conventional names as well
	_ = viper.BindEnv("sources.legislative.api_key", "POLSCOPE_SOURCES_LEGISLATIVE_API_KEY", "CONGRESS_API_KEY")
	_ = viper.BindEnv("sources.news.api_key", "POLSCOPE_SOURCES_NEWS_API_KEY", "NEWSAPI_KEY")
	_ = viper.BindEnv("llm.api_key", "POLSCOPE_LLM_API_KEY")
	_ = viper.BindEnv("llm.base_url", "POLSCOPE_LLM_BASE_URL")
	_ = viper.BindEnv("sources.legislative.base_url", "POLSCOPE_SOURCES_LEGISLATIVE_BASE_URL")
	_ = viper.BindEnv("sources.encyclopedia.base_url", "POLSCOPE_SOURCES_ENCYCLOPEDIA_BASE_URL")
	_ = viper.BindEnv("sources.news.base_url", "POLSCOPE_SOURCES_NEWS_BASE_URL")

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers config file, environment and flags over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = llmKeyFromEnv(cfg.LLM.Provider)
	}
	if cfg.LLM.BaseURL == "" && strings.EqualFold(cfg.LLM.Provider, llm.ProviderOllama) {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}

	return cfg, nil
}

// llmKeyFromEnv returns the provider's conventional API key variable
func llmKeyFromEnv(provider string) string {
	switch strings.ToLower(provider) {
	case llm.ProviderGroq:
		return os.Getenv("GROQ_API_KEY")
	case llm.ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case llm.ProviderAnthropic, "claude":
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}

// newPipeline loads configuration and builds a pipeline with the command logger
func newPipeline() (*model.Config, *pipeline.Pipeline, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.NewPipeline(cfg, commandLogger())
	if err != nil {
		return nil, nil, fmt.Errorf("create pipeline: %w", err)
	}
	return cfg, p, nil
}

func commandLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
