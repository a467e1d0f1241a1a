package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-bench/configs"
	"github.com/RyanBlaney/sonido-bench/logging"
)

// configKeyAnnotation maps a flag to its configuration key
const configKeyAnnotation = "sonido-bench/config-key"

var (
	configFile   string
	logLevel     string
	outputFormat string
	jsonLogs     bool

	appConfig *configs.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sonido-bench",
	Short: "Waveform measurements for bench captures",
	Long: `Reduce captured waveform samples to engineering quantities.

Waveforms are read from delimited text ("time,value" or "value" rows) or raw
little-endian float64 files. Available measurements:
- DC and RMS level with window correction
- Amplitude/phase spectrum with CSV or Parquet export
- Multi-tone detection
- Pulse timing and periodicity`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/sonido-bench/sonido-bench.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"output format (json, yaml, table)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false,
		"emit logs as JSON")

	annotateKey(rootCmd.PersistentFlags(), "log-level", "log_level")
	annotateKey(rootCmd.PersistentFlags(), "output", "output_format")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sonido-bench"))
		}
		viper.AddConfigPath("/etc/sonido-bench")
		viper.AddConfigPath("./configs")
		viper.SetConfigName("sonido-bench")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(configs.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	configs.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: failed to read config: %v\n", err)
		}
	}
}

// initializeConfig binds flags, loads and validates the configuration, then
// installs the global logger
func initializeConfig(cmd *cobra.Command) error {
	v := viper.GetViper()
	if err := bindFlags(cmd, v); err != nil {
		return err
	}

	config, err := configs.LoadConfig(v)
	if err != nil {
		return err
	}
	if err := configs.ValidateConfig(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	appConfig = config

	level, err := logging.ParseLevel(config.LogLevel)
	if err != nil {
		return err
	}
	var logger *logging.DefaultLogger
	if jsonLogs {
		logger = logging.NewJSONLogger()
	} else {
		logger = logging.NewDefaultLogger()
	}
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)

	logging.Debug("Configuration loaded", logging.Fields{
		"config_file": v.ConfigFileUsed(),
		"command":     cmd.Name(),
	})
	return nil
}

// annotateKey records the configuration key a flag overrides
func annotateKey(flags *pflag.FlagSet, name, key string) {
	if err := flags.SetAnnotation(name, configKeyAnnotation, []string{key}); err != nil {
		panic(err)
	}
}

// bindFlags binds each annotated cobra flag to its configuration key
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys, ok := f.Annotations[configKeyAnnotation]
		if !ok || len(keys) == 0 {
			return
		}
		key := keys[0]

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(key) {
			val := v.Get(key)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				lastErr = err
			}
		}

		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
		}

		envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if err := v.BindEnv(key, configs.EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")),
			configs.EnvPrefix+"_"+envVarSuffix); err != nil {
			lastErr = err
		}
	})

	return lastErr
}
