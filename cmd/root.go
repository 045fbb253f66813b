// Package cmd wires the pred-guard command tree. Configuration is resolved
// through viper: flags override environment variables (PREDGUARD_*), which
// override the config file.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/abodks10-ai/Pred-Guard/internal/application"
	"github.com/abodks10-ai/Pred-Guard/internal/notify"
	"github.com/abodks10-ai/Pred-Guard/internal/shared/constants"
)

var cfgFile string
var logger *zap.Logger

var rootCmd = &cobra.Command{
	Use:   "predguard",
	Short: "Website security monitoring and attack prediction",
	Long: `pred-guard continuously probes registered websites, analyzes them for
vulnerabilities, behavioral anomalies, phishing clones and predicted attacks,
and raises deduplicated alerts with optional automatic defense actions.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.AddConfigPath(".")
			viper.SetConfigName(".predguard")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("PREDGUARD")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		viper.AutomaticEnv()

		_ = viper.ReadInConfig()

		var err error
		if viper.GetBool("debug") {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.predguard.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("database-dsn", "", "PostgreSQL DSN (empty runs with in-memory storage)")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("database.dsn", rootCmd.PersistentFlags().Lookup("database-dsn"))

	viper.SetDefault("probe.timeout", constants.DefaultProbeTimeout)
	viper.SetDefault("probe.rps", constants.DefaultOutboundRPS)
	viper.SetDefault("probe.user_agent", "pred-guard/1.0 (+security monitor)")
	viper.SetDefault("analyzer.timeout", constants.DefaultAnalyzerTimeout)
	viper.SetDefault("analyzer.smoothing_alpha", constants.DefaultSmoothingAlpha)
	viper.SetDefault("analyzer.deviation_threshold", constants.DefaultDeviationThreshold)
	viper.SetDefault("notify.cooldown", constants.NotifyCooldown)
	viper.SetDefault("scheduler.tick", constants.DefaultTickInterval)
	viper.SetDefault("scheduler.workers", constants.DefaultWorkers)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(websitesCmd)
	rootCmd.AddCommand(versionCmd)
}

// appConfig assembles the container configuration from viper.
func appConfig() application.Config {
	return application.Config{
		DatabaseDSN:        viper.GetString("database.dsn"),
		ProbeTimeout:       viper.GetDuration("probe.timeout"),
		OutboundRPS:        viper.GetInt("probe.rps"),
		UserAgent:          viper.GetString("probe.user_agent"),
		AnalyzerTimeout:    viper.GetDuration("analyzer.timeout"),
		SmoothingAlpha:     viper.GetFloat64("analyzer.smoothing_alpha"),
		DeviationThreshold: viper.GetFloat64("analyzer.deviation_threshold"),
		NotifyCooldown:     viper.GetDuration("notify.cooldown"),
		TickInterval:       viper.GetDuration("scheduler.tick"),
		Workers:            viper.GetInt("scheduler.workers"),
		ReputationEndpoint: viper.GetString("intel.reputation_endpoint"),
		TrendEndpoint:      viper.GetString("intel.trend_endpoint"),
		CloneEndpoint:      viper.GetString("intel.clone_endpoint"),
		BenchmarkEndpoint:  viper.GetString("intel.benchmark_endpoint"),
		AIEndpoint:         viper.GetString("intel.ai_endpoint"),
		MitigationEndpoint: viper.GetString("intel.mitigation_endpoint"),
		Nameserver:         viper.GetString("intel.nameserver"),
		SMTP: notify.SMTPConfig{
			Host:     viper.GetString("smtp.host"),
			Port:     viper.GetInt("smtp.port"),
			Username: viper.GetString("smtp.username"),
			Password: viper.GetString("smtp.password"),
			From:     viper.GetString("smtp.from"),
		},
	}
}
