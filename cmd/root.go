package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/linqiyu/coffeesim/internal/models"
	"github.com/linqiyu/coffeesim/internal/simulator"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "coffeesim",
	Short: "Simulates consumer decisions in a local coffee market",
	Long: `coffeesim is a CLI tool that drives a population of synthetic consumer
agents through a virtual coffee business district. Each agent evaluates the
nearby shops (price, distance, queue, promotions, brand affinity) and asks an
LLM oracle for a purchase decision; the decisions are exported as a flat
dataset for market analysis.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		sim := simulator.NewSimulator(cfg)
		if _, err := sim.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Simulation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")

	rootCmd.Flags().Int64("seed", 42, "Random seed for sampling and location assignment")
	rootCmd.Flags().String("mode", "test", "Run mode: test, demo, half, full, benchmark, mass")
	rootCmd.Flags().Int("sample-size", 0, "Explicit customer sample size (overrides --mode)")
	rootCmd.Flags().String("strategy", "default", "Marketing strategy preset")
	rootCmd.Flags().Int("workers", 1, "Concurrent oracle calls")
	rootCmd.Flags().Int("pacing-ms", 500, "Delay between oracle admissions in milliseconds")
	rootCmd.Flags().String("population-file", "data/shanghai_population.csv", "Population CSV path")
	rootCmd.Flags().String("brand-library-file", "data/coffee_brands_library.json", "Brand library JSON path")
	rootCmd.Flags().String("output-file", "", "Results output path (default auto-generated)")
	rootCmd.Flags().String("output-format", "csv", "Output format: csv, json, parquet, console")
	rootCmd.Flags().Bool("kafka-enabled", false, "Stream decision events to Kafka")
	rootCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.Flags().Bool("oracle.mock", false, "Use the offline mock oracle instead of the API")

	viper.BindPFlags(rootCmd.Flags())

	// dashed flag names do not match the config keys viper.Unmarshal reads,
	// so those flags are bound to their underscore keys explicitly
	for key, flag := range map[string]string{
		"sample_size":        "sample-size",
		"pacing_ms":          "pacing-ms",
		"population_file":    "population-file",
		"brand_library_file": "brand-library-file",
		"output_file":        "output-file",
		"output_format":      "output-format",
		"kafka_enabled":      "kafka-enabled",
		"kafka_broker_list":  "kafka-broker-list",
	} {
		viper.BindPFlag(key, rootCmd.Flags().Lookup(flag))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("examples")
		viper.SetConfigType("json")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
