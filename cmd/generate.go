package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/linqiyu/coffeesim/internal/factories"
	"github.com/linqiyu/coffeesim/internal/models"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generates a synthetic customer population CSV",
	Long: `generate samples a synthetic consumer population with realistic
demographic structure (age, occupation, lognormal income, coffee preferences,
brand loyalty) and writes it to the population CSV the simulation reads.`,
	Run: func(cmd *cobra.Command, args []string) {
		count, _ := cmd.Flags().GetInt("count")
		seed, _ := cmd.Flags().GetInt64("seed")
		output, _ := cmd.Flags().GetString("output")

		if err := os.MkdirAll(filepath.Dir(output), os.ModePerm); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			os.Exit(1)
		}

		factory := factories.NewCustomerFactory(seed)
		customers := factory.GeneratePopulation(count)
		if err := models.WritePopulationCSV(output, customers); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing population: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated %d customer profiles at %s\n", count, output)
	},
}

func init() {
	generateCmd.Flags().Int("count", 1000, "Number of customer profiles to generate")
	generateCmd.Flags().Int64("seed", 42, "Random seed for the generator")
	generateCmd.Flags().String("output", "data/shanghai_population.csv", "Output CSV path")
	rootCmd.AddCommand(generateCmd)
}
