package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sustainly/esg-cli/internal/catalog"
)

var catalogFile string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate the question catalog",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a catalog override file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := catalogFile
		if path == "" {
			path = cfg.Scoring.CatalogFile
		}
		if path == "" {
			fmt.Println("built-in catalog is valid")
			return nil
		}
		cat, err := catalog.LoadFile(path)
		if err != nil {
			return err
		}
		fmt.Printf("%s is valid: %d questions\n", path, cat.Len())
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective question catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		for _, q := range cat.Questions() {
			fmt.Printf("%-26s %-13s %-12s weight=%.2f type=%s\n",
				q.ID, q.Category, q.Subcategory, q.Weight, q.ValueType)
		}
		return nil
	},
}

func init() {
	catalogValidateCmd.Flags().StringVar(&catalogFile, "file", "", "catalog file (default from config)")
	catalogCmd.AddCommand(catalogValidateCmd, catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}
