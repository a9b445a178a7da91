package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"stock-reconciliation-service/cmd/stockrecon/config"
	"stock-reconciliation-service/internal/reconciler"
	"stock-reconciliation-service/internal/reporter"
	"stock-reconciliation-service/internal/workbook"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the kitchen command
var (
	kitchenReportFile string
	kitchenOutlet     string
)

// kitchenCmd represents the kitchen command
var kitchenCmd = &cobra.Command{
	Use:   "kitchen",
	Short: "Reconcile a kitchen production report against the day's stock check",
	Long: `Kitchen reconciles a kitchen production export (XLSX) against the
stock check for the same outlet and date.

For each produced item the discrepancy is the production quantity minus
the stock check's opening and received figures. Legacy column-per-outlet
exports need the --outlet flag to select the right column.

Examples:
  stockrecon kitchen --report kitchen.xlsx --products products.json --stock-checks checks.json
  stockrecon kitchen --report kitchen.xlsx --outlet "Outlet A" \
    --products products.json --stock-checks checks.json --mappings mappings.db`,

	PreRunE: validateKitchenFlags,
	RunE:    runKitchen,
}

func init() {
	rootCmd.AddCommand(kitchenCmd)

	// Required flags
	kitchenCmd.Flags().StringVarP(&kitchenReportFile, "report", "r", "", "path to kitchen report XLSX file (required)")
	kitchenCmd.Flags().StringVarP(&productsFile, "products", "p", "", "path to product catalog JSON file (required)")
	kitchenCmd.Flags().StringVarP(&stockChecksFile, "stock-checks", "s", "", "path to stock checks JSON file (required)")

	// Optional flags
	kitchenCmd.Flags().StringVar(&kitchenOutlet, "outlet", "", "outlet name for legacy column-per-outlet reports")
	kitchenCmd.Flags().StringVarP(&mappingsDB, "mappings", "m", "", "path to the SQLite name-mapping cache (in-memory if omitted)")
	kitchenCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output XLSX report path (default: <report>-reconciled.xlsx)")
	kitchenCmd.Flags().Float64Var(&minAutoMatchScore, "min-auto-match-score", 0, "minimum score to auto-apply a fuzzy match (default 85)")

	// Mark required flags
	kitchenCmd.MarkFlagRequired("report")
	kitchenCmd.MarkFlagRequired("products")
	kitchenCmd.MarkFlagRequired("stock-checks")
}

func validateKitchenFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(kitchenReportFile, "kitchen report file"); err != nil {
		return err
	}
	if err := validateFileExists(productsFile, "product catalog file"); err != nil {
		return err
	}
	if err := validateFileExists(stockChecksFile, "stock checks file"); err != nil {
		return err
	}

	if minAutoMatchScore < 0 || minAutoMatchScore > 100 {
		return fmt.Errorf("min-auto-match-score must be between 0 and 100")
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func runKitchen(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting kitchen reconciliation...\n")
		fmt.Fprintf(os.Stderr, "Report: %s\n", kitchenReportFile)
		if kitchenOutlet != "" {
			fmt.Fprintf(os.Stderr, "Outlet: %s\n", kitchenOutlet)
		}
	}

	refData, err := config.LoadReferenceData(productsFile, stockChecksFile, "", "")
	if err != nil {
		return err
	}

	matcherConfig, err := config.CreateMatcherConfig(minAutoMatchScore)
	if err != nil {
		return err
	}

	mappings, err := openMappingStore(mappingsDB)
	if err != nil {
		return err
	}
	defer mappings.Close()

	wb, err := workbook.Open(kitchenReportFile)
	if err != nil {
		return err
	}
	defer wb.Close()

	sheet, err := workbook.ParseKitchenSheet(wb, kitchenOutlet, config.CreateKitchenParserConfig())
	if err != nil {
		return err
	}

	rec := reconciler.NewKitchenReconciler(refData.Products, mappings, matcherConfig)
	result, err := rec.Reconcile(ctx, sheet, refData.StockChecks)
	if err != nil {
		return err
	}

	reportPath := outputFile
	if reportPath == "" {
		reportPath = defaultOutputPath(kitchenReportFile)
	}

	exporter := reporter.NewExporter(reporter.DefaultConfig())
	if err := exporter.ExportKitchen(result, reportPath); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Reconciled %d kitchen rows for %s on %s (%d errors). Report: %s\n",
		len(result.Rows), result.Outlet, result.Date, len(result.Errors), reportPath)

	if viper.GetBool("verbose") && len(result.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "\nRow errors:\n")
		for _, msg := range result.Errors {
			fmt.Fprintf(os.Stderr, "  %s\n", msg)
		}
	}

	return nil
}
