package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"stock-reconciliation-service/cmd/stockrecon/config"
	"stock-reconciliation-service/internal/mapping"
	"stock-reconciliation-service/internal/models"
	"stock-reconciliation-service/internal/reconciler"
	"stock-reconciliation-service/internal/reporter"
	"stock-reconciliation-service/internal/workbook"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the sales command
var (
	salesReportFile     string
	productsFile        string
	stockChecksFile     string
	conversionsFile     string
	recipesFile         string
	receivedFile        string
	mappingsDB          string
	outputFile          string
	minAutoMatchScore   float64
	showConsumption     bool
)

// salesCmd represents the sales command
var salesCmd = &cobra.Command{
	Use:   "sales",
	Short: "Reconcile a POS sales report against the day's stock check",
	Long: `Sales reconciles a POS sales export (XLSX) against the stock check
for the same outlet and date.

Each sold product is fuzzy-matched to the catalog, unit variants are
aggregated through conversion factors, and the expected closing stock
is compared with the counted closing stock. Results are written as an
XLSX report with a Summary sheet and a Discrepancies sheet.

The stock check for the report's outlet and date is a hard
precondition: a missing check or a check dated differently fails the
run rather than guessing.

Examples:
  # Basic reconciliation
  stockrecon sales --report sales.xlsx --products products.json --stock-checks checks.json

  # With unit conversions, recipes, and a persistent mapping cache
  stockrecon sales --report sales.xlsx --products products.json --stock-checks checks.json \
    --conversions conversions.json --recipes recipes.json --mappings mappings.db \
    --output report.xlsx --consumption

  # Lower the auto-match threshold
  stockrecon sales --report sales.xlsx --products products.json --stock-checks checks.json \
    --min-auto-match-score 80`,

	PreRunE: validateSalesFlags,
	RunE:    runSales,
}

func init() {
	rootCmd.AddCommand(salesCmd)

	// Required flags
	salesCmd.Flags().StringVarP(&salesReportFile, "report", "r", "", "path to sales report XLSX file (required)")
	salesCmd.Flags().StringVarP(&productsFile, "products", "p", "", "path to product catalog JSON file (required)")
	salesCmd.Flags().StringVarP(&stockChecksFile, "stock-checks", "s", "", "path to stock checks JSON file (required)")

	// Optional reference data
	salesCmd.Flags().StringVar(&conversionsFile, "conversions", "", "path to unit conversions JSON file")
	salesCmd.Flags().StringVar(&recipesFile, "recipes", "", "path to recipes JSON file")
	salesCmd.Flags().StringVar(&receivedFile, "received-adjustments", "", "path to JSON file of extra received quantities by product ID")

	// Mapping cache
	salesCmd.Flags().StringVarP(&mappingsDB, "mappings", "m", "", "path to the SQLite name-mapping cache (in-memory if omitted)")

	// Output flags
	salesCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output XLSX report path (default: <report>-reconciled.xlsx)")

	// Matching configuration
	salesCmd.Flags().Float64Var(&minAutoMatchScore, "min-auto-match-score", 0, "minimum score to auto-apply a fuzzy match (default 85)")

	// Consumption output
	salesCmd.Flags().BoolVar(&showConsumption, "consumption", false, "print implied raw material consumption (requires --recipes)")

	// Mark required flags
	salesCmd.MarkFlagRequired("report")
	salesCmd.MarkFlagRequired("products")
	salesCmd.MarkFlagRequired("stock-checks")

	// Bind flags to viper
	viper.BindPFlag("report", salesCmd.Flags().Lookup("report"))
	viper.BindPFlag("products", salesCmd.Flags().Lookup("products"))
	viper.BindPFlag("stock-checks", salesCmd.Flags().Lookup("stock-checks"))
	viper.BindPFlag("conversions", salesCmd.Flags().Lookup("conversions"))
	viper.BindPFlag("recipes", salesCmd.Flags().Lookup("recipes"))
	viper.BindPFlag("mappings", salesCmd.Flags().Lookup("mappings"))
	viper.BindPFlag("output", salesCmd.Flags().Lookup("output"))
	viper.BindPFlag("min-auto-match-score", salesCmd.Flags().Lookup("min-auto-match-score"))
}

func validateSalesFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	salesReportFile = viper.GetString("report")
	productsFile = viper.GetString("products")
	stockChecksFile = viper.GetString("stock-checks")
	if v := viper.GetString("conversions"); v != "" {
		conversionsFile = v
	}
	if v := viper.GetString("recipes"); v != "" {
		recipesFile = v
	}
	if v := viper.GetString("mappings"); v != "" {
		mappingsDB = v
	}
	if v := viper.GetString("output"); v != "" {
		outputFile = v
	}
	if v := viper.GetFloat64("min-auto-match-score"); v != 0 {
		minAutoMatchScore = v
	}

	if err := validateFileExists(salesReportFile, "sales report file"); err != nil {
		return err
	}
	if err := validateFileExists(productsFile, "product catalog file"); err != nil {
		return err
	}
	if err := validateFileExists(stockChecksFile, "stock checks file"); err != nil {
		return err
	}
	for _, optional := range []struct{ path, desc string }{
		{conversionsFile, "conversions file"},
		{recipesFile, "recipes file"},
		{receivedFile, "received adjustments file"},
	} {
		if optional.path == "" {
			continue
		}
		if err := validateFileExists(optional.path, optional.desc); err != nil {
			return err
		}
	}

	if minAutoMatchScore < 0 || minAutoMatchScore > 100 {
		return fmt.Errorf("min-auto-match-score must be between 0 and 100")
	}

	if showConsumption && recipesFile == "" {
		return fmt.Errorf("--consumption requires --recipes")
	}

	// Validate output directory exists if specified
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

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	return nil
}

func runSales(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting sales reconciliation...\n")
		fmt.Fprintf(os.Stderr, "Report: %s\n", salesReportFile)
		fmt.Fprintf(os.Stderr, "Products: %s\n", productsFile)
		fmt.Fprintf(os.Stderr, "Stock checks: %s\n", stockChecksFile)
	}

	refData, err := config.LoadReferenceData(productsFile, stockChecksFile, conversionsFile, recipesFile)
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

	wb, err := workbook.Open(salesReportFile)
	if err != nil {
		return err
	}
	defer wb.Close()

	sheet, err := workbook.ParseSalesSheet(wb, config.CreateSalesParserConfig())
	if err != nil {
		return err
	}

	extraReceived, err := loadReceivedAdjustments(receivedFile)
	if err != nil {
		return err
	}

	rec := reconciler.NewSalesReconciler(refData.Products, refData.Conversions, mappings, matcherConfig)
	result, err := rec.Reconcile(ctx, sheet, refData.StockChecks, extraReceived)
	if err != nil {
		return err
	}

	reportPath := outputFile
	if reportPath == "" {
		reportPath = defaultOutputPath(salesReportFile)
	}

	exporter := reporter.NewExporter(reporter.DefaultConfig())
	if err := exporter.Export(result, reportPath); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Reconciled %d rows for %s on %s (%d errors). Report: %s\n",
		len(result.Rows), result.Outlet, result.Date, len(result.Errors), reportPath)

	if showConsumption {
		check := models.FindStockCheck(refData.StockChecks, result.Outlet, result.Date)
		usages := reconciler.CalculateRawMaterialConsumption(refData.Products, refData.Recipes, result.Rows, check)
		printConsumption(usages)
	}

	if viper.GetBool("verbose") && len(result.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "\nRow errors:\n")
		for _, msg := range result.Errors {
			fmt.Fprintf(os.Stderr, "  %s\n", msg)
		}
	}

	return nil
}

// openMappingStore opens the SQLite cache at path, or an in-memory
// store when no path is given.
func openMappingStore(path string) (mapping.Store, error) {
	if path == "" {
		return mapping.NewMemoryStore(), nil
	}
	return mapping.NewSQLiteStore(path)
}

func loadReceivedAdjustments(path string) (map[string]decimal.Decimal, error) {
	if path == "" {
		return nil, nil
	}

	var adjustments map[string]decimal.Decimal
	if err := config.LoadJSON(path, &adjustments); err != nil {
		return nil, err
	}
	return adjustments, nil
}

func defaultOutputPath(reportPath string) string {
	ext := filepath.Ext(reportPath)
	return reportPath[:len(reportPath)-len(ext)] + "-reconciled.xlsx"
}

func printConsumption(usages []models.RawMaterialUsage) {
	if len(usages) == 0 {
		fmt.Fprintf(os.Stdout, "\nNo sales-based raw material consumption to report.\n")
		return
	}

	fmt.Fprintf(os.Stdout, "\nRaw material consumption:\n")
	fmt.Fprintf(os.Stdout, "%-30s %-10s %12s %12s %12s %12s\n",
		"Raw Material", "Unit", "Consumed", "Opening", "Received", "Discrepancy")
	for _, u := range usages {
		fmt.Fprintf(os.Stdout, "%-30s %-10s %12s %12s %12s %12s\n",
			u.Name, u.Unit, u.Consumed.String(), u.Opening.String(), u.Received.String(), u.Discrepancy.String())
	}
}
