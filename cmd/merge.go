package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"sheet-reconciler/core/config"
	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/storage"
	"sheet-reconciler/feature/merge"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	masterConfigName string
	childConfigName  string
	configDir        string
	outputPath       string
	overwriteOutput  bool
	uploadOutput     bool
	verboseMerge     bool
	yesConfirm       bool
)

// mergeCmd merges a child dataset into a master dataset.
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge a child CSV into a master CSV by identifier",
	Long: `Merge a child dataset into a master dataset.

Both datasets are described by config files (JSON, YAML or TOML) holding
location, id_column and id_char_count. Names are looked up in the config
directory; paths are read directly.

The output is written next to the master as <name>_<YYYYMMDD>.csv. An existing
output for today gets a numbered name unless --overwrite is given.

Examples:
  # Merge using config/owners.json and config/contacts.json
  merge --master-config owners --child-config contacts

  # Replace today's output without prompting
  merge --master-config owners --child-config contacts --overwrite --yes

  # Upload the result to object storage and list rejected identifiers
  merge --master-config owners --child-config contacts --upload --verbose`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&masterConfigName, "master-config", "", "Master dataset config name or path")
	mergeCmd.Flags().StringVar(&childConfigName, "child-config", "", "Child dataset config name or path")
	mergeCmd.Flags().StringVar(&configDir, "config-dir", "", "Directory holding dataset configs (default merge.config_dir)")
	mergeCmd.Flags().StringVar(&outputPath, "output", "", "Write the merged file here instead of the dated name")
	mergeCmd.Flags().BoolVar(&overwriteOutput, "overwrite", false, "Replace today's output instead of writing a numbered copy")
	mergeCmd.Flags().BoolVar(&uploadOutput, "upload", false, "Upload the merged file to object storage (default merge.upload)")
	mergeCmd.Flags().BoolVar(&verboseMerge, "verbose", false, "Log at debug level and list rejected child identifiers")
	mergeCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm overwriting an existing output (non-interactive)")
	_ = mergeCmd.MarkFlagRequired("master-config")
	_ = mergeCmd.MarkFlagRequired("child-config")

	RootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, l, err := loadApp(verboseMerge)
	if err != nil {
		return err
	}
	defer l.Sync()

	dir := cfg.Merge.ConfigDir
	if configDir != "" {
		dir = configDir
	}
	master, err := config.LoadDataset(dir, masterConfigName)
	if err != nil {
		return fmt.Errorf("master config: %w", err)
	}
	child, err := config.LoadDataset(dir, childConfigName)
	if err != nil {
		return fmt.Errorf("child config: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	if overwriteOutput {
		target := outputPath
		if target == "" {
			target = reconcile.OutputPath(master.Location, true, time.Now())
		}
		if _, err := os.Stat(target); err == nil {
			if !confirmOverwrite(os.Stdin, cmd.OutOrStdout(), target, yesConfirm) {
				l.Warn("Operation cancelled by user. No changes were made.")
				return nil
			}
		}
	}

	store := openLedger(ctx, cfg.Database, l)
	svc := merge.NewService(reconcile.NewMerger(l, client), client, store, merge.Options{
		Bucket:       cfg.Storage.Bucket,
		Region:       cfg.Storage.Region,
		Upload:       cfg.Merge.Upload,
		UploadPrefix: cfg.Merge.UploadPrefix,
		MaxAttempts:  cfg.Merge.MaxAttempts,
	}, l)

	req := merge.Request{
		Master:     master,
		Child:      child,
		Overwrite:  overwriteOutput,
		OutputPath: outputPath,
	}
	if cmd.Flags().Changed("upload") {
		req.Upload = &uploadOutput
	}

	l.Info("Starting merge",
		zap.String("master", master.Location),
		zap.String("child", child.Location),
	)
	report, err := svc.Merge(ctx, req)
	if err != nil {
		return err
	}

	printMergeReport(cmd.OutOrStdout(), report, verboseMerge)
	return nil
}

// printMergeReport prints the merge summary and, when verbose, the rejected identifiers.
func printMergeReport(w io.Writer, report *merge.Report, verbose bool) {
	s := report.Summary
	pairs := [][2]string{
		{"Child rows processed", strconv.Itoa(s.ChildRows)},
		{"Proper ID length", strconv.Itoa(s.Eligible)},
		{"Incorrect ID length", strconv.Itoa(s.Rejected)},
		{"Missing ID", strconv.Itoa(s.MissingID)},
		{"Aligned with master", strconv.Itoa(s.Aligned)},
		{"Appended as orphans", strconv.Itoa(s.Orphans)},
		{"Master rows", strconv.Itoa(s.MasterRows)},
		{"Output rows", strconv.Itoa(s.OutputRows)},
		{"Output fields", strconv.Itoa(len(report.Schema))},
		{"Passes", strconv.Itoa(report.Attempts)},
		{"Run time", report.Duration.Round(time.Millisecond).String()},
		{"Output", report.OutputPath},
	}
	if report.RemoteObject != "" {
		pairs = append(pairs, [2]string{"Uploaded to", report.RemoteObject})
	}
	if report.RunID != "" {
		pairs = append(pairs, [2]string{"Run ID", report.RunID})
	}
	fmt.Fprintln(w, renderSummary(pairs))

	if verbose && len(report.RejectedIDs) > 0 {
		rows := make([][]string, 0, len(report.RejectedIDs))
		for i, id := range report.RejectedIDs {
			rows = append(rows, []string{strconv.Itoa(i + 1), id})
		}
		fmt.Fprintln(w, "Child rows skipped due to ID length mismatch:")
		fmt.Fprintln(w, renderTable([]string{"#", "ID"}, rows, []columnAlignment{alignRight, alignLeft}))
	}
}

// confirmOverwrite asks before replacing an existing output, or uses --yes.
func confirmOverwrite(in io.Reader, out io.Writer, path string, assumeYes bool) bool {
	if assumeYes {
		fmt.Fprintf(out, "\n✓ Overwriting %s (auto-confirmed via --yes flag)\n", path)
		return true
	}

	fmt.Fprintf(out, "\n⚠️  %s already exists. Type 'yes' to overwrite it: ", path)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
