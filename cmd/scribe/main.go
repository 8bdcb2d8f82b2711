package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"scribe-go/internal/app"
	"scribe-go/internal/config"
	"scribe-go/internal/model"
	"scribe-go/internal/scribe"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a ScribeApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Prepare", "Finalize").
func newApp(operation, parameters string) (*app.ScribeApp, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewScribeApp(cfg, operation, parameters)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "scribe",
	Short: "Work-log store with staged commits",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["store_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Store Dir: %s\n", cfg.StoreDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := app.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Store Dir:    %s\n", cfg.StoreDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Journal:      %s\n", cfg.Journal.Type)
		if cfg.Journal.Path != "" {
			fmt.Printf("Journal Path: %s\n", cfg.Journal.Path)
		}
		return nil
	},
}

// new-id command
var newIDCmd = &cobra.Command{
	Use:   "new-id",
	Short: "Allocate an entry id for the current time",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("NewID", "")
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.NewID()
		if err != nil {
			return err
		}

		fmt.Println(id)
		return nil
	},
}

// last command
var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the most recent entry id",
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")
		withTitle, _ := cmd.Flags().GetBool("with-title")

		a, err := newApp("LastID", "")
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.LastID(global)
		if err != nil {
			return err
		}
		if id == "" {
			fmt.Println("No entries.")
			return nil
		}

		if withTitle {
			if e, err := a.Find(id); err == nil && e != nil && e.Title != "" {
				fmt.Printf("%s  %s\n", id, e.Title)
				return nil
			}
		}
		fmt.Println(id)
		return nil
	},
}

// parseFileDesc splits a "path:description" flag value. The description is
// optional; a bare path is accepted.
func parseFileDesc(v string) (string, string) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

// prepare command
var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Stage a new entry with placeholder title and body",
	RunE: func(cmd *cobra.Command, args []string) error {
		touched, _ := cmd.Flags().GetStringArray("touched")
		archives, _ := cmd.Flags().GetStringArray("archive")
		related, _ := cmd.Flags().GetStringArray("related")
		gitEntry, _ := cmd.Flags().GetBool("git-entry")

		opts := scribe.PrepareOptions{GitEntry: gitEntry, Related: related}
		for _, v := range touched {
			path, desc := parseFileDesc(v)
			opts.Touched = append(opts.Touched, model.TouchedFile{Path: path, Description: desc})
		}
		for _, v := range archives {
			path, desc := parseFileDesc(v)
			opts.Archives = append(opts.Archives, model.PendingArchive{Source: path, Description: desc})
		}

		a, err := newApp("Prepare", strings.Join(append(touched, archives...), " "))
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.Prepare(opts)
		if err != nil {
			a.Fail()
			return err
		}

		fmt.Printf("Prepared entry %s\n", rec.ID)
		fmt.Printf("Fill in the title and body: %s\n", rec.Path)
		return nil
	},
}

// finalize command
var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Commit the staged entry to the daily log",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Finalize", "")
		if err != nil {
			return err
		}
		defer a.Close()

		id, violations, err := a.Finalize()
		if err != nil {
			a.Fail()
			return err
		}

		fmt.Printf("Finalized entry %s\n", id)
		return reportViolations(violations)
	},
}

// abort command
var abortCmd = &cobra.Command{
	Use:   "abort",
	Short: "Discard the staged entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Abort", "")
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.Abort()
		if err != nil {
			a.Fail()
			return err
		}
		if id == "" {
			fmt.Println("Nothing staged.")
			return nil
		}

		fmt.Printf("Aborted entry %s\n", id)
		return nil
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the staged entry, if any",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Status", "")
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.PendingStatus()
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Println("Nothing staged.")
			return nil
		}

		fmt.Printf("Staged entry %s at %s\n", rec.ID, rec.Path)
		if !rec.TitleFilled {
			fmt.Println("  title: placeholder not yet replaced")
		}
		if !rec.BodyFilled {
			fmt.Println("  body:  placeholder not yet replaced")
		}
		if rec.Pending != nil {
			for _, p := range rec.Pending.Archives {
				fmt.Printf("  will archive: %s\n", p.Source)
			}
			if rec.Pending.GitEntry {
				fmt.Println("  will create a git entry commit")
			}
		}
		return nil
	},
}

// edit-latest command
var editLatestCmd = &cobra.Command{
	Use:   "edit-latest",
	Short: "Inspect or correct the most recent entry",
}

var editShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the most recent entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ShowLast", "")
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.ShowLast()
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Println("No entries.")
			return nil
		}

		fmt.Print(rec.Raw)
		return nil
	},
}

var editDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the most recent entry and its assets",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp("DeleteLast", "")
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.ShowLast()
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Println("No entries.")
			return nil
		}

		if !yes {
			ok, err := confirm(fmt.Sprintf("Delete entry %s? [y/N] ", recordID(rec)))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted.")
				return nil
			}
		}

		// A record with no parseable id cannot be pinned; delete whatever
		// is last.
		expected := ""
		if rec.Entry != nil {
			expected = rec.Entry.ID
		}

		deleted, assets, err := a.DeleteLast(expected)
		if err != nil {
			a.Fail()
			return err
		}

		fmt.Printf("Deleted entry %s", recordID(deleted))
		if len(assets) > 0 {
			fmt.Printf(" and %d asset(s)", len(assets))
		}
		fmt.Println()
		return nil
	},
}

var editReplaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Replace the text of the most recent entry",
	Long: `Replace the text of the most recent entry, keeping its id and assets.
The replacement is read from --file, or from stdin when no file is given.
It must start with an "## Title" header; a missing time prefix is filled in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		content, err := readReplacement(file)
		if err != nil {
			return err
		}

		a, err := newApp("ReplaceLast", file)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.ReplaceLast(content)
		if err != nil {
			a.Fail()
			return err
		}

		fmt.Printf("Replaced entry %s\n", id)
		return nil
	},
}

var editRearchiveCmd = &cobra.Command{
	Use:   "rearchive FILE",
	Short: "Replace the most recent entry's assets with a fresh copy of FILE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Rearchive", args[0])
		if err != nil {
			return err
		}
		defer a.Close()

		assetID, deleted, err := a.Rearchive(args[0])
		if err != nil {
			a.Fail()
			return err
		}

		for _, id := range deleted {
			fmt.Printf("Removed asset %s\n", id)
		}
		fmt.Printf("Archived %s\n", assetID)
		return nil
	},
}

var editUnarchiveCmd = &cobra.Command{
	Use:   "unarchive",
	Short: "Delete the most recent entry's assets, keeping its text",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Unarchive", "")
		if err != nil {
			return err
		}
		defer a.Close()

		deleted, err := a.Unarchive()
		if err != nil {
			a.Fail()
			return err
		}

		if len(deleted) == 0 {
			fmt.Println("No assets to remove.")
			return nil
		}
		for _, id := range deleted {
			fmt.Printf("Removed asset %s\n", id)
		}
		fmt.Println("The entry text still references them; use replace to amend it.")
		return nil
	},
}

// assets command
var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Manage archived assets",
}

var assetsSaveCmd = &cobra.Command{
	Use:   "save ENTRY-ID FILE...",
	Short: "Archive file(s) under an entry id",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SaveAsset", strings.Join(args, " "))
		if err != nil {
			return err
		}
		defer a.Close()

		entryID := args[0]
		for _, file := range args[1:] {
			assetID, err := a.SaveAsset(entryID, file)
			if err != nil {
				a.Fail()
				return err
			}
			fmt.Printf("Archived %s\n", assetID)
		}
		return nil
	},
}

var assetsGetCmd = &cobra.Command{
	Use:   "get ASSET-ID",
	Short: "Restore an archived asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, _ := cmd.Flags().GetString("dest")

		a, err := newApp("RestoreAsset", args[0])
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.RestoreAsset(args[0], dest)
		if err != nil {
			return err
		}

		fmt.Printf("Restored to %s\n", path)
		return nil
	},
}

var assetsListCmd = &cobra.Command{
	Use:   "list [FILTER]",
	Short: "List archived assets",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ""
		if len(args) > 0 {
			filter = args[0]
		}

		a, err := newApp("ListAssets", filter)
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.ListAssets(filter)
		if err != nil {
			return err
		}

		if len(ids) == 0 {
			fmt.Println("No assets.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

// validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the store for integrity problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, _ := cmd.Flags().GetString("since")
		quiet, _ := cmd.Flags().GetBool("quiet")

		a, err := newApp("Validate", since)
		if err != nil {
			return err
		}
		defer a.Close()

		var violations []model.Violation
		if since != "" {
			violations, err = a.ValidateSince(since)
		} else {
			violations, err = a.Validate()
		}
		if err != nil {
			return err
		}

		if len(violations) == 0 {
			if !quiet {
				fmt.Println("Store is consistent.")
			}
			return nil
		}
		return reportViolations(violations)
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History", "")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				d := op.FinishedAt.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("%-12s  %s  %-10s  %s\n",
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
			)
		}
		return nil
	},
}

// reportViolations prints violations to stderr and returns an error when
// any were found, so the command exits nonzero.
func reportViolations(violations []model.Violation) error {
	if len(violations) == 0 {
		return nil
	}
	for _, v := range violations {
		fmt.Fprintln(os.Stderr, v.String())
	}
	return fmt.Errorf("found %d integrity problem(s)", len(violations))
}

// confirm prompts on stdin. Refuses when stdin is not a terminal, so a
// scripted delete must pass --yes explicitly.
func confirm(prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("stdin is not a terminal; pass --yes to confirm")
	}
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// readReplacement reads the replacement entry text from a file, or from
// stdin when file is empty.
func readReplacement(file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading replacement: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading replacement from stdin: %w", err)
	}
	return string(data), nil
}

func recordID(rec *model.Record) string {
	if rec.Entry == nil || rec.Entry.ID == "" {
		return "(no id)"
	}
	return rec.Entry.ID
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	editLatestCmd.AddCommand(editShowCmd)
	editLatestCmd.AddCommand(editDeleteCmd)
	editDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	editLatestCmd.AddCommand(editReplaceCmd)
	editReplaceCmd.Flags().StringP("file", "f", "", "Read the replacement from this file instead of stdin")
	editLatestCmd.AddCommand(editRearchiveCmd)
	editLatestCmd.AddCommand(editUnarchiveCmd)

	assetsCmd.AddCommand(assetsSaveCmd)
	assetsCmd.AddCommand(assetsGetCmd)
	assetsGetCmd.Flags().StringP("dest", "d", ".", "Directory to restore into")
	assetsCmd.AddCommand(assetsListCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(newIDCmd)
	rootCmd.AddCommand(lastCmd)
	lastCmd.Flags().BoolP("global", "g", false, "Search the whole store, not just today")
	lastCmd.Flags().Bool("with-title", false, "Print the entry title next to the id")
	rootCmd.AddCommand(prepareCmd)
	prepareCmd.Flags().StringArrayP("touched", "t", nil, "File touched, as path:description")
	prepareCmd.Flags().StringArrayP("archive", "a", nil, "File to archive, as path:description")
	prepareCmd.Flags().StringArrayP("related", "r", nil, "Related entry id")
	prepareCmd.Flags().Bool("git-entry", false, "Commit the entry text to the current git repository on finalize")
	rootCmd.AddCommand(finalizeCmd)
	rootCmd.AddCommand(abortCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(editLatestCmd)
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("since", "", "Check only entries newer than this id")
	validateCmd.Flags().BoolP("quiet", "q", false, "Print nothing when the store is consistent")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
}
