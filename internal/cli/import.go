package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/coletadomiciliar/backoffice/internal/config"
	"github.com/coletadomiciliar/backoffice/internal/entrypoint"
	"github.com/coletadomiciliar/backoffice/internal/services"
)

// ImportCommand imports one spreadsheet from disk and prints the JSON report.
type ImportCommand struct {
	File            string
	DatabasePath    string
	DryRun          bool
	NoCars          bool
	NoFilter        bool
	BlockPastDates  bool
	AllowDuplicates bool
	NoNormalize     bool

	Config *config.Config
	Logger *zap.Logger
	Out    io.Writer
}

func NewImportCommand(cfg *config.Config, logger *zap.Logger) *ImportCommand {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportCommand{Config: cfg, Logger: logger, Out: os.Stdout}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)

	fs.StringVar(&cmd.File, "file", "", "Spreadsheet to import: .csv, .xlsx or .xls (required)")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.Config.Database.Path, "Path to the SQLite database file")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse, normalize and check duplicates without saving")
	fs.BoolVar(&cmd.NoCars, "no-cars", !cmd.Config.Import.RegisterCars, "Do not register cars found in the spreadsheet")
	fs.BoolVar(&cmd.NoFilter, "no-filter", !cmd.Config.Import.FilterRoomCode, "Keep rows whose room name lacks the collection room code")
	fs.BoolVar(&cmd.BlockPastDates, "block-past", cmd.Config.Import.BlockPastDates, "Reject rows scheduled before today")
	fs.BoolVar(&cmd.AllowDuplicates, "allow-duplicates", !cmd.Config.Import.SkipDuplicates, "Save rows that match an existing appointment")
	fs.BoolVar(&cmd.NoNormalize, "no-normalize", !cmd.Config.Import.Normalize, "Skip address and document normalization")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import a scheduling spreadsheet into the database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file agenda.xlsx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import -file agenda.csv -dry-run -no-filter\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.File == "" {
		fs.Usage()
		return fmt.Errorf("file is required")
	}

	return nil
}

// Options returns the import policies selected by the flags.
func (cmd *ImportCommand) Options() services.ImportOptions {
	return services.ImportOptions{
		DryRun:         cmd.DryRun,
		RegisterCars:   !cmd.NoCars,
		FilterRoomCode: !cmd.NoFilter,
		SkipDuplicates: !cmd.AllowDuplicates,
		BlockPastDates: cmd.BlockPastDates,
		Normalize:      !cmd.NoNormalize,
	}
}

func (cmd *ImportCommand) Run(ctx context.Context) error {
	data, err := os.ReadFile(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.File, err)
	}

	cfg := *cmd.Config
	if cmd.DatabasePath != "" {
		cfg.Database.Path = cmd.DatabasePath
	}

	app, err := entrypoint.NewApp(&cfg, cmd.Logger, false)
	if err != nil {
		return err
	}
	defer app.Close()

	report, importErr := app.Imports.ImportFile(ctx, filepath.Base(cmd.File), data, cmd.Options())
	if report != nil {
		encoder := json.NewEncoder(cmd.Out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	if importErr != nil {
		return fmt.Errorf("import failed: %w", importErr)
	}
	return nil
}
