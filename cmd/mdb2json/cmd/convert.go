package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mdb2json/internal/converter"
	"github.com/dbsmedya/mdb2json/internal/logger"
	"github.com/dbsmedya/mdb2json/internal/sink"
)

var convertCmd = &cobra.Command{
	Use:   "convert <source> [output]",
	Short: "Convert an Access file to a JSON document",
	Long: `Convert exports every table of an Access file and writes a single JSON
document of the form {"database": ..., "tables": {name: [rows]}}.

The output defaults to the source path with its extension replaced by .json.

Example:
  mdb2json convert pesmi.mdb
  mdb2json convert pesmi.mdb /tmp/pesmi.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(GetCLIOverrides())
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	source := args[0]
	output := converter.DefaultOutputPath(source)
	if len(args) > 1 {
		output = args[1]
	}

	log.Debugw("Starting conversion",
		"source", source,
		"output", output,
		"config", GetConfigFile(),
	)

	ctx, cancel := signalContext(log)
	defer cancel()

	printer := newPrinter(cmd)
	conv, err := newConverter(cfg, log, printer)
	if err != nil {
		return err
	}

	doc, err := conv.Convert(ctx, source)
	if err != nil {
		return err
	}

	if err := sink.WriteJSONFile(output, doc, cfg.Output.Indent); err != nil {
		return fmt.Errorf("error writing JSON file: %w", err)
	}

	printer.Converted(output, doc)
	return nil
}
