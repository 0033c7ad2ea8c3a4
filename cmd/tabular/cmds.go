package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tabular-io/tabular/internal/catalog"
)

func addCommands(root *cobra.Command, logger *slog.Logger) {
	root.AddCommand(&cobra.Command{
		Use:   "inspect sidecar",
		Short: "Summarize a metadata sidecar: columns, units, provenance, processing history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(cmd, args[0])
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "validate sidecar",
		Short: "Check a metadata sidecar for producer mistakes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validate(cmd, logger, args[0])
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "checksum sidecar",
		Short: "Print the content checksum of a metadata sidecar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checksum(cmd, args[0])
		},
	})
}

func inspect(cmd *cobra.Command, path string) error {
	sc, err := catalog.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "table: %s\n", sc.Table.ShortName)

	if sc.Table.Title != "" {
		fmt.Fprintf(out, "title: %s\n", sc.Table.Title)
	}

	if sc.SnapshotID != "" {
		fmt.Fprintf(out, "snapshot: %s\n", sc.SnapshotID)
	}

	fmt.Fprintf(out, "columns: %d\n", len(sc.Columns))

	for name, m := range sc.Columns {
		if m == nil {
			fmt.Fprintf(out, "  %s: <no record>\n", name)

			continue
		}

		fmt.Fprintf(out, "  %s:\n", name)

		if m.Title != "" {
			fmt.Fprintf(out, "    title: %s\n", m.Title)
		}

		if m.Unit != "" {
			fmt.Fprintf(out, "    unit: %s\n", m.Unit)
		}

		if m.ProcessingLevel != "" {
			fmt.Fprintf(out, "    processing_level: %s\n", m.ProcessingLevel)
		}

		for _, s := range m.Sources {
			fmt.Fprintf(out, "    source: %s\n", s.Name)
		}

		for _, o := range m.Origins {
			fmt.Fprintf(out, "    origin: %s (%s)\n", o.Title, o.Producer)
		}

		if n := len(m.ProcessingLog); n > 0 {
			fmt.Fprintf(out, "    operations: %d (last: %s)\n", n, m.ProcessingLog[n-1].Operation)
		}
	}

	return nil
}

func validate(cmd *cobra.Command, logger *slog.Logger, path string) error {
	sc, err := catalog.Load(path)
	if err != nil {
		return err
	}

	issues := catalog.Validate(sc)
	if len(issues) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "ok")

		return nil
	}

	for _, issue := range issues {
		logger.Warn("Sidecar validation issue",
			slog.String("path", path),
			slog.String("issue", issue.String()),
		)
		fmt.Fprintln(cmd.OutOrStdout(), issue.String())
	}

	return fmt.Errorf("sidecar %s has %d validation issues", path, len(issues))
}

func checksum(cmd *cobra.Command, path string) error {
	sc, err := catalog.Load(path)
	if err != nil {
		return err
	}

	sum, err := catalog.Checksum(sc)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), sum)

	return nil
}
