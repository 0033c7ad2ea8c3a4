package config

import (
	"log/slog"

	"github.com/tabular-io/tabular/internal/diag"
	"github.com/tabular-io/tabular/internal/merge"
)

// LoadEngineOptions builds the merge-algebra configuration from the
// environment, sending warnings to the given logger through a rate-limited
// sink. A nil logger discards warnings.
func LoadEngineOptions(logger *slog.Logger) merge.Options {
	opts := merge.Options{
		ProcessingLog: GetEnvBool(EnvProcessingLog, true),
		Diagnostics:   diag.Discard,
	}

	if logger != nil {
		opts.Diagnostics = diag.NewLogSink(logger, GetEnvInt(EnvWarnRPS, DefaultWarnRPS))
	}

	return opts
}
