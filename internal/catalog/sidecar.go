// Package catalog provides the metadata sidecar: the JSON/YAML document
// persisted alongside a dataset's data file, carrying the table-level record
// and one metadata record per column.
//
// The sidecar is the engine's boundary with the surrounding pipeline: the
// load path stamps each column's initial metadata from a sidecar, and the
// save path captures the propagated records back out for persistence in the
// content-addressed catalog.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tabular-io/tabular/internal/merge"
	"github.com/tabular-io/tabular/internal/meta"
	"github.com/tabular-io/tabular/internal/proclog"
	"github.com/tabular-io/tabular/internal/table"
)

// Sentinel errors for sidecar handling.
var (
	// ErrUnsupportedFormat is returned for sidecar paths without a known
	// extension.
	ErrUnsupportedFormat = errors.New("unsupported sidecar format (want .json, .yaml or .yml)")

	// ErrNilSidecar is returned when operating on a nil sidecar.
	ErrNilSidecar = errors.New("sidecar cannot be nil")
)

// Sidecar is the serialized metadata document for one table.
type Sidecar struct {
	// SnapshotID uniquely identifies this capture of the table's metadata.
	SnapshotID string `json:"snapshot_id,omitempty" yaml:"snapshot_id,omitempty"`

	// Checksum is the content hash of the sidecar with SnapshotID and
	// Checksum itself cleared; two captures of identical metadata hash the
	// same.
	Checksum string `json:"checksum,omitempty" yaml:"checksum,omitempty"`

	// Table is the table-level metadata record.
	Table table.Meta `json:"table" yaml:"table"`

	// Columns maps column name to its metadata record.
	Columns map[string]*meta.Meta `json:"columns" yaml:"columns"`
}

// Capture extracts a sidecar from a table: table-level metadata plus a deep
// copy of every column's record, stamped with a fresh snapshot ID and a
// content checksum.
func Capture(tb *table.Table) (*Sidecar, error) {
	if tb == nil {
		return nil, table.ErrNilTable
	}

	sc := &Sidecar{
		Table:   tb.Meta(),
		Columns: make(map[string]*meta.Meta, tb.Width()),
	}

	for _, name := range tb.Columns() {
		col, err := tb.Column(name)
		if err != nil {
			return nil, err
		}

		m, err := col.Metadata()
		if err != nil {
			return nil, fmt.Errorf("failed to capture column %q: %w", name, err)
		}

		sc.Columns[name] = m.Copy()
	}

	checksum, err := Checksum(sc)
	if err != nil {
		return nil, err
	}

	sc.Checksum = checksum
	sc.SnapshotID = uuid.New().String()

	return sc, nil
}

// Apply stamps every column of the table that appears in the sidecar with a
// copy of its record, extended with a load log entry when tracking is
// enabled. Columns absent from the sidecar are left untouched.
func Apply(sc *Sidecar, tb *table.Table, opts merge.Options) error {
	if sc == nil {
		return ErrNilSidecar
	}

	if tb == nil {
		return table.ErrNilTable
	}

	for _, name := range tb.Columns() {
		record, ok := sc.Columns[name]
		if !ok {
			continue
		}

		combined, err := merge.Combine(name, proclog.OpLoad, []merge.Operand{merge.Annotated(name, record)}, opts)
		if err != nil {
			return fmt.Errorf("failed to apply metadata to column %q: %w", name, err)
		}

		col, err := tb.Column(name)
		if err != nil {
			return err
		}

		if err := col.SetMetadata(combined); err != nil {
			return err
		}
	}

	return nil
}

// Checksum computes the content hash of the sidecar, ignoring the checksum
// and snapshot ID fields themselves.
func Checksum(sc *Sidecar) (string, error) {
	if sc == nil {
		return "", ErrNilSidecar
	}

	stripped := *sc
	stripped.Checksum = ""
	stripped.SnapshotID = ""

	hash, err := meta.ContentHash(stripped)
	if err != nil {
		return "", fmt.Errorf("failed to checksum sidecar: %w", err)
	}

	return hash, nil
}

// Load reads a sidecar from disk, dispatching on the file extension.
func Load(path string) (*Sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sidecar: %w", err)
	}

	sc := &Sidecar{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, sc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON sidecar %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, sc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML sidecar %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if sc.Columns == nil {
		sc.Columns = make(map[string]*meta.Meta)
	}

	return sc, nil
}

// Save writes a sidecar to disk, dispatching on the file extension.
func Save(path string, sc *Sidecar) error {
	if sc == nil {
		return ErrNilSidecar
	}

	var (
		data []byte
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(sc, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(sc)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if err != nil {
		return fmt.Errorf("failed to encode sidecar: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write sidecar: %w", err)
	}

	return nil
}

// Issue describes one validation finding on a sidecar.
type Issue struct {
	Column  string
	Message string
}

func (i Issue) String() string {
	if i.Column == "" {
		return i.Message
	}

	return fmt.Sprintf("column %q: %s", i.Column, i.Message)
}

// Validate checks a sidecar for producer mistakes that the merge algebra
// would otherwise fail on mid-pipeline: unknown processing levels, invalid
// operation tags, and columns with no descriptive metadata at all.
func Validate(sc *Sidecar) []Issue {
	if sc == nil {
		return []Issue{{Message: "sidecar is nil"}}
	}

	var issues []Issue

	if sc.Table.ShortName == "" {
		issues = append(issues, Issue{Message: "table has no short_name"})
	}

	for name, m := range sc.Columns {
		if m == nil {
			issues = append(issues, Issue{Column: name, Message: "record is null"})

			continue
		}

		if m.ProcessingLevel != "" && !m.ProcessingLevel.IsValid() {
			issues = append(issues, Issue{
				Column:  name,
				Message: fmt.Sprintf("unknown processing level %q", m.ProcessingLevel),
			})
		}

		if m.Title == "" && m.Description == "" && m.DescriptionShort == "" {
			issues = append(issues, Issue{Column: name, Message: "no title or description"})
		}

		for _, entry := range m.ProcessingLog {
			if !entry.Operation.IsValid() {
				issues = append(issues, Issue{
					Column:  name,
					Message: fmt.Sprintf("unknown operation %q in processing log", entry.Operation),
				})
			}
		}
	}

	return issues
}
