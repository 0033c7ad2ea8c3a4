// Package meta provides the per-column metadata record and its provenance
// types.
//
// Every column of every dataset carries exactly one Meta record describing
// what the column is (title, unit, descriptions), where its values came from
// (sources, origins, licenses), and how much transformation it has undergone
// (processing level, processing log). The merge algebra in internal/merge
// computes these records when columns are combined; this package only defines
// the records themselves, deep copying, and content-based equality.
package meta

type (
	// Source is the legacy provenance record: a loosely structured
	// description of where a dataset was obtained. New pipelines should
	// prefer Origin, but both are carried so that datasets ingested before
	// the structured schema existed remain fully attributed.
	Source struct {
		Name            string `json:"name,omitempty" yaml:"name,omitempty"`
		Description     string `json:"description,omitempty" yaml:"description,omitempty"`
		URL             string `json:"url,omitempty" yaml:"url,omitempty"`
		SourceDataURL   string `json:"source_data_url,omitempty" yaml:"source_data_url,omitempty"`
		DateAccessed    string `json:"date_accessed,omitempty" yaml:"date_accessed,omitempty"`
		PublicationDate string `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
		PublicationYear int    `json:"publication_year,omitempty" yaml:"publication_year,omitempty"`
		PublishedBy     string `json:"published_by,omitempty" yaml:"published_by,omitempty"`
	}

	// Origin is the structured provenance record describing the producer
	// snapshot a column's values were extracted from.
	Origin struct {
		Producer            string   `json:"producer,omitempty" yaml:"producer,omitempty"`
		Title               string   `json:"title,omitempty" yaml:"title,omitempty"`
		Description         string   `json:"description,omitempty" yaml:"description,omitempty"`
		TitleSnapshot       string   `json:"title_snapshot,omitempty" yaml:"title_snapshot,omitempty"`
		DescriptionSnapshot string   `json:"description_snapshot,omitempty" yaml:"description_snapshot,omitempty"`
		CitationFull        string   `json:"citation_full,omitempty" yaml:"citation_full,omitempty"`
		Attribution         string   `json:"attribution,omitempty" yaml:"attribution,omitempty"`
		AttributionShort    string   `json:"attribution_short,omitempty" yaml:"attribution_short,omitempty"`
		VersionProducer     string   `json:"version_producer,omitempty" yaml:"version_producer,omitempty"`
		URLMain             string   `json:"url_main,omitempty" yaml:"url_main,omitempty"`
		URLDownload         string   `json:"url_download,omitempty" yaml:"url_download,omitempty"`
		DateAccessed        string   `json:"date_accessed,omitempty" yaml:"date_accessed,omitempty"`
		DatePublished       string   `json:"date_published,omitempty" yaml:"date_published,omitempty"`
		License             *License `json:"license,omitempty" yaml:"license,omitempty"`
	}

	// License identifies the terms a column's values are redistributable
	// under.
	License struct {
		Name string `json:"name,omitempty" yaml:"name,omitempty"`
		URL  string `json:"url,omitempty" yaml:"url,omitempty"`
	}
)

// Copy returns an independent copy of the origin, including its license.
func (o Origin) Copy() Origin {
	out := o
	if o.License != nil {
		lic := *o.License
		out.License = &lic
	}

	return out
}

// Equal reports whether two licenses are the same by content.
func (l License) Equal(other License) bool {
	return l == other
}

// IsEmpty reports whether the license carries no information.
func (l License) IsEmpty() bool {
	return l == License{}
}
