package export

import "PutScreener/internal/model"

// Exporter writes a ResultSet to durable output.
type Exporter interface {
	Export(rs *model.ResultSet) error
	Path() string
}

// NoopExporter is used when no output file is wanted.
type NoopExporter struct{}

func NewNoopExporter() *NoopExporter { return &NoopExporter{} }

func (n *NoopExporter) Export(_ *model.ResultSet) error { return nil }
func (n *NoopExporter) Path() string                    { return "" }
