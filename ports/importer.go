package ports

import (
	"io"
	"time"

	"phenolab/domain/colony"
	"phenolab/domain/frame"
)

// ImportResult is what every hardware importer hands to the pipeline: the
// raw measurement table plus the registries describing it. The pipeline
// validates nothing beyond the structural needs of each operator.
type ImportResult struct {
	Table            *frame.Frame
	Animals          map[string]*colony.Animal
	Variables        map[string]*colony.Variable
	SamplingInterval time.Duration
}

// TableReader produces a raw table conforming to the pipeline's column
// contract (Animal, DateTime, Timedelta, one column per variable).
type TableReader interface {
	Read(r io.Reader) (*ImportResult, error)
}
