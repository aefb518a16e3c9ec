package ports

import (
	"phenolab/domain/frame"
)

// FrameWriter receives one named output table per call. Implementations
// decide the serialization (worksheet, CSV file, HTTP body).
type FrameWriter interface {
	WriteFrame(name string, f *frame.Frame) error
}
