package chunker

import "errors"

var (
	// ErrExtractionFailed indicates document text extraction failed.
	// Extraction is a degraded condition: the returned text still carries a
	// placeholder so the rest of the pipeline can continue.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrUnsupportedFileType indicates the file extension is not handled.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)
