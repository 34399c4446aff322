package types

import "errors"

var (
	// ErrChunkOverlap rejects a chunker configuration whose overlap is not
	// strictly smaller than the chunk size.
	ErrChunkOverlap = errors.New("chunk overlap must be smaller than chunk size")

	// ErrUnknownDepartment rejects a department name outside the known set.
	ErrUnknownDepartment = errors.New("unknown department")

	// ErrNoDepartment marks a corpus document whose path names no known
	// department and no broadcast segment.
	ErrNoDepartment = errors.New("no department segment in document path")

	// ErrModelMismatch signals that the loaded index was built with a
	// different embedding model than the one configured for queries.
	ErrModelMismatch = errors.New("index embedding model does not match configured model")

	// ErrIngestInProgress rejects an index rebuild while another is running.
	ErrIngestInProgress = errors.New("an index build is already in progress")

	// ErrEmptyCorpus signals that ingestion found no usable documents.
	ErrEmptyCorpus = errors.New("corpus contains no usable documents")

	// ErrIndexNotLoaded signals a query before any index has been built or
	// loaded.
	ErrIndexNotLoaded = errors.New("no vector index loaded")
)
