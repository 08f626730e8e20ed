package core

import (
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for submissions, assigned from a database
// sequence at creation time.
type ID uint64

// ContentDigest returns a short BLAKE2b digest of text, hex encoded.
// Identical content always produces the same digest, which stores use
// as a stable de-duplication key across repeated ingestion attempts.
func ContentDigest(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Status is the lifecycle state of a submission.
// Transitions are forward-only: Queued -> Processing -> Completed or Failed.
// A submission in Queued may also go directly to Failed on cancellation.
type Status int

const (
	// StatusQueued means the submission is waiting for a worker.
	StatusQueued Status = iota + 1
	// StatusProcessing means a worker has claimed the submission.
	StatusProcessing
	// StatusCompleted means every targeted store accepted the content.
	StatusCompleted
	// StatusFailed means extraction failed, at least one targeted store
	// failed, or the submission was cancelled while queued.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether the state machine permits moving to next.
// Same-state transitions are allowed only for Processing, which carries
// progress updates.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusQueued:
		return next == StatusProcessing || next == StatusFailed
	case StatusProcessing:
		return next == StatusProcessing || next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// Target selects which downstream stores a submission is written to.
type Target int

const (
	// TargetVector writes to the vector index only.
	TargetVector Target = iota + 1
	// TargetGraph writes to the selected graph database only.
	TargetGraph
	// TargetBoth writes to the vector index and the graph database.
	TargetBoth
)

func (t Target) String() string {
	switch t {
	case TargetVector:
		return "vector"
	case TargetGraph:
		return "graph"
	case TargetBoth:
		return "both"
	default:
		return "unknown"
	}
}

// IncludesVector reports whether the vector store is targeted.
func (t Target) IncludesVector() bool {
	return t == TargetVector || t == TargetBoth
}

// IncludesGraph reports whether a graph store is targeted.
func (t Target) IncludesGraph() bool {
	return t == TargetGraph || t == TargetBoth
}

// ParseTarget parses a target name. Matching is case-insensitive.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vector":
		return TargetVector, nil
	case "graph":
		return TargetGraph, nil
	case "both":
		return TargetBoth, nil
	default:
		return 0, ErrInvalidTarget
	}
}

// GraphBackend selects which graph database receives graph writes.
type GraphBackend int

const (
	// GraphNone means no graph backend is selected.
	GraphNone GraphBackend = iota
	// GraphNeo4j writes over the Bolt protocol.
	GraphNeo4j
	// GraphFalkorDB writes Cypher via the Redis command protocol.
	GraphFalkorDB
	// GraphGraphiti writes through the Graphiti HTTP service.
	GraphGraphiti
)

func (g GraphBackend) String() string {
	switch g {
	case GraphNone:
		return "none"
	case GraphNeo4j:
		return "neo4j"
	case GraphFalkorDB:
		return "falkordb"
	case GraphGraphiti:
		return "graphiti"
	default:
		return "unknown"
	}
}

// ParseGraphBackend parses a graph backend name. Matching is case-insensitive.
func ParseGraphBackend(s string) (GraphBackend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "neo4j":
		return GraphNeo4j, nil
	case "falkordb":
		return GraphFalkorDB, nil
	case "graphiti":
		return GraphGraphiti, nil
	default:
		return GraphNone, ErrInvalidGraphBackend
	}
}

// Format identifies the declared document format of a submission.
type Format int

const (
	// FormatRaw is pre-extracted text; no extractor runs for it.
	FormatRaw Format = iota + 1
	// FormatPDF is a PDF document.
	FormatPDF
	// FormatText is a plain text file.
	FormatText
	// FormatMarkdown is a Markdown file.
	FormatMarkdown
	// FormatEPUB is an EPUB book.
	FormatEPUB
	// FormatDOC is a legacy Word document.
	FormatDOC
	// FormatDOCX is a Word document.
	FormatDOCX
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatPDF:
		return "pdf"
	case FormatText:
		return "txt"
	case FormatMarkdown:
		return "md"
	case FormatEPUB:
		return "epub"
	case FormatDOC:
		return "doc"
	case FormatDOCX:
		return "docx"
	default:
		return "unknown"
	}
}

// FormatFromName determines the format from a filename extension.
// Matching is case-insensitive. Returns ErrUnknownFormat for anything
// without a recognized extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, nil
	case ".txt":
		return FormatText, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".epub":
		return FormatEPUB, nil
	case ".doc":
		return FormatDOC, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return 0, ErrUnknownFormat
	}
}

// Sentinel source names for submissions that did not arrive as files.
const (
	// SourceStdin marks a submission read from standard input.
	SourceStdin = "<stdin>"
	// SourceText marks a raw text submission.
	SourceText = "<text>"
)

// Submission is the persistent record of one ingestion request.
// It is created by an ingress adapter in StatusQueued and mutated only
// through the document registry while a worker processes it.
type Submission struct {
	Id           ID
	SourceName   string // original filename, SourceStdin, or SourceText
	Format       Format
	Status       Status
	Target       Target
	GraphBackend GraphBackend // required iff Target includes graph
	Progress     int          // 0-100, monotonically non-decreasing
	Metadata     map[string]string
	ErrorDetail  string // present iff Status == StatusFailed
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a deep copy of the submission so callers never share
// the registry's metadata map.
func (s *Submission) Clone() *Submission {
	if s == nil {
		return nil
	}
	out := *s
	if s.Metadata != nil {
		out.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}
