package client

import (
	"time"

	"github.com/turtacn/LienPilot/internal/application/document"
	"github.com/turtacn/LienPilot/internal/application/notice"
	"github.com/turtacn/LienPilot/internal/application/report"
	"github.com/turtacn/LienPilot/internal/application/sequence"
	"github.com/turtacn/LienPilot/internal/domain/lien"
	"github.com/turtacn/LienPilot/internal/domain/noi"
)

// Request and result bodies are the server's own types, so the SDK cannot
// drift from the wire format.
type (
	StateInfo          = notice.StateInfo
	StateLienRule      = lien.StateLienRule
	DeadlineRequest    = notice.DeadlineRequest
	LienCase           = lien.LienCase
	FilingStatus       = lien.FilingStatus
	WarningLevel       = lien.WarningLevel
	EligibilityRequest = notice.EligibilityRequest
	EligibilityResult  = notice.EligibilityResult

	AdviceRequest  = notice.AdviceRequest
	AdviceResult   = notice.AdviceResult
	Decision       = noi.Decision
	Urgency        = noi.Urgency
	NoticeRequest  = notice.NoticeRequest
	LetterResult   = notice.LetterResult
	RenderRequest  = notice.RenderRequest
	RenderOptions  = document.Overrides
	StoredDocument = notice.RenderResult

	SequenceInput = sequence.Input
	Sequence      = sequence.Sequence
	ExportRequest = notice.ExportRequest
	InvoiceRecord = report.InvoiceRecord
	InvoiceFilter = report.InvoiceFilter
	ExportSummary = report.Summary
	ExportRow     = report.Row
)

// DeadlineResult is a lien case with its derived filing status.
type DeadlineResult struct {
	LienCase
	Status FilingStatus `json:"status"`
}

// Document is a rendered PDF returned inline.
type Document struct {
	Filename    string
	ContentType string
	Pages       int
	Cached      bool
	Data        []byte
}

// Export is the JSON form of a lien status export.
type Export struct {
	Summary   ExportSummary `json:"summary"`
	AsOf      time.Time     `json:"as_of"`
	Rows      []ExportRow   `json:"rows,omitempty"`
	ObjectKey string        `json:"object_key,omitempty"`
	URL       string        `json:"url,omitempty"`
}

//Personal.AI order the ending
