package api

import (
	"time"

	"github.com/heimdex/prproj-export/internal/catalog"
	"github.com/heimdex/prproj-export/internal/project"
	"github.com/heimdex/prproj-export/internal/rows"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
	FPS     int    `json:"fps"`
}

type SequencesResponse struct {
	Filename  string                 `json:"filename"`
	Sequences []project.SequenceInfo `json:"sequences"`
}

type ConversionResponse struct {
	ID          string     `json:"id"`
	Filename    string     `json:"filename"`
	ContentHash string     `json:"content_hash"`
	SequenceID  string     `json:"sequence_id,omitempty"`
	Sequence    string     `json:"sequence,omitempty"`
	FPS         int        `json:"fps"`
	Size        int64      `json:"size"`
	RowCount    int        `json:"row_count"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	Rows        []rows.Row `json:"rows,omitempty"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

type ConversionsResponse struct {
	Conversions []ConversionResponse `json:"conversions"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ConversionToResponse(c *catalog.Conversion) ConversionResponse {
	return ConversionResponse{
		ID:          c.ID,
		Filename:    c.Filename,
		ContentHash: c.ContentHash,
		SequenceID:  c.SequenceID,
		Sequence:    c.Sequence,
		FPS:         c.FPS,
		Size:        c.Size,
		RowCount:    c.RowCount,
		Status:      c.Status,
		Error:       c.Error,
		Rows:        c.Rows,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}
