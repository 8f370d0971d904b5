package api

import (
	"time"

	"github.com/VoidMesh/heightfield/internal/grid"
	"github.com/VoidMesh/heightfield/internal/pipeline"
)

type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// HeightmapResponse describes a finished run. Heights and Classification
// are row-major matrices, omitted when the caller asks for a summary.
type HeightmapResponse struct {
	RunID          string      `json:"run_id"`
	Seed           int64       `json:"seed"`
	Width          int         `json:"width"`
	Length         int         `json:"length"`
	Stages         []string    `json:"stages"`
	Stats          grid.Stats  `json:"stats"`
	DurationMs     int64       `json:"duration_ms"`
	CreatedAt      time.Time   `json:"created_at"`
	Layers         []string    `json:"layers,omitempty"`
	Heights        [][]float64 `json:"heights,omitempty"`
	Classification [][]int     `json:"classification,omitempty"`
}

// Preview states reported by GET /api/v1/preview.
const (
	PreviewPending = "pending"
	PreviewDone    = "done"
	PreviewFailed  = "failed"
)

type PreviewResponse struct {
	Generation uint64             `json:"generation"`
	Status     string             `json:"status"`
	Error      string             `json:"error,omitempty"`
	Heightmap  *HeightmapResponse `json:"heightmap,omitempty"`
}

// NewHeightmapResponse converts a result, including the matrices when full.
func NewHeightmapResponse(res *pipeline.Result, full bool) *HeightmapResponse {
	resp := &HeightmapResponse{
		RunID:      res.RunID,
		Seed:       res.Seed,
		Width:      res.Width,
		Length:     res.Length,
		Stages:     res.Stages,
		Stats:      res.Stats,
		DurationMs: res.Duration.Milliseconds(),
		CreatedAt:  res.CreatedAt,
	}
	if !full {
		return resp
	}

	resp.Heights = res.Grid.Rows()
	if res.Layers != nil {
		resp.Layers = res.Layers.Layers
		resp.Classification = make([][]int, res.Layers.Length)
		for y := range resp.Classification {
			resp.Classification[y] = res.Layers.Cells[y*res.Layers.Width : (y+1)*res.Layers.Width]
		}
	}
	return resp
}
