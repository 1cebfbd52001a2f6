package models

// AnalysisRequest carries the form fields sent alongside an uploaded dataset.
// The dataset itself is the multipart "file" field or a text/csv body.
type AnalysisRequest struct {
	Crypto      string `form:"crypto"`       // default: first group of the upload
	IncludeRows bool   `form:"include_rows"` // default: false
}

// ExportRequest selects the download format.
type ExportRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=csv xlsx"` // default: csv
}

// ChartRequest controls the rendered chart size in pixels.
type ChartRequest struct {
	Width  int `form:"width" binding:"omitempty,min=200,max=4000"`
	Height int `form:"height" binding:"omitempty,min=150,max=3000"`
}
