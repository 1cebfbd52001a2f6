package models

// AnalysisResponse represents the response from a pipeline run
type AnalysisResponse struct {
	ID      string          `json:"id"`
	Status  string          `json:"status"`
	Crypto  string          `json:"crypto"`
	Cryptos []string        `json:"cryptos,omitempty"` // all groups of the upload
	Model   string          `json:"model"`
	Summary AnalysisSummary `json:"summary"`
	Insight Insight         `json:"insight"`
	Head    Table           `json:"head"`           // first rows of the selected group
	Rows    *Table          `json:"rows,omitempty"` // full augmented table when requested
	Links   AnalysisLinks   `json:"links"`
}

// AnalysisSummary contains the crisis statistics of one group
type AnalysisSummary struct {
	Rows           int     `json:"rows"`
	CrisisDays     int     `json:"crisis_days"`
	CrisisShare    float64 `json:"crisis_share"`
	Quantile       float64 `json:"quantile"`
	Threshold      float64 `json:"threshold"`
	ThresholdLabel string  `json:"threshold_label"` // two decimals, as displayed
	MinPredicted   float64 `json:"min_predicted"`
	MaxPredicted   float64 `json:"max_predicted"`
	MeanPredicted  float64 `json:"mean_predicted"`
}

// Insight is the headline message for the selected group
type Insight struct {
	Level   string `json:"level"` // "warning" or "success"
	Message string `json:"message"`
}

// Table is a header plus string rows
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// AnalysisLinks points at the artifacts of a cached run
type AnalysisLinks struct {
	Self       string `json:"self"`
	ExportCSV  string `json:"export_csv"`
	ExportXLSX string `json:"export_xlsx"`
	Chart      string `json:"chart"`
}

// GroupsResponse lists the groups found in an upload
type GroupsResponse struct {
	Column string   `json:"column"`
	Groups []string `json:"groups"`
	Count  int      `json:"count"`
}

// OverviewResponse ranks every group of an upload by crisis share
type OverviewResponse struct {
	Groups []GroupOverview `json:"groups"`
}

// GroupOverview represents one ranked group
type GroupOverview struct {
	Rank        int     `json:"rank"`
	Crypto      string  `json:"crypto"`
	Rows        int     `json:"rows"`
	CrisisDays  int     `json:"crisis_days"`
	CrisisShare float64 `json:"crisis_share"`
	Threshold   float64 `json:"threshold"`
	MinPred     float64 `json:"min_predicted"`
	MaxPred     float64 `json:"max_predicted"`
	MeanPred    float64 `json:"mean_predicted"`
}

// ModelInfo describes the loaded prediction provider
type ModelInfo struct {
	Name     string   `json:"name"`
	Features []string `json:"features"`
	Quantile float64  `json:"quantile"`
	Columns  Columns  `json:"columns"`
}

// Columns names the non-feature columns expected in uploads
type Columns struct {
	Group  string `json:"group"`
	Time   string `json:"time"`
	Target string `json:"target"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
