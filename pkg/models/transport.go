package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
	Type       string `json:"type,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ProcessResponse reports the outcome of a gated catalog scan.
type ProcessResponse struct {
	Ran         bool   `json:"ran"`
	Message     string `json:"message"`
	TotalImages int    `json:"totalImages"`
	ReportPath  string `json:"reportPath"`
}

// ImageListResponse lists the images available to the viewer.
type ImageListResponse struct {
	Images []string `json:"images"`
	Count  int      `json:"count"`
}

// ImageDetailsResponse is the viewer's status line for a selected image.
type ImageDetailsResponse struct {
	FileName   string `json:"fileName"`
	Format     string `json:"format"`
	FileSize   int64  `json:"fileSize"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RGBAverage string `json:"rgbAverage,omitempty"`
	// Unavailable carries the reason when RGBAverage is absent.
	Unavailable string `json:"rgbAverageUnavailable,omitempty"`
}

// AverageResponse carries only the average color of one image.
type AverageResponse struct {
	FileName   string `json:"fileName"`
	RGBAverage string `json:"rgbAverage"`
}

// PixelResponse describes the pixel under the cursor.
type PixelResponse struct {
	OnImage bool   `json:"onImage"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	R       uint8  `json:"r"`
	G       uint8  `json:"g"`
	B       uint8  `json:"b"`
	A       uint8  `json:"a"`
	Label   string `json:"label"`
}

// MatchResult is one candidate for a color match.
type MatchResult struct {
	FileName   string  `json:"fileName"`
	RGBAverage string  `json:"rgbAverage"`
	Distance   float64 `json:"distance"`
}

// MatchResponse lists the closest images to a requested color.
type MatchResponse struct {
	Target  string        `json:"target"`
	Matches []MatchResult `json:"matches"`
}
