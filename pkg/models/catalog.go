package models

// ImageRecord is one entry of the catalog report. Width, Height and
// RGBAverage are omitted when the image could not be decoded; RGBAverage
// alone is omitted when the image has no fully opaque pixel.
type ImageRecord struct {
	FileName   string `json:"fileName"`
	FilePath   string `json:"filePath"`
	FileSize   int64  `json:"fileSize"`
	Width      *int   `json:"width,omitempty"`
	Height     *int   `json:"height,omitempty"`
	RGBAverage string `json:"rgbAverage,omitempty"`
}

// Decoded reports whether dimensions were recorded.
func (r ImageRecord) Decoded() bool {
	return r.Width != nil && r.Height != nil
}

// Report is the document written to image_info.json.
type Report struct {
	Images      []ImageRecord `json:"images"`
	TotalImages int           `json:"totalImages"`
	GeneratedAt string        `json:"generatedAt"`
}

// ImageMetadata describes a stored image object and its decoded dimensions.
type ImageMetadata struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	ContentType   string `json:"content_type,omitempty"`
	ContentLength int64  `json:"content_length"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        string `json:"format"`
}
