package resolver

// Chapter is a named section of the source video, passed through from
// the extractor for the submission UI.
type Chapter struct {
	Title     string  `json:"title"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// Metadata is the probe result returned to API callers.
type Metadata struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Uploader   string    `json:"uploader"`
	Duration   float64   `json:"duration"`
	Thumbnail  string    `json:"thumbnail"`
	IsVertical bool      `json:"is_vertical"`
	Chapters   []Chapter `json:"chapters"`
}

// extractorInfo mirrors the slice of yt-dlp's -J output we consume.
type extractorInfo struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Uploader   string            `json:"uploader"`
	Channel    string            `json:"channel"`
	Duration   float64           `json:"duration"`
	Formats    []extractorFormat `json:"formats"`
	Thumbnails []extractorThumb  `json:"thumbnails"`
	Chapters   []Chapter         `json:"chapters"`
}

type extractorFormat struct {
	FormatID string `json:"format_id"`
	Vcodec   string `json:"vcodec"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type extractorThumb struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// hasVideo reports whether the format carries a video stream.
func (f extractorFormat) hasVideo() bool {
	return f.Vcodec != "" && f.Vcodec != "none"
}

// isVertical classifies orientation from the highest-area video
// format. No usable format defaults to landscape.
func (info *extractorInfo) isVertical() bool {
	var best extractorFormat
	bestArea := -1
	for _, f := range info.Formats {
		if !f.hasVideo() {
			continue
		}
		if area := f.Width * f.Height; area > bestArea {
			best, bestArea = f, area
		}
	}
	return best.Height > best.Width && best.Width > 0 && best.Height > 0
}

// bestThumbnail picks the largest thumbnail by area.
func (info *extractorInfo) bestThumbnail() string {
	var url string
	bestArea := -1
	for _, t := range info.Thumbnails {
		if area := t.Width * t.Height; area > bestArea {
			url, bestArea = t.URL, area
		}
	}
	return url
}

// metadata flattens the raw extractor payload into the API shape.
func (info *extractorInfo) metadata() Metadata {
	uploader := info.Uploader
	if uploader == "" {
		uploader = info.Channel
	}
	chapters := info.Chapters
	if chapters == nil {
		chapters = []Chapter{}
	}
	return Metadata{
		ID:         info.ID,
		Title:      info.Title,
		Uploader:   uploader,
		Duration:   info.Duration,
		Thumbnail:  info.bestThumbnail(),
		IsVertical: info.isVertical(),
		Chapters:   chapters,
	}
}
