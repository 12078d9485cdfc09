package report

// Report is the top-level JSON written by coverhue extract and batch.
type Report struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Radius      float64          `json:"radius"`
	BasePath    string           `json:"base_path"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Albums      map[string]Album `json:"albums"`
	Stats       Stats            `json:"stats"`
}

// BuildInfo captures run parameters for diagnostics.
type BuildInfo struct {
	Workers    int    `json:"workers"`
	CachePath  string `json:"cache_path,omitempty"`
	SettingsAt string `json:"settings_path,omitempty"`
}

// Album describes the artwork chosen for one folder or track.
type Album struct {
	Source  SourceInfo `json:"source"`
	Palette []Swatch   `json:"palette"`          // most common first
	Active  int        `json:"active"`           // index into Palette
	Texture *Texture   `json:"texture,omitempty"` // nil when not written
	Error   string     `json:"error,omitempty"`
}

// SourceInfo holds metadata about the unscaled artwork.
type SourceInfo struct {
	Kind     string `json:"kind"` // "embedded" or "external"
	Path     string `json:"path"` // audio file for embedded art
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Hash     string `json:"hash"` // 8 hex chars
	HasAlpha bool   `json:"has_alpha"`
}

// Swatch is one candidate accent colour.
type Swatch struct {
	Hex        string  `json:"hex"`
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Value      float64 `json:"value"`
	Count      uint    `json:"count"`
}

// Texture is the scaled image written next to the report.
type Texture struct {
	Format string `json:"format"` // "png", "jpeg", "avif"
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"` // bytes on disk
	Hash   string `json:"hash"` // first 16 hex chars of xxhash64
	Path   string `json:"path"` // relative to base_path
}

// Stats aggregates run metrics.
type Stats struct {
	TotalAlbums       int   `json:"total_albums"`
	WithArt           int   `json:"with_art"`
	Failed            int   `json:"failed"`
	TotalSwatches     int   `json:"total_swatches"`
	TotalTextureBytes int64 `json:"total_texture_bytes"`
}

// SupportedVersion is the current schema version.
const SupportedVersion = 1
