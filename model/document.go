package model

// Metadata keys set by the loaders
const (
	MetadataSource      = "source"
	MetadataTitle       = "title"
	MetadataDescription = "description"
	MetadataLanguage    = "language"
	MetadataSiteName    = "site_name"
)

// Document represents a loaded web page.
// Documents are only held in memory until they are split into chunks.
type Document struct {
	Source   string   `json:"source"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// NewDocument creates a Document and records its source and title in the metadata
func NewDocument(source string, title string, content string, metadata Metadata) *Document {
	m := metadata.Copy()
	m[MetadataSource] = source
	if title != "" {
		m[MetadataTitle] = title
	}

	return &Document{
		Source:   source,
		Title:    title,
		Content:  content,
		Metadata: m,
	}
}
