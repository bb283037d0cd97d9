package queue

// IngestJobMsg is the payload of ingest_queue messages. Exactly one of
// Path or S3Key identifies the document; BuildKG overrides the BUILD_KG
// environment default when set.
type IngestJobMsg struct {
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	S3Key   string `json:"s3Key,omitempty"`
	DocID   string `json:"docId"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	BuildKG *bool  `json:"buildKg,omitempty"`
}

// ScrapeJobMsg is the payload of scrape_queue messages.
type ScrapeJobMsg struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}
