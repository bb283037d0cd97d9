package loader

import (
	"context"
)

type GraphFileType string

const (
	GraphFileTypeDocument GraphFileType = "document"
	GraphFileTypeWeb      GraphFileType = "web"
)

// GraphFile represents a source document that can be loaded into raw text
// for chunking and graph construction. FilePath is a filesystem path for
// documents and a URL for web sources.
//
// The actual content is retrieved via the associated GraphFileLoader.
type GraphFile struct {
	ID       string
	FilePath string
	FileType GraphFileType
	Loader   GraphFileLoader
}

// NewGraphFileParams defines the input parameters for creating a new GraphFile
// instance.
type NewGraphFileParams struct {
	ID       string
	FilePath string
	Loader   GraphFileLoader
}

// NewGraphDocumentFile creates a new GraphFile of type GraphFileTypeDocument.
// This is used for text-based documents such as PDFs or plain text files.
func NewGraphDocumentFile(params NewGraphFileParams) GraphFile {
	return GraphFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		FileType: GraphFileTypeDocument,
		Loader:   params.Loader,
	}
}

// NewGraphWebFile creates a new GraphFile of type GraphFileTypeWeb pointing
// at a URL.
func NewGraphWebFile(params NewGraphFileParams) GraphFile {
	return GraphFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		FileType: GraphFileTypeWeb,
		Loader:   params.Loader,
	}
}

// GetText retrieves the raw text content of the file using its Loader.
//
// Example:
//
//	text, err := file.GetText(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(string(text))
func (f *GraphFile) GetText(ctx context.Context) ([]byte, error) {
	return f.Loader.GetFileText(ctx, *f)
}

// GraphFileLoader defines the interface for loading the contents of a GraphFile.
// Implementations may load files from disk, cloud storage, or the web.
type GraphFileLoader interface {
	GetFileText(ctx context.Context, file GraphFile) ([]byte, error)
}

// CacheKey returns the cache identity of a file for loader-level caching.
func CacheKey(file GraphFile) string {
	return file.ID + ":" + file.FilePath
}
