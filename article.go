package blogscrape

// ArticleRecord is one harvested article as written to the output file.
type ArticleRecord struct {
	Title             string `json:"title"`
	Content           string `json:"content"`
	OriginalSourceURL string `json:"original_source_url"`
}
