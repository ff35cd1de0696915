package blogscrape

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// EncodeArticles writes records as an indented JSON array. Non-ASCII and
// HTML-significant characters are written as-is rather than escaped. A nil
// slice is written as an empty array.
func EncodeArticles(w io.Writer, records []ArticleRecord) error {
	if records == nil {
		records = []ArticleRecord{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode articles: %w", err)
	}
	return nil
}

// WriteArticles writes records to path, replacing any existing file. The
// file is written in one call once encoding has succeeded.
func WriteArticles(path string, records []ArticleRecord) error {
	var buf bytes.Buffer
	if err := EncodeArticles(&buf, records); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write articles: %w", err)
	}
	return nil
}

// ReadArticles loads records previously written by WriteArticles.
func ReadArticles(path string) ([]ArticleRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read articles: %w", err)
	}

	var records []ArticleRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse articles: %w", err)
	}
	return records, nil
}
