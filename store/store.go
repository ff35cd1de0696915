package store

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pevans/blogscrape"
	"golang.org/x/text/unicode/norm"
)

// Custom errors for article operations
var (
	ErrArticleNotFound = errors.New("article not found")
	ErrDuplicateSlug   = errors.New("article with this slug already exists")
	ErrInvalidArticle  = errors.New("invalid article")
)

// maxTitleLength is the widest title the API accepts.
const maxTitleLength = 255

// ValidationError describes a single invalid field. It matches
// ErrInvalidArticle under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidArticle
}

// ArticleStore persists harvested articles using SQLite.
type ArticleStore struct {
	db *sql.DB
}

// Article is a stored article.
type Article struct {
	ArticleID         uuid.UUID `json:"id"`
	Title             string    `json:"title"`
	Slug              string    `json:"slug"`
	Content           string    `json:"content"`
	OriginalSourceURL *string   `json:"original_source_url"`
	References        *string   `json:"references"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ArticleInput holds the fields needed to create an article.
type ArticleInput struct {
	Title             string  `json:"title"`
	Content           string  `json:"content"`
	OriginalSourceURL *string `json:"original_source_url,omitempty"`
	References        *string `json:"references,omitempty"`
}

// ArticleUpdate holds the fields that can be changed on an article. Nil
// fields are left alone.
type ArticleUpdate struct {
	Title             *string `json:"title,omitempty"`
	Content           *string `json:"content,omitempty"`
	OriginalSourceURL *string `json:"original_source_url,omitempty"`
	References        *string `json:"references,omitempty"`
}

// ImportError records why one item of a batch was not imported.
type ImportError struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Error string `json:"error"`
}

// ImportResult summarizes a batch import.
type ImportResult struct {
	ImportedCount int           `json:"imported_count"`
	ErrorCount    int           `json:"error_count"`
	Imported      []Article     `json:"imported"`
	Errors        []ImportError `json:"errors"`
}

// InputFromRecord converts a harvested record into store input.
func InputFromRecord(record blogscrape.ArticleRecord) ArticleInput {
	input := ArticleInput{
		Title:   record.Title,
		Content: record.Content,
	}
	if record.OriginalSourceURL != "" {
		sourceURL := record.OriginalSourceURL
		input.OriginalSourceURL = &sourceURL
	}
	return input
}

// Validate requires a title of at most maxTitleLength characters and
// non-empty content. A source URL, if present, must be absolute http(s).
func (in ArticleInput) Validate() error {
	if err := validateTitle(in.Title); err != nil {
		return err
	}
	if err := validateContent(in.Content); err != nil {
		return err
	}
	return validateSourceURL(in.OriginalSourceURL)
}

// Validate checks the fields that are set.
func (u ArticleUpdate) Validate() error {
	if u.Title != nil {
		if err := validateTitle(*u.Title); err != nil {
			return err
		}
	}
	if u.Content != nil {
		if err := validateContent(*u.Content); err != nil {
			return err
		}
	}
	return validateSourceURL(u.OriginalSourceURL)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return &ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("must not exceed %d characters", maxTitleLength),
		}
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: "content", Message: "is required"}
	}
	return nil
}

func validateSourceURL(sourceURL *string) error {
	if sourceURL == nil || *sourceURL == "" {
		return nil
	}
	u, err := url.Parse(*sourceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "original_source_url", Message: "must be a valid URL"}
	}
	return nil
}

// latinFolds covers Latin letters that have no canonical decomposition.
var latinFolds = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "œ", "oe", "ø", "o", "đ", "d", "ł", "l", "þ", "th",
)

// Slugify lowercases title and joins its letters and digits with hyphens,
// e.g. "Café déjà vu" becomes "cafe-deja-vu". Accents are stripped from Latin
// letters; other scripts are kept as they are. A title with nothing usable
// becomes "article".
func Slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false

	for _, r := range foldLatin(strings.ToLower(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	if b.Len() == 0 {
		return "article"
	}
	return b.String()
}

// foldLatin removes combining marks that follow a Latin base letter. Marks
// on other scripts (Japanese voicing marks, for one) are kept.
func foldLatin(s string) string {
	decomposed := norm.NFD.String(s)
	kept := make([]rune, 0, len(decomposed))
	latinBase := false

	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			if !latinBase {
				kept = append(kept, r)
			}
			continue
		}
		latinBase = unicode.Is(unicode.Latin, r)
		kept = append(kept, r)
	}

	return latinFolds.Replace(norm.NFC.String(string(kept)))
}

// nullIfEmpty maps an empty optional value to NULL.
func nullIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// NewArticleStore creates a new article store with the given database path.
func NewArticleStore(dbPath string) (*ArticleStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &ArticleStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the articles table if it doesn't exist.
func (s *ArticleStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		article_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		content TEXT NOT NULL,
		original_source_url TEXT,
		"references" TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *ArticleStore) Close() error {
	return s.db.Close()
}

// CreateArticle validates and stores a new article.
func (s *ArticleStore) CreateArticle(input ArticleInput) (*Article, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	article := &Article{
		ArticleID:         uuid.New(),
		Title:             input.Title,
		Slug:              Slugify(input.Title),
		Content:           input.Content,
		OriginalSourceURL: nullIfEmpty(input.OriginalSourceURL),
		References:        input.References,
		CreatedAt:         now.Truncate(0),
		UpdatedAt:         now.Truncate(0),
	}

	query := `
		INSERT INTO articles (
			article_id, title, slug, content, original_source_url,
			"references", created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		article.ArticleID.String(),
		article.Title,
		article.Slug,
		article.Content,
		article.OriginalSourceURL,
		article.References,
		formatTime(&article.CreatedAt),
		formatTime(&article.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("failed to insert article: %w", err)
	}

	return article, nil
}

// GetArticle retrieves an article by ID.
func (s *ArticleStore) GetArticle(articleID uuid.UUID) (*Article, error) {
	query := `
		SELECT article_id, title, slug, content, original_source_url,
		       "references", created_at, updated_at
		FROM articles
		WHERE article_id = ?
	`

	article, err := scanArticle(s.db.QueryRow(query, articleID.String()))
	if err == sql.ErrNoRows {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}

	return article, nil
}

// ListArticles returns all articles, newest first.
func (s *ArticleStore) ListArticles() ([]Article, error) {
	query := `
		SELECT article_id, title, slug, content, original_source_url,
		       "references", created_at, updated_at
		FROM articles
		ORDER BY created_at DESC, rowid DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	articles := []Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}

	return articles, nil
}

// UpdateArticle updates an article with the provided fields. Changing the
// title regenerates the slug.
func (s *ArticleStore) UpdateArticle(articleID uuid.UUID, update ArticleUpdate) (*Article, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	// Build dynamic UPDATE query based on provided fields
	setClauses := []string{"updated_at = ?"}
	now := time.Now()
	args := []any{formatTime(&now)}

	if update.Title != nil {
		setClauses = append(setClauses, "title = ?", "slug = ?")
		args = append(args, *update.Title, Slugify(*update.Title))
	}
	if update.Content != nil {
		setClauses = append(setClauses, "content = ?")
		args = append(args, *update.Content)
	}
	if update.OriginalSourceURL != nil {
		setClauses = append(setClauses, "original_source_url = ?")
		args = append(args, nullIfEmpty(update.OriginalSourceURL))
	}
	if update.References != nil {
		setClauses = append(setClauses, `"references" = ?`)
		args = append(args, *update.References)
	}

	args = append(args, articleID.String())

	query := fmt.Sprintf("UPDATE articles SET %s WHERE article_id = ?",
		strings.Join(setClauses, ", "))

	result, err := s.db.Exec(query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("failed to update article: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrArticleNotFound
	}

	return s.GetArticle(articleID)
}

// DeleteArticle deletes an article.
func (s *ArticleStore) DeleteArticle(articleID uuid.UUID) error {
	result, err := s.db.Exec("DELETE FROM articles WHERE article_id = ?", articleID.String())
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrArticleNotFound
	}

	return nil
}

// ImportBatch creates each input independently. A failing item is recorded
// in the result and does not stop the rest of the batch.
func (s *ArticleStore) ImportBatch(inputs []ArticleInput) *ImportResult {
	result := &ImportResult{
		Imported: []Article{},
		Errors:   []ImportError{},
	}

	for i, input := range inputs {
		article, err := s.CreateArticle(input)
		if err != nil {
			title := input.Title
			if title == "" {
				title = "Unknown"
			}
			result.Errors = append(result.Errors, ImportError{
				Index: i,
				Title: title,
				Error: err.Error(),
			})
			continue
		}
		result.Imported = append(result.Imported, *article)
	}

	result.ImportedCount = len(result.Imported)
	result.ErrorCount = len(result.Errors)

	return result
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var articleIDStr, title, slug, content, createdAtStr, updatedAtStr string
	var sourceURL, references sql.NullString

	err := row.Scan(
		&articleIDStr, &title, &slug, &content,
		&sourceURL, &references, &createdAtStr, &updatedAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan article: %w", err)
	}

	articleID, err := uuid.Parse(articleIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse article ID: %w", err)
	}

	article := &Article{
		ArticleID: articleID,
		Title:     title,
		Slug:      slug,
		Content:   content,
		CreatedAt: parseTime(createdAtStr),
		UpdatedAt: parseTime(updatedAtStr),
	}
	if sourceURL.Valid {
		article.OriginalSourceURL = &sourceURL.String
	}
	if references.Valid {
		article.References = &references.String
	}

	return article, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint") ||
		strings.Contains(err.Error(), "unique constraint")
}

// timeLayout is fixed-width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Helper functions for time formatting
func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
