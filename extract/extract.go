// Package extract pulls a readable title and body text out of article pages
// whose markup varies from post to post. Each decision is an ordered list of
// strategies; the first one that produces something wins.
package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Fallback values used when no strategy produces a result.
const (
	UntitledArticle     = "Untitled Article"
	ContentNotAvailable = "Content not available"
)

// fragmentSelector matches the elements whose text makes up the body.
const fragmentSelector = "p, h2, h3, h4, li"

// contentClassHints are matched case-insensitively against a div's class
// attribute.
var contentClassHints = []string{"content", "entry", "post-content", "article-body"}

// TitleStrategy returns a candidate title, or "" if it found none.
type TitleStrategy func(doc *goquery.Document) string

// ContainerStrategy returns the element that scopes body text, or nil if it
// found none.
type ContainerStrategy func(doc *goquery.Document) *goquery.Selection

// TitleStrategies are tried in order by Title.
var TitleStrategies = []TitleStrategy{
	FirstHeading,
	DocumentTitle,
}

// ContainerStrategies are tried in order by Container.
var ContainerStrategies = []ContainerStrategy{
	ArticleElement,
	ContentClassElement,
	MainElement,
}

// Title returns the first non-empty title produced by TitleStrategies, or
// UntitledArticle.
func Title(doc *goquery.Document) string {
	for _, strategy := range TitleStrategies {
		if title := strategy(doc); title != "" {
			return title
		}
	}
	return UntitledArticle
}

// FirstHeading returns the trimmed text of the first h1.
func FirstHeading(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// DocumentTitle returns the trimmed text of the first title element.
func DocumentTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// Container returns the first match from ContainerStrategies, or nil.
func Container(doc *goquery.Document) *goquery.Selection {
	for _, strategy := range ContainerStrategies {
		if sel := strategy(doc); sel != nil {
			return sel
		}
	}
	return nil
}

// ArticleElement returns the first article element.
func ArticleElement(doc *goquery.Document) *goquery.Selection {
	return first(doc.Find("article"))
}

// ContentClassElement returns the first div whose class attribute hints at
// body content.
func ContentClassElement(doc *goquery.Document) *goquery.Selection {
	return first(doc.Find("div[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return hasContentHint(class)
	}))
}

// MainElement returns the first main element.
func MainElement(doc *goquery.Document) *goquery.Selection {
	return first(doc.Find("main"))
}

// Content returns the body text of doc: the qualifying fragments inside the
// chosen container joined by blank lines, or ContentNotAvailable.
func Content(doc *goquery.Document, minTextLength int) string {
	container := Container(doc)
	if container == nil {
		return ContentNotAvailable
	}

	fragments := Fragments(container, minTextLength)
	if len(fragments) == 0 {
		return ContentNotAvailable
	}

	return strings.Join(fragments, "\n\n")
}

// Fragments returns the trimmed text of every paragraph, h2-h4 heading, and
// list item under container, in document order, keeping only those longer
// than minTextLength characters. Nested matches are each included.
func Fragments(container *goquery.Selection, minTextLength int) []string {
	var fragments []string
	container.Find(fragmentSelector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(text) > minTextLength {
			fragments = append(fragments, text)
		}
	})
	return fragments
}

func hasContentHint(class string) bool {
	class = strings.ToLower(class)
	for _, hint := range contentClassHints {
		if strings.Contains(class, hint) {
			return true
		}
	}
	return false
}

func first(sel *goquery.Selection) *goquery.Selection {
	if sel.Length() == 0 {
		return nil
	}
	return sel.First()
}
