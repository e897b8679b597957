package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikkilog/nikki/internal/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrPageNotFound = errors.New("page not found")

// ContentPage is a static markdown page: about, rules, privacy.
type ContentPage struct {
	Title       string
	Slug        string
	HTMLContent string
	LastUpdated string
}

type ContentService struct {
	contentDir string
	parser     *markdown.Parser
	pages      map[string]*ContentPage
}

func NewContentService(contentDir string) *ContentService {
	return &ContentService{
		contentDir: filepath.Join(contentDir, "pages"),
		parser:     markdown.NewParser(),
		pages:      make(map[string]*ContentPage),
	}
}

// LoadPages reads every markdown file under content/pages once at startup.
func (s *ContentService) LoadPages() error {
	files, err := os.ReadDir(s.contentDir)
	if err != nil {
		if os.IsNotExist(err) {
			err = os.MkdirAll(s.contentDir, 0755)
			if err != nil {
				return fmt.Errorf("failed to create content directory: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to read content directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
			continue
		}

		slug := strings.TrimSuffix(file.Name(), ".md")
		page, err := s.loadPage(slug)
		if err != nil {
			return fmt.Errorf("failed to load page %s: %w", slug, err)
		}

		s.pages[slug] = page
	}

	return nil
}

func (s *ContentService) Page(slug string) (*ContentPage, error) {
	page, ok := s.pages[slug]
	if !ok {
		return nil, ErrPageNotFound
	}
	return page, nil
}

func (s *ContentService) loadPage(slug string) (*ContentPage, error) {
	source, err := os.ReadFile(filepath.Join(s.contentDir, slug+".md"))
	if err != nil {
		return nil, err
	}

	html, meta, err := s.parser.ParseWithFrontmatter(source)
	if err != nil {
		return nil, err
	}

	page := &ContentPage{
		Slug:        slug,
		HTMLContent: string(html),
	}

	title, ok := meta["title"].(string)
	if ok {
		page.Title = title
	} else {
		// derive a title from the slug: "privacy-policy" -> "Privacy Policy"
		page.Title = cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
	}

	updated, ok := meta["updated"].(string)
	if ok {
		page.LastUpdated = updated
	}

	return page, nil
}
