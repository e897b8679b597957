package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePage(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestContentServiceLoadsPages(t *testing.T) {
	root := t.TempDir()
	pages := filepath.Join(root, "pages")

	writePage(t, pages, "about.md", `---
title: About This Site
updated: "2018-05-30"
---
A diary for small failures.
`)
	writePage(t, pages, "privacy-policy.md", "We keep nothing.\n")

	svc := NewContentService(root)
	require.NoError(t, svc.LoadPages())

	about, err := svc.Page("about")
	require.NoError(t, err)
	assert.Equal(t, "About This Site", about.Title)
	assert.Equal(t, "2018-05-30", about.LastUpdated)
	assert.Contains(t, about.HTMLContent, "small failures")

	// no frontmatter: title derived from the slug
	privacy, err := svc.Page("privacy-policy")
	require.NoError(t, err)
	assert.Equal(t, "Privacy Policy", privacy.Title)

	_, err = svc.Page("missing")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestContentServiceMissingDir(t *testing.T) {
	svc := NewContentService(filepath.Join(t.TempDir(), "nope"))
	assert.NoError(t, svc.LoadPages())
}
