package service

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/baotran/ragchat-be/types"
	"github.com/bmatcuk/doublestar/v4"
)

var defaultIncludes = []string{"**/*.txt", "**/*.md", "**/*.pdf"}

// LoaderService walks a corpus directory and reads every matching file into
// an untagged document. Plain text and markdown are read directly; PDF text
// comes from the pdftotext utility.
type LoaderService struct {
	includes []string
	excludes []string
}

func NewLoaderService(includes, excludes []string) *LoaderService {
	if len(includes) == 0 {
		includes = defaultIncludes
	}
	return &LoaderService{
		includes: includes,
		excludes: excludes,
	}
}

func (s *LoaderService) Load(root string) ([]types.Document, error) {
	var docs []types.Document
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !s.matches(rel) {
			return nil
		}

		content, err := s.readFile(path)
		if err != nil {
			// One unreadable file should not abort the whole corpus.
			log.Printf("loader: skipping %s: %v", rel, err)
			return nil
		}
		docs = append(docs, types.Document{
			ID:      docID(rel),
			Source:  rel,
			Content: content,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %s: %w", root, err)
	}
	return docs, nil
}

func (s *LoaderService) matches(rel string) bool {
	for _, pattern := range s.excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	for _, pattern := range s.includes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (s *LoaderService) readFile(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDFText(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// extractPDFText extracts the full text of a PDF using the pdftotext utility.
func extractPDFText(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-enc", "UTF-8", "-nopgbrk", path, "-")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("pdftotext extracted no text from %s", path)
	}
	return text, nil
}

// docID derives a stable document id from the relative source path, so
// re-ingesting an unchanged corpus reproduces the same chunk ids.
func docID(rel string) string {
	sum := sha1.Sum([]byte(rel))
	return hex.EncodeToString(sum[:6])
}
