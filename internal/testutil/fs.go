package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// CreateTestCBZ is a helper function that creates a temporary CBZ file with
// a given set of page names. It's useful for testing archive matching.
func CreateTestCBZ(t *testing.T, dir, name string, pages []string) string {
	t.Helper()
	return createZip(t, dir, name, pages, "")
}

// CreateTestCBZWithComicInfo creates a CBZ that also contains a ComicInfo.xml
// entry with the given XML content.
func CreateTestCBZWithComicInfo(t *testing.T, dir, name string, comicInfoXML string) string {
	t.Helper()
	return createZip(t, dir, name, []string{"page01.jpg"}, comicInfoXML)
}

func createZip(t *testing.T, dir, name string, pages []string, comicInfoXML string) string {
	t.Helper()
	filePath := filepath.Join(dir, name)
	file, err := os.Create(filePath)
	if err != nil {
		t.Fatalf("Failed to create temp cbz file: %v", err)
	}
	t.Cleanup(func() { file.Close() }) // Ensure file is closed after test

	zipWriter := zip.NewWriter(file)
	defer zipWriter.Close()

	for _, page := range pages {
		_, err := zipWriter.Create(page)
		if err != nil {
			t.Fatalf("Failed to create entry '%s' in zip: %v", page, err)
		}
	}

	if comicInfoXML != "" {
		entry, err := zipWriter.Create("ComicInfo.xml")
		if err != nil {
			t.Fatalf("Failed to create ComicInfo.xml entry: %v", err)
		}
		if _, err := entry.Write([]byte(comicInfoXML)); err != nil {
			t.Fatalf("Failed to write ComicInfo.xml entry: %v", err)
		}
	}
	return filePath
}
