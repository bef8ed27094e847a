package collection_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/longbox-dev/longbox/internal/collection"
	"github.com/longbox-dev/longbox/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestExtractComicInfo(t *testing.T) {
	dir := t.TempDir()
	xmlContent := `<?xml version="1.0"?>
<ComicInfo>
  <Series>Ultimates</Series>
  <Number>1</Number>
  <Volume>2015</Volume>
  <Year>2015</Year>
</ComicInfo>`
	path := testutil.CreateTestCBZWithComicInfo(t, dir, "ultimates.cbz", xmlContent)

	info := collection.ExtractComicInfo(path)
	if info == nil {
		t.Fatal("expected comic info, got nil")
	}
	assert.Equal(t, "Ultimates", info.Series)
	assert.Equal(t, "1", info.Number)
	assert.Equal(t, "2015", info.Volume)
	assert.Equal(t, "2015", info.Year)
}

func TestExtractComicInfo_MissingEntry(t *testing.T) {
	dir := t.TempDir()
	path := testutil.CreateTestCBZ(t, dir, "no-info.cbz", []string{"page01.jpg"})
	assert.Nil(t, collection.ExtractComicInfo(path))
}

func TestExtractComicInfo_PartialFields(t *testing.T) {
	dir := t.TempDir()
	path := testutil.CreateTestCBZWithComicInfo(t, dir, "partial.cbz", `<ComicInfo><Number>5</Number></ComicInfo>`)

	info := collection.ExtractComicInfo(path)
	if info == nil {
		t.Fatal("expected comic info, got nil")
	}
	assert.Equal(t, "5", info.Number)
	assert.Equal(t, "", info.Series)
}

func TestExtractComicInfo_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "comic.cbr")
	if err := os.WriteFile(path, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	assert.Nil(t, collection.ExtractComicInfo(path))
}

func TestExtractComicInfo_CorruptArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.cbz")
	if err := os.WriteFile(path, []byte("definitely not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	assert.Nil(t, collection.ExtractComicInfo(path))
}
