// This file reads the ComicInfo.xml metadata entry embedded in comic
// archives. Only zip-based archives (.cbz/.zip) are readable.

package collection

import (
	"archive/zip"
	"encoding/xml"
	"strings"
)

// ComicInfo holds the descriptive metadata embedded in an archive. Elements
// absent from the XML decode to empty strings.
type ComicInfo struct {
	Series string `xml:"Series"`
	Number string `xml:"Number"`
	Volume string `xml:"Volume"`
	Year   string `xml:"Year"`
}

// ExtractComicInfo opens a .cbz/.zip archive and decodes its ComicInfo.xml
// entry. It returns nil for other extensions, for archives without the entry,
// and for unreadable or corrupt archives; the absence of embedded metadata is
// never an error.
func ExtractComicInfo(filePath string) *ComicInfo {
	lower := strings.ToLower(filePath)
	if !strings.HasSuffix(lower, ".cbz") && !strings.HasSuffix(lower, ".zip") {
		return nil
	}

	r, err := zip.OpenReader(filePath)
	if err != nil {
		return nil
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != "ComicInfo.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()

		var info ComicInfo
		if err := xml.NewDecoder(rc).Decode(&info); err != nil {
			return nil
		}
		return &info
	}
	return nil
}
