// This file contains the collection matcher: given the canonical issue list
// for a series and the series' mapped directory, it decides which issues are
// present on disk. Results are cached in the database keyed by file mtime, so
// repeat calls skip the directory scan until something changes.

package collection

import (
	"log"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/longbox-dev/longbox/internal/models"
	"github.com/longbox-dev/longbox/internal/util"
)

// PatternPreferenceKey is the preference holding the user's naming template.
const PatternPreferenceKey = "custom_rename_pattern"

// mtimeTolerance is how far (in seconds) a file's modification time may drift
// from the cached value before the cache is considered stale.
const mtimeTolerance = 1.0

// IsSupportedArchive reports whether a filename has a recognized comic
// archive extension.
func IsSupportedArchive(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".cbz", ".cbr", ".zip", ".rar":
		return true
	}
	return false
}

// Store is the persistence boundary the matcher depends on: the cached
// collection status for a series, bulk persistence of fresh results, and the
// user's naming-template preference.
type Store interface {
	CollectionStatus(seriesID int64) ([]*models.CollectionEntry, error)
	SaveCollectionStatusBulk(entries []*models.CollectionEntry) error
	Preference(key, defaultValue string) (string, error)
}

// Matcher answers "which issues of this series exist on disk".
type Matcher struct {
	st Store
}

// NewMatcher creates a new Matcher backed by the given store.
func NewMatcher(st Store) *Matcher {
	return &Matcher{st: st}
}

// localFile is the scan-local record of one archive in the series directory.
// Embedded metadata is loaded lazily, at most once per file per scan.
type localFile struct {
	filename string
	path     string
	mtime    *float64 // unix seconds; nil if stat failed
	info     *ComicInfo
	infoRead bool
}

func (f *localFile) comicInfo() *ComicInfo {
	if !f.infoRead {
		f.info = ExtractComicInfo(f.path)
		f.infoRead = true
	}
	return f.info
}

// Match maps every issue number to a found/file-path result for the series'
// mapped directory.
//
// Strategy:
//  1. Trust the cache if every cached file still exists with an unchanged
//     mtime; any invalid entry discards the whole cached set.
//  2. Otherwise scan the directory (non-recursive) and try three tiers per
//     issue: naming-template pattern, embedded ComicInfo, generic filename
//     heuristics.
//  3. Persist the fresh results in one bulk write.
//
// Matching never fails hard: unmatched issues come back as not found, and a
// directory-listing error returns whatever partial results exist.
func (m *Matcher) Match(mappedPath string, issues []*models.Issue, series *models.Series, useCache bool) map[string]models.MatchResult {
	results := make(map[string]models.MatchResult)

	var seriesID int64
	var seriesName string
	if series != nil {
		seriesID = series.ID
		seriesName = series.Name
	}

	// Step 1: cache check.
	if useCache && seriesID != 0 {
		if cached := m.validCachedStatus(seriesID); cached != nil {
			for _, entry := range cached {
				results[entry.IssueNumber] = models.MatchResult{
					Found:    entry.Found,
					FilePath: entry.FilePath,
				}
			}
			log.Printf("Using cached collection status for series %d (%d issues)", seriesID, len(results))
			return results
		}
	}

	// Step 2: scan the mapped directory.
	files, err := scanDirectory(mappedPath)
	if err != nil {
		log.Printf("Error scanning directory %s: %v", mappedPath, err)
		return results
	}

	// Step 3: fetch the naming template.
	customPattern := ""
	if m.st != nil {
		customPattern, err = m.st.Preference(PatternPreferenceKey, "")
		if err != nil {
			log.Printf("Error reading naming template preference: %v", err)
		}
	}

	// Step 4: match each issue through the tiers.
	var cacheEntries []*models.CollectionEntry
	for _, issue := range issues {
		if issue.Number == "" {
			continue
		}

		matched, via := matchIssue(files, customPattern, seriesName, issue.Number)

		result := models.MatchResult{}
		var entry models.CollectionEntry
		if matched != nil {
			path := matched.path
			result.Found = true
			result.FilePath = &path
			entry.FileMtime = matched.mtime
		}
		results[issue.Number] = result

		// Entries without both ids cannot be cache-keyed.
		if seriesID != 0 && issue.ID != 0 {
			entry.SeriesID = seriesID
			entry.IssueID = issue.ID
			entry.IssueNumber = issue.Number
			entry.Found = result.Found
			entry.FilePath = result.FilePath
			entry.MatchedVia = via
			cacheEntries = append(cacheEntries, &entry)
		}
	}

	// Step 5: persist the batch.
	if len(cacheEntries) > 0 && m.st != nil {
		if err := m.st.SaveCollectionStatusBulk(cacheEntries); err != nil {
			log.Printf("Error caching collection status for series %d: %v", seriesID, err)
		} else {
			log.Printf("Cached collection status for series %d (%d issues)", seriesID, len(cacheEntries))
		}
	}

	return results
}

// validCachedStatus returns the cached entries for a series if every entry's
// file still exists with an mtime within tolerance. Any invalid entry
// invalidates the whole set: a partially-stale cache is worse than a rescan.
func (m *Matcher) validCachedStatus(seriesID int64) []*models.CollectionEntry {
	if m.st == nil {
		return nil
	}
	cached, err := m.st.CollectionStatus(seriesID)
	if err != nil {
		log.Printf("Error reading cached collection status for series %d: %v", seriesID, err)
		return nil
	}
	if len(cached) == 0 {
		return nil
	}

	for _, entry := range cached {
		if entry.FilePath == nil {
			continue
		}
		info, err := os.Stat(*entry.FilePath)
		if err != nil {
			log.Printf("Cache invalid: file no longer exists %s", *entry.FilePath)
			return nil
		}
		if entry.FileMtime != nil {
			current := unixSeconds(info.ModTime())
			if math.Abs(current-*entry.FileMtime) > mtimeTolerance {
				log.Printf("Cache invalid: mtime changed for %s", *entry.FilePath)
				return nil
			}
		}
	}
	return cached
}

// scanDirectory lists the archive files directly inside dir, in raw directory
// order. A stat failure on an individual file leaves its mtime unknown rather
// than failing the scan.
func scanDirectory(dir string) ([]*localFile, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}

	var files []*localFile
	for _, entry := range entries {
		if entry.IsDir() || !IsSupportedArchive(entry.Name()) {
			continue
		}
		lf := &localFile{
			filename: entry.Name(),
			path:     filepath.Join(dir, entry.Name()),
		}
		if info, err := entry.Info(); err == nil {
			mtime := unixSeconds(info.ModTime())
			lf.mtime = &mtime
		}
		files = append(files, lf)
	}
	return files, nil
}

// matchIssue tries the three tiers in order and returns the first file that
// matched along with which tier matched it.
func matchIssue(files []*localFile, customPattern, seriesName, issueNumber string) (*localFile, string) {
	// Tier 1: naming-template pattern, the most reliable for the user's own
	// files.
	if customPattern != "" && seriesName != "" {
		if re := CompilePattern(customPattern, seriesName, issueNumber); re != nil {
			for _, f := range files {
				if re.MatchString(f.filename) {
					return f, models.MatchedViaPattern
				}
			}
		}
	}

	// Tier 2: embedded ComicInfo metadata.
	checkNum := util.NormalizeIssueNumber(issueNumber)
	for _, f := range files {
		ci := f.comicInfo()
		if ci == nil || ci.Number == "" {
			continue
		}
		if util.NormalizeIssueNumber(ci.Number) != checkNum {
			continue
		}
		// Loose series check: embedded and canonical names only need to
		// contain each other, not match exactly.
		metaSeries := strings.ToLower(ci.Series)
		canonical := strings.ToLower(seriesName)
		if metaSeries == "" || strings.Contains(metaSeries, canonical) || strings.Contains(canonical, metaSeries) {
			return f, models.MatchedViaComicInfo
		}
	}

	// Tier 3: generic filename heuristics. The exact character classes are
	// load-bearing: cached matched_via values were produced by them.
	patterns := []string{
		`[\s\-_]0*` + regexp.QuoteMeta(checkNum) + `(?:[\s\-_\.\(]|$)`, // space/dash/underscore + number + delimiter
		`#0*` + regexp.QuoteMeta(checkNum) + `(?:\D|$)`,                // #1, #01, #001
	}
	for _, f := range files {
		for _, p := range patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				continue
			}
			if re.MatchString(f.filename) {
				return f, models.MatchedViaFilename
			}
		}
	}

	return nil, ""
}

// unixSeconds converts a modification time to the fractional unix-seconds
// representation stored in the cache.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
