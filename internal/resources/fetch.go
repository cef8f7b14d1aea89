// Package resources provisions the NLP data directory: it reads a manifest of
// named resource packages and downloads each one in order, stopping at the
// first failure.
package resources

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Resource is one manifest entry.
type Resource struct {
	Name string // destination file name inside the data dir
	URL  string
}

// Well-known resource names the NLP layer looks for.
const (
	StopwordsFile     = "stopwords.txt"
	LexiconFile       = "sentiment-lexicon.tsv"
	AbbreviationsFile = "abbreviations.txt"
)

// ParseManifest reads `name url` pairs, one per line. Blank lines and lines
// starting with # are ignored.
func ParseManifest(r io.Reader) ([]Resource, error) {
	var out []Resource
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("manifest line %d: expected 'name url', got %q", line, text)
		}
		out = append(out, Resource{Name: fields[0], URL: fields[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Fetcher downloads manifest resources into Dir.
type Fetcher struct {
	Dir    string
	Client *http.Client // nil = http.DefaultClient
}

// FetchAll creates the data directory, reads the manifest at manifestPath and
// downloads every resource in order. It returns on the first failure;
// resources already fetched stay on disk, the failed one is removed.
func (f *Fetcher) FetchAll(manifestPath string) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", f.Dir, err)
	}

	mf, err := os.Open(manifestPath)
	if err != nil {
		return fmt.Errorf("open manifest %s: %w", manifestPath, err)
	}
	defer mf.Close()

	list, err := ParseManifest(mf)
	if err != nil {
		return fmt.Errorf("parse manifest %s: %w", manifestPath, err)
	}

	for _, res := range list {
		dest := filepath.Join(f.Dir, res.Name)
		if err := f.download(res.URL, dest); err != nil {
			// leave no partial file behind
			_ = os.Remove(dest)
			return fmt.Errorf("fetch %s: %w", res.Name, err)
		}
	}
	return nil
}

func (f *Fetcher) download(url, destPath string) error {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	if n == 0 {
		return fmt.Errorf("download %s: got 0 bytes", url)
	}
	return nil
}

// WriteDefaultManifest writes the stock manifest if none exists yet.
func WriteDefaultManifest(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir manifest dir: %w", err)
	}
	content := strings.Join([]string{
		"# tripweaver resource manifest: name url",
		StopwordsFile + " https://raw.githubusercontent.com/stopwords-iso/stopwords-en/master/stopwords-en.txt",
		LexiconFile + " https://raw.githubusercontent.com/cjhutto/vaderSentiment/master/vaderSentiment/vader_lexicon.txt",
		AbbreviationsFile + " https://raw.githubusercontent.com/mediacloud/sentence-splitter/develop/sentence_splitter/non_breaking_prefixes/en.txt",
		"",
	}, "\n")
	return os.WriteFile(path, []byte(content), 0o644)
}
