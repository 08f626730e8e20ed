package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/akashic/core"
)

// epubExtractor walks an EPUB chapter by chapter in spine order. Chapter
// titles and byte offsets into the normalized text are recorded in the
// result metadata so downstream chunking can respect chapter structure.
type epubExtractor struct{}

var _ Extractor = (*epubExtractor)(nil)

var (
	htmlTagRE   = regexp.MustCompile(`<[^>]*>`)
	htmlTitleRE = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
)

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Manifest []struct {
		ID   string `xml:"id,attr"`
		Href string `xml:"href,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

func (e *epubExtractor) Extract(ctx context.Context, data []byte) (*Result, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %w", ErrCorrupt, err)
	}

	opfPath, err := rootfilePath(archive)
	if err != nil {
		return nil, err
	}

	chapters, err := spineChapters(archive, opfPath)
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("%w: epub has an empty spine", ErrCorrupt)
	}

	var sb strings.Builder
	var titles []string
	var offsets []string

	for _, href := range chapters {
		raw, err := readZipFile(archive, href)
		if err != nil {
			continue // skip missing chapter files
		}

		title := chapterTitle(raw)
		if title == "" {
			title = path.Base(href)
		}

		text := stripHTML(raw)
		if text == "" {
			continue
		}

		titles = append(titles, title)
		offsets = append(offsets, strconv.Itoa(sb.Len()))
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, fmt.Errorf("%w: no chapter text", ErrEmptyDocument)
	}

	return &Result{
		Text: text,
		Metadata: map[string]string{
			MetaFormat:         core.FormatEPUB.String(),
			MetaExtraction:     extractionDirect,
			MetaChapters:       strconv.Itoa(len(titles)),
			MetaChapterTitles:  strings.Join(titles, "\n"),
			MetaChapterOffsets: strings.Join(offsets, ","),
		},
	}, nil
}

// rootfilePath reads META-INF/container.xml and returns the OPF path.
func rootfilePath(archive *zip.Reader) (string, error) {
	raw, err := readZipFile(archive, "META-INF/container.xml")
	if err != nil {
		return "", fmt.Errorf("%w: missing container.xml: %w", ErrCorrupt, err)
	}

	var container epubContainer
	if err := xml.Unmarshal(raw, &container); err != nil {
		return "", fmt.Errorf("%w: malformed container.xml: %w", ErrCorrupt, err)
	}
	if len(container.Rootfiles) == 0 || container.Rootfiles[0].FullPath == "" {
		return "", fmt.Errorf("%w: container.xml names no rootfile", ErrCorrupt)
	}
	return container.Rootfiles[0].FullPath, nil
}

// spineChapters resolves the OPF spine to an ordered list of chapter
// hrefs relative to the archive root.
func spineChapters(archive *zip.Reader, opfPath string) ([]string, error) {
	raw, err := readZipFile(archive, opfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: missing opf %s: %w", ErrCorrupt, opfPath, err)
	}

	var pkg epubPackage
	if err := xml.Unmarshal(raw, &pkg); err != nil {
		return nil, fmt.Errorf("%w: malformed opf: %w", ErrCorrupt, err)
	}

	hrefByID := make(map[string]string, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		hrefByID[item.ID] = item.Href
	}

	base := path.Dir(opfPath)
	var chapters []string
	for _, ref := range pkg.Spine {
		href, ok := hrefByID[ref.IDRef]
		if !ok {
			continue
		}
		if base != "." {
			href = path.Join(base, href)
		}
		chapters = append(chapters, href)
	}
	return chapters, nil
}

func readZipFile(archive *zip.Reader, name string) ([]byte, error) {
	f, err := archive.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func chapterTitle(rawHTML []byte) string {
	m := htmlTitleRE.FindSubmatch(rawHTML)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(string(m[1])))
}

// stripHTML removes markup and collapses the remaining text.
func stripHTML(rawHTML []byte) string {
	text := htmlTagRE.ReplaceAllString(string(rawHTML), " ")
	text = html.UnescapeString(text)

	// Collapse runs of whitespace left behind by removed tags.
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}
