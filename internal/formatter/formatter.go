// package formatter provides functions to export projects and edit sessions to various formats (CSV, Markdown, plain text, SRT)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/shared"
)

// ExportProjectsToCSV converts subtitle entries to CSV format with columns: ID, Title, Summary, Date
func ExportProjectsToCSV(entries []models.SubtitleEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Summary", "Date"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range entries {
		record := []string{
			entry.ID,
			entry.Title,
			entry.Summary,
			entry.DisplayDate(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportProjectsToMarkdown renders the my-page view: profile block followed by the subtitle list.
func ExportProjectsToMarkdown(profile *models.UserProfile, entries []models.SubtitleEntry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# 마이페이지\n\n")

	if profile != nil {
		fmt.Fprintf(&buf, "**이름**: %s\n", profile.Name)
		fmt.Fprintf(&buf, "**이메일**: %s\n\n", profile.Email)
	}

	fmt.Fprintf(&buf, "## 자막 목록 (%d)\n\n", len(entries))
	if len(entries) == 0 {
		buf.WriteString("_등록된 프로젝트가 없습니다._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| ID | 제목 | 요약 | 날짜 |\n")
	buf.WriteString("|---|---|---|---|\n")
	for _, e := range entries {
		fmt.Fprintf(&buf, "| %s | %s | %s | %s |\n", e.ID, e.Title, escapeCell(e.Summary), e.DisplayDate())
	}

	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// ExportProjectsToText converts subtitle entries to plain text format
func ExportProjectsToText(entries []models.SubtitleEntry) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Projects: %d\n\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&buf, "[%s] %s - %s (%s)\n", e.ID, e.Title, e.Summary, e.DisplayDate())
	}

	return buf.Bytes(), nil
}

// ExportDraftToMarkdown renders an edit session: video link, recommendation, checked text and subtitles.
//
// thumbnail is an optional image filename relative to the Markdown file.
func ExportDraftToMarkdown(draft models.Draft, title, link, thumbnail string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "프로젝트 " + draft.ProjectID
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)

	if thumbnail != "" {
		fmt.Fprintf(&buf, "![Thumbnail](%s)\n\n", thumbnail)
	}
	if link != "" {
		fmt.Fprintf(&buf, "**Video**: %s\n", link)
	}
	fmt.Fprintf(&buf, "**Cues**: %d\n", len(ParseSRT(draft.Subtitles)))
	if !draft.UpdatedAt.IsZero() {
		fmt.Fprintf(&buf, "**Saved**: %s\n", draft.UpdatedAt.Format(time.DateTime))
	}
	buf.WriteString("\n")

	if draft.Recommended.Title != "" || len(draft.Recommended.Tags) > 0 {
		buf.WriteString("## 추천\n\n")
		if draft.Recommended.Title != "" {
			fmt.Fprintf(&buf, "**제목**: %s\n\n", draft.Recommended.Title)
		}
		if len(draft.Recommended.Tags) > 0 {
			fmt.Fprintf(&buf, "**해시태그**: %s\n\n", strings.Join(draft.Recommended.Tags, " "))
		}
	}

	if draft.Checked != "" {
		buf.WriteString("## 검사 결과\n\n")
		buf.WriteString(strings.TrimSpace(draft.Checked))
		buf.WriteString("\n\n")
	}

	if draft.Subtitles != "" {
		buf.WriteString("## 자막\n\n```srt\n")
		buf.WriteString(strings.TrimRight(draft.Subtitles, "\n"))
		buf.WriteString("\n```\n")
	}

	if draft.Translation != "" {
		label := draft.Language
		if l, ok := models.LookupLanguage(draft.Language); ok {
			label = l.Label
		}
		fmt.Fprintf(&buf, "\n## 번역 (%s)\n\n```srt\n", label)
		buf.WriteString(strings.TrimRight(draft.Translation, "\n"))
		buf.WriteString("\n```\n")
	}

	return buf.Bytes(), nil
}

// Cue is one SRT block.
type Cue struct {
	Index int
	Start string
	End   string
	Text  string
}

// ParseSRT splits SRT text into cues. Blocks without a timing line are skipped.
func ParseSRT(text string) []Cue {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var cues []Cue
	for _, block := range strings.Split(text, "\n\n") {
		lines := strings.Split(strings.Trim(block, "\n"), "\n")
		if len(lines) < 2 {
			continue
		}

		timing := 0
		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err == nil {
			timing = 1
		}
		if timing >= len(lines) {
			continue
		}
		start, end, ok := strings.Cut(lines[timing], "-->")
		if !ok {
			continue
		}

		cues = append(cues, Cue{
			Index: index,
			Start: strings.TrimSpace(start),
			End:   strings.TrimSpace(end),
			Text:  strings.Join(lines[timing+1:], "\n"),
		})
	}
	return cues
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ThumbnailURL returns the YouTube thumbnail for a video link, or "" for other links.
func ThumbnailURL(link string) string {
	id := models.VideoID(link)
	if id == "" {
		return ""
	}
	return "https://img.youtube.com/vi/" + id + "/hqdefault.jpg"
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ProjectsFile string
	ProfileFile  string
}

// WriteCSVExport writes {base}_projects.csv and, when profile is set, {base}_profile.json.
//
// The password is never written.
func WriteCSVExport(profile *models.UserProfile, entries []models.SubtitleEntry, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "subx"
	}

	csvData, err := ExportProjectsToCSV(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	result := &CSVExportResult{ProjectsFile: baseFilepath + "_projects.csv"}
	if err := os.WriteFile(result.ProjectsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	if profile != nil {
		redacted := *profile
		redacted.Password = ""
		profileJSON, err := shared.MarshalJSON(redacted, true)
		if err != nil {
			return nil, fmt.Errorf("failed to generate profile JSON: %w", err)
		}

		result.ProfileFile = baseFilepath + "_profile.json"
		if err := os.WriteFile(result.ProfileFile, profileJSON, 0644); err != nil {
			return nil, fmt.Errorf("failed to write profile file: %w", err)
		}
	}

	return result, nil
}

// DraftExportResult contains information about files created by WriteDraftExport
type DraftExportResult struct {
	Directory string
	Files     []string
	Thumbnail string
}

// WriteDraftExport exports an edit session to a dedicated directory.
//
// Directory name defaults to project-{id}. Creates README.md, subtitles.srt and, when translated,
// subtitles.{language}.srt. For YouTube links the thumbnail is downloaded when fetchThumbnail is set;
// a failed download only produces a warning on w.
func WriteDraftExport(draft models.Draft, title, link, outputDir string, fetchThumbnail bool, w io.Writer) (*DraftExportResult, error) {
	if outputDir == "" {
		outputDir = "project-" + draft.ProjectID
	}
	if w == nil {
		w = os.Stderr
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &DraftExportResult{Directory: outputDir, Files: []string{}}

	var thumbnail string
	if url := ThumbnailURL(link); fetchThumbnail && url != "" {
		imageData, err := DownloadImage(url)
		if err != nil {
			fmt.Fprintf(w, "Warning: failed to download thumbnail: %v\n", err)
		} else {
			thumbnail = "thumbnail.jpg"
			path := filepath.Join(outputDir, thumbnail)
			if err := os.WriteFile(path, imageData, 0644); err != nil {
				fmt.Fprintf(w, "Warning: failed to save thumbnail: %v\n", err)
				thumbnail = ""
			} else {
				result.Thumbnail = path
				result.Files = append(result.Files, path)
			}
		}
	}

	write := func(name string, data []byte) error {
		path := filepath.Join(outputDir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		result.Files = append(result.Files, path)
		return nil
	}

	if draft.Subtitles != "" {
		if err := write("subtitles.srt", []byte(draft.Subtitles)); err != nil {
			return nil, err
		}
	}
	if draft.Translation != "" && draft.Language != "" {
		if err := write(fmt.Sprintf("subtitles.%s.srt", draft.Language), []byte(draft.Translation)); err != nil {
			return nil, err
		}
	}

	mdData, err := ExportDraftToMarkdown(draft, title, link, thumbnail)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}
	if err := write("README.md", mdData); err != nil {
		return nil, err
	}

	return result, nil
}

// WriteTextExport exports the project list to plain text format.
//
// Defaults to subx_projects.txt as the filename.
func WriteTextExport(entries []models.SubtitleEntry, path string) (string, error) {
	if path == "" {
		path = "subx_projects.txt"
	}

	textData, err := ExportProjectsToText(entries)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
