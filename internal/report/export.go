package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/happy-v587/github-trending/internal/cache"
)

// utf8BOM lets spreadsheet applications detect the CSV encoding.
const utf8BOM = "\ufeff"

var csvHeader = []string{"rank", "name", "url", "description", "language", "stars", "stars_today", "forks", "timestamp"}

// WriteCSV writes repos with a header row, prefixed by a UTF-8 byte order mark.
func WriteCSV(w io.Writer, repos []cache.Repository) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range repos {
		row := []string{
			strconv.Itoa(r.Rank),
			r.Name,
			r.URL,
			r.Description,
			r.Language,
			strconv.Itoa(r.Stars),
			strconv.Itoa(r.StarsToday),
			strconv.Itoa(r.Forks),
			r.Timestamp.Format(time.RFC3339Nano),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes repos as an indented JSON array without escaping
// non-ASCII or HTML characters.
func WriteJSON(w io.Writer, repos []cache.Repository) error {
	if repos == nil {
		repos = []cache.Repository{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(repos)
}

func ExportCSV(repos []cache.Repository, path string) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, repos); err != nil {
		return fmt.Errorf("encoding csv: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func ExportJSON(repos []cache.Repository, path string) error {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, repos); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadJSON parses a file written by ExportJSON.
func ReadJSON(path string) ([]cache.Repository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var repos []cache.Repository
	if err := json.Unmarshal(data, &repos); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return repos, nil
}

type TableStyle int

const (
	TableStyleBox TableStyle = iota
	TableStyleMarkdown
)

// RenderTable writes repos as a table in their given order.
func RenderTable(w io.Writer, repos []cache.Repository, style TableStyle, maxDesc int) {
	if maxDesc <= 0 {
		maxDesc = DefaultMaxDescription
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Repository", "Language", "Stars", "Gained", "Forks", "Description"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	if style == TableStyleMarkdown {
		table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		table.SetCenterSeparator("|")
	}

	for _, r := range repos {
		table.Append([]string{
			strconv.Itoa(r.Rank),
			r.Name,
			r.Language,
			formatCount(r.Stars),
			formatCount(r.StarsToday),
			formatCount(r.Forks),
			truncate(r.Description, maxDesc),
		})
	}
	table.Render()
}
