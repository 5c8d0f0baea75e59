package exporter

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"sjsage522/pflanzencrawler/internal/crawler"
	"sjsage522/pflanzencrawler/logger"
	"sjsage522/pflanzencrawler/pkg/errors"
)

// Header is the first row of every export
var Header = []string{"id", "type", "name", "about", "price_from"}

// WriteCSV writes the records with 1-based ids in their current order.
// Rows end in CRLF and the output is UTF-8 without a byte order mark.
func WriteCSV(w io.Writer, records []crawler.ProductRecord) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(Header); err != nil {
		return errors.NewExport("", "failed to write header", err)
	}
	for _, r := range crawler.Number(records) {
		row := []string{strconv.Itoa(r.ID), r.Type, r.Name, r.About, r.PriceFrom}
		if err := cw.Write(row); err != nil {
			return errors.NewExport("", "failed to write row "+strconv.Itoa(r.ID), err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.NewExport("", "failed to flush CSV", err)
	}
	return nil
}

// WriteCSVFile writes the export to path. The file is written next to its
// destination and renamed into place, so a failed run never leaves a partial file.
func WriteCSVFile(path string, records []crawler.ProductRecord) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pflanzen-*.csv")
	if err != nil {
		return errors.NewExport(path, "failed to create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteCSV(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.NewExport(path, "failed to close temp file", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.NewExport(path, "failed to set file mode", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.NewExport(path, "failed to move export into place", err)
	}
	return nil
}

// FileExporter writes each export to a fixed path
type FileExporter struct {
	Path string
	log  *logger.Logger
}

// NewFileExporter creates an exporter writing to path
func NewFileExporter(path string) *FileExporter {
	return &FileExporter{
		Path: path,
		log:  logger.ForExporter(),
	}
}

// Export writes the records to the exporter's path
func (e *FileExporter) Export(records []crawler.ProductRecord) error {
	if err := WriteCSVFile(e.Path, records); err != nil {
		return err
	}
	e.log.Info().Str("path", e.Path).Int("records", len(records)).Msg("Export written")
	return nil
}
