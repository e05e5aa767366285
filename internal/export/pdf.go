package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matthieukhl/quotedesk/internal/quotation"
	"github.com/matthieukhl/quotedesk/internal/types"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var ErrExportFailed = errors.New("failed to generate PDF, please try again")

// Exporter turns the current quotation into a document request and stores
// the returned artifact
type Exporter struct {
	renderer types.DocumentRenderer
	fs       afero.Fs
	dir      string
	log      *zap.Logger
}

func NewExporter(renderer types.DocumentRenderer, fs afero.Fs, dir string, log *zap.Logger) *Exporter {
	if dir == "" {
		dir = "."
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{renderer: renderer, fs: fs, dir: dir, log: log.Named("export")}
}

// BuildRequest serializes the rows and the optional customer fields. Totals
// are left to the renderer.
func BuildRequest(q *quotation.Quotation) types.PDFRequest {
	c := q.Customer()
	return types.PDFRequest{
		Items:            q.Payloads(),
		CustomerName:     strings.TrimSpace(c.Name),
		CustomerLocation: strings.TrimSpace(c.Address),
	}
}

// FileName is the download name for a quotation number
func FileName(number string) string {
	return fmt.Sprintf("quotation_%s.pdf", number)
}

// Render fetches the document for a prepared request without storing it
func (e *Exporter) Render(ctx context.Context, number string, req types.PDFRequest) ([]byte, error) {
	data, err := e.renderer.GeneratePDF(ctx, req)
	if err != nil {
		e.log.Error("error generating PDF", zap.String("quotation", number), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if len(data) == 0 {
		e.log.Error("backend returned an empty document", zap.String("quotation", number))
		return nil, fmt.Errorf("%w: empty document", ErrExportFailed)
	}
	return data, nil
}

// Export renders the quotation and writes it to the export directory
func (e *Exporter) Export(ctx context.Context, q *quotation.Quotation) (string, error) {
	return e.ExportRequest(ctx, q.Number(), BuildRequest(q))
}

// ExportRequest works from a snapshot so the quotation can keep changing
// while the request is in flight. The file appears under its final name
// only once fully written.
func (e *Exporter) ExportRequest(ctx context.Context, number string, req types.PDFRequest) (string, error) {
	data, err := e.Render(ctx, number, req)
	if err != nil {
		return "", err
	}

	if err := e.fs.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	final := filepath.Join(e.dir, FileName(number))
	tmp, err := afero.TempFile(e.fs, e.dir, ".quotation-*.part")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = e.fs.Remove(tmpName)
		return "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if err := tmp.Close(); err != nil {
		_ = e.fs.Remove(tmpName)
		return "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if err := e.fs.Rename(tmpName, final); err != nil {
		_ = e.fs.Remove(tmpName)
		return "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	e.log.Info("quotation exported", zap.String("file", final), zap.Int("bytes", len(data)))
	return final, nil
}

// ReadFile returns an exported document
func (e *Exporter) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(e.fs, path)
}
