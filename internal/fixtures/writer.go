package fixtures

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/debtscore/internal/adapters/sheet"
	"github.com/okian/debtscore/internal/domain/table"
	"github.com/okian/debtscore/pkg/logger"
)

// Write stores every table of p under dir with the given extension.
func Write(ctx context.Context, p *Portfolio, dir, format string) (*Files, error) {
	if format == "" {
		format = sheet.ExtXLSX
	}
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	write := func(t *table.Table) (string, error) {
		path := filepath.Join(dir, t.Name+format)
		if err := sheet.Write(ctx, path, t); err != nil {
			return "", err
		}
		logger.Get().Debug(ctx, "wrote fixture", logger.String("path", path), logger.Int("rows", t.Len()))
		return path, nil
	}

	files := &Files{}
	for _, c := range p.Cases {
		path, err := write(c)
		if err != nil {
			return nil, err
		}
		files.Cases = append(files.Cases, path)
	}
	var err error
	if files.Payments, err = write(p.Payments); err != nil {
		return nil, err
	}
	if files.Promises, err = write(p.Promises); err != nil {
		return nil, err
	}
	if files.Contacts, err = write(p.Contacts); err != nil {
		return nil, err
	}
	return files, nil
}

// Run generates a portfolio and writes it to cfg.Dir.
func Run(ctx context.Context, cfg *Config) (*Files, error) {
	p, stats, err := Generate(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("portfolio generation failed: %w", err)
	}
	files, err := Write(ctx, p, cfg.Dir, cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("portfolio write failed: %w", err)
	}

	logger.Get().Info(ctx, "portfolio written",
		logger.String("dir", cfg.Dir),
		logger.Strings("cases", files.Cases),
		logger.String("payments", files.Payments),
		logger.String("promises", files.Promises),
		logger.String("contacts", files.Contacts),
		logger.Duration("duration", stats.Duration))
	return files, nil
}
