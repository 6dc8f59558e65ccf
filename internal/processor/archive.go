package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const maxArchiveSuffix = 10000

// moveToArchived moves a processed source out of the inbox. Existing archived
// files are never replaced: a clashing name gets a timestamp suffix, then a counter.
func (p *implProcessor) moveToArchived(ctx context.Context, path string) error {
	if err := os.MkdirAll(p.cfg.Paths.Archived, 0755); err != nil {
		return fmt.Errorf("create archived dir: %w", err)
	}

	dest, err := freeArchivePath(p.cfg.Paths.Archived, filepath.Base(path), time.Now())
	if err != nil {
		return err
	}

	p.logger.Info(ctx, "Archiving: %s -> %s", path, dest)

	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("move to archived: %w", err)
	}
	return nil
}

func freeArchivePath(dir, name string, now time.Time) (string, error) {
	dest := filepath.Join(dir, name)
	if !pathExists(dest) {
		return dest, nil
	}

	ext := filepath.Ext(name)
	stem := fmt.Sprintf("%s_%s", strings.TrimSuffix(name, ext), now.Format("20060102-150405"))
	dest = filepath.Join(dir, stem+ext)
	for i := 2; pathExists(dest); i++ {
		if i > maxArchiveSuffix {
			return "", fmt.Errorf("no free archive name for %s", name)
		}
		dest = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
	return dest, nil
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (p *implProcessor) Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if p.validator.Accepts(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}
