package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/basketloom-cli/internal/dataset"
	"github.com/KaramelBytes/basketloom-cli/internal/store"
	"github.com/KaramelBytes/basketloom-cli/internal/utils"
)

// openCache opens (and initializes) the row cache at the configured path.
func openCache() (*store.Store, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	if err := utils.EnsureDir(filepath.Dir(c.CachePath)); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	st, err := store.Open(c.CachePath)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", c.CachePath, err)
	}
	return st, nil
}

// sheetKey identifies the sheet selection so different sheets of one
// workbook are cached separately.
func sheetKey(opt dataset.ReadOptions) string {
	switch {
	case opt.SheetName != "":
		return "name:" + strings.ToLower(opt.SheetName)
	case opt.SheetIndex > 0:
		return "index:" + strconv.Itoa(opt.SheetIndex)
	}
	return ""
}

// loadTable reads path, through the row cache when useCache is set. Reads
// capped by MaxRows are served from the cache but never stored in it.
func loadTable(ctx context.Context, path string, opt dataset.ReadOptions, useCache bool) (*dataset.Table, error) {
	if !useCache {
		tab, err := dataset.ReadTable(path, opt)
		if err == nil {
			logger.Info("read dataset", "path", path, "rows", len(tab.Rows))
		}
		return tab, err
	}

	st, err := openCache()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	fp, err := store.FingerprintFile(path, sheetKey(opt))
	if err != nil {
		return nil, err
	}
	tab, err := st.LoadTable(ctx, fp)
	switch {
	case err == nil:
		if opt.MaxRows > 0 && len(tab.Rows) > opt.MaxRows {
			tab.Rows = tab.Rows[:opt.MaxRows]
		}
		logger.Info("loaded rows from cache", "path", fp.Path, "rows", len(tab.Rows))
		return tab, nil
	case !errors.Is(err, store.ErrNotCached):
		return nil, err
	}
	logger.Debug("cache miss", "reason", err)

	tab, err = dataset.ReadTable(path, opt)
	if err != nil {
		return nil, err
	}
	logger.Info("read dataset", "path", path, "rows", len(tab.Rows))
	if opt.MaxRows > 0 {
		return tab, nil
	}
	if err := st.SaveTable(ctx, fp, tab); err != nil {
		return nil, fmt.Errorf("cache rows: %w", err)
	}
	logger.Debug("cached rows", "path", fp.Path, "rows", len(tab.Rows))
	return tab, nil
}
