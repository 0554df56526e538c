package logging

import "fmt"

// NewStore opens the backend selected by cfg. An empty backend disables
// plan logging and returns nil.
func NewStore(cfg Config) (LogStore, error) {
	var (
		store LogStore
		err   error
	)
	switch cfg.Backend {
	case "":
		return nil, nil
	case "sqlite":
		var s *SQLiteStore
		if s, err = NewSQLiteStore(cfg.Path); err == nil {
			store = s
		}
	case "jsonl":
		if cfg.MaxSizeMB > 0 {
			var s *RotatingJSONLStore
			if s, err = NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays); err == nil {
				store = s
			}
			break
		}
		var s *JSONLStore
		if s, err = NewJSONLStore(cfg.Path); err == nil {
			store = s
		}
	default:
		return nil, fmt.Errorf("unknown log backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s log store: %w", cfg.Backend, err)
	}
	return store, nil
}
