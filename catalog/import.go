package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"github.com/yinyin/crontimesequence/db/models"
	"github.com/yinyin/crontimesequence/scheduler"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// ImportFile saves every schedule listed in a YAML (.yaml, .yml) or JSON with
// comments (.json, .jsonc) file. The document is either a list of entries or an
// object with a "schedules" list. Each entry carries a name plus either an "expr"
// line or the individual field keys. All entries are saved in one transaction.
func (s *Store) ImportFile(ctx context.Context, path string) ([]models.CronSchedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	entries, err := DecodeEntries(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var saved []models.CronSchedule
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := &Store{db: tx, log: s.log}
		for _, e := range entries {
			rec, err := txStore.Save(ctx, e)
			if err != nil {
				return err
			}
			saved = append(saved, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// DecodeEntries reads catalog entries from data; ext picks the format.
func DecodeEntries(ext string, data []byte) ([]Entry, error) {
	var doc any
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog file extension %q (use .yaml, .yml, .json or .jsonc)", ext)
	}

	var items []any
	switch x := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		items = x
	case map[string]any:
		list, ok := x["schedules"].([]any)
		if !ok {
			return nil, fmt.Errorf(`expected a "schedules" list`)
		}
		items = list
	default:
		return nil, fmt.Errorf("unexpected document type %T", doc)
	}

	out := make([]Entry, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("schedules[%d]: expected an object, got %T", i, item)
		}
		e, err := entryFromMap(m)
		if err != nil {
			return nil, fmt.Errorf("schedules[%d]: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func entryFromMap(m map[string]any) (Entry, error) {
	name := strings.TrimSpace(getString(m, "name"))
	if name == "" {
		return Entry{}, fmt.Errorf("missing required param: name")
	}

	var e Entry
	if expr := strings.TrimSpace(getString(m, "expr")); expr != "" {
		var err error
		if e, err = EntryFromLine(name, expr); err != nil {
			return Entry{}, err
		}
	} else {
		e = Entry{
			Name:    name,
			Minute:  getString(m, "minute"),
			Hour:    getString(m, "hour"),
			Day:     getString(m, "day"),
			Month:   getString(m, "month"),
			Weekday: getString(m, "weekday"),
		}
	}
	e.Policy = getString(m, "policy")
	e.Note = getString(m, "note")
	return e, nil
}

// getString accepts numbers and booleans as well, so "minute: 5" reads as "5".
func getString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case float64:
		// JSON numbers decode as float64.
		if x == float64(int64(x)) {
			return scheduler.Token(int64(x))
		}
		return scheduler.Token(x)
	default:
		return scheduler.Token(x)
	}
}
