// Package catalog keeps named cron expressions in the database so they can be
// expanded later by name.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yinyin/crontimesequence/db/models"
	"github.com/yinyin/crontimesequence/scheduler"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("schedule not found")

// Entry is the user-facing description of a catalog schedule. Empty fields mean "*".
type Entry struct {
	Name    string
	Minute  string
	Hour    string
	Day     string
	Month   string
	Weekday string
	Policy  string
	Note    string
}

// EntryFromLine fills the five fields of an entry from a cron line.
func EntryFromLine(name, line string) (Entry, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return Entry{}, fmt.Errorf("invalid cron expression (expected 5 fields): %q", line)
	}
	return Entry{
		Name:    name,
		Minute:  fields[0],
		Hour:    fields[1],
		Day:     fields[2],
		Month:   fields[3],
		Weekday: fields[4],
	}, nil
}

func (e Entry) normalized() Entry {
	field := func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return "*"
		}
		return v
	}
	e.Name = strings.TrimSpace(e.Name)
	e.Minute = field(e.Minute)
	e.Hour = field(e.Hour)
	e.Day = field(e.Day)
	e.Month = field(e.Month)
	e.Weekday = field(e.Weekday)
	e.Policy = strings.ToLower(strings.TrimSpace(e.Policy))
	e.Note = strings.TrimSpace(e.Note)
	return e
}

type ListOptions struct {
	// Query matches name or note by substring; space-separated keywords must all match.
	Query       string
	Fingerprint string
	// name_asc (default) | updated_at_desc | created_at_asc
	OrderBy string
	Limit   int
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Store reads and writes catalog schedules.
type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewStore(gdb *gorm.DB, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: gdb, log: log}
}

// Save creates the named schedule or replaces the existing one with the same name.
// The entry must parse under its own policy.
func (s *Store) Save(ctx context.Context, e Entry) (models.CronSchedule, error) {
	e = e.normalized()
	if e.Name == "" {
		return models.CronSchedule{}, fmt.Errorf("missing required param: name")
	}
	policy, err := scheduler.ParseErrorPolicy(e.Policy)
	if err != nil {
		return models.CronSchedule{}, err
	}
	if _, err := scheduler.NewParser(policy, s.log).ParseExpression(e.Minute, e.Hour, e.Day, e.Month, e.Weekday); err != nil {
		return models.CronSchedule{}, fmt.Errorf("schedule %q: %w", e.Name, err)
	}
	fp, err := Fingerprint(e)
	if err != nil {
		return models.CronSchedule{}, err
	}

	var rec models.CronSchedule
	err = s.db.WithContext(ctx).Where("name = ?", e.Name).First(&rec).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CronSchedule{}, err
	}

	set := func(r *models.CronSchedule) {
		r.Name = e.Name
		r.Minute = e.Minute
		r.Hour = e.Hour
		r.Day = e.Day
		r.Month = e.Month
		r.Weekday = e.Weekday
		r.Policy = policy.String()
		r.Fingerprint = fp
		r.Note = e.Note
	}

	set(&rec)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
			return models.CronSchedule{}, err
		}
		s.log.Info("catalog_schedule_created", "name", rec.Name, "id", rec.ID)
	} else {
		if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
			return models.CronSchedule{}, err
		}
		s.log.Info("catalog_schedule_updated", "name", rec.Name, "id", rec.ID)
	}
	return rec, nil
}

// Get looks a schedule up by id first, then by name.
func (s *Store) Get(ctx context.Context, idOrName string) (models.CronSchedule, error) {
	key := strings.TrimSpace(idOrName)
	if key == "" {
		return models.CronSchedule{}, fmt.Errorf("missing required param: id or name")
	}
	var rec models.CronSchedule
	err := s.db.WithContext(ctx).Where("id = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.WithContext(ctx).Where("name = ?", key).First(&rec).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CronSchedule{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return models.CronSchedule{}, err
	}
	return rec, nil
}

func (s *Store) List(ctx context.Context, opts ListOptions) ([]models.CronSchedule, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := s.db.WithContext(ctx).Model(&models.CronSchedule{})
	for _, kw := range strings.Fields(opts.Query) {
		like := "%" + strings.ToLower(kw) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(note) LIKE ?)", like, like)
	}
	if fp := strings.TrimSpace(opts.Fingerprint); fp != "" {
		query = query.Where("fingerprint = ?", fp)
	}

	switch strings.ToLower(strings.TrimSpace(opts.OrderBy)) {
	case "", "name_asc":
		query = query.Order("name asc")
	case "updated_at_desc":
		query = query.Order("updated_at desc").Order("name asc")
	case "created_at_asc":
		query = query.Order("created_at asc").Order("name asc")
	default:
		return nil, fmt.Errorf("invalid order_by %q", opts.OrderBy)
	}

	var out []models.CronSchedule
	if err := query.Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Remove(ctx context.Context, idOrName string) (models.CronSchedule, error) {
	rec, err := s.Get(ctx, idOrName)
	if err != nil {
		return models.CronSchedule{}, err
	}
	if err := s.db.WithContext(ctx).Delete(&models.CronSchedule{}, "id = ?", rec.ID).Error; err != nil {
		return models.CronSchedule{}, err
	}
	s.log.Info("catalog_schedule_removed", "name", rec.Name, "id", rec.ID)
	return rec, nil
}

// Expression parses a stored schedule under the policy it was saved with.
func (s *Store) Expression(rec models.CronSchedule) (*scheduler.Expression, error) {
	policy, err := scheduler.ParseErrorPolicy(rec.Policy)
	if err != nil {
		return nil, err
	}
	return scheduler.NewParser(policy, s.log).ParseExpression(rec.Minute, rec.Hour, rec.Day, rec.Month, rec.Weekday)
}
