package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

const dateLayout = "2006-01-02"

type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	out := []Category{}
	err := s.DB.WithContext(ctx).Order("name asc, id asc").Find(&out).Error
	return out, err
}

func (s *Service) CreateCategory(ctx context.Context, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	c := Category{Name: name, CreatedAt: s.now()}
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		return Category{}, err
	}
	return c, nil
}

// DeleteCategory detaches its tasks before removing it.
func (s *Service) DeleteCategory(ctx context.Context, id uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Task{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&Category{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

type TaskFilter struct {
	Query      string
	CategoryID *uint64
	StartDue   string
	EndDue     string
	Tag        string
}

func validDate(s string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("%w: invalid date %q (YYYY-MM-DD)", ErrInvalidInput, s)
	}
	return nil
}

func likeEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (s *Service) ListTasks(ctx context.Context, f TaskFilter) ([]Task, error) {
	q := s.DB.WithContext(ctx).Model(&Task{})

	if v := strings.TrimSpace(f.Query); v != "" {
		q = q.Where("lower(title) LIKE ? ESCAPE '\\'", "%"+likeEscape(strings.ToLower(v))+"%")
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.StartDue != "" {
		if err := validDate(f.StartDue); err != nil {
			return nil, err
		}
		q = q.Where("due_date >= ?", f.StartDue)
	}
	if f.EndDue != "" {
		if err := validDate(f.EndDue); err != nil {
			return nil, err
		}
		q = q.Where("due_date <= ?", f.EndDue)
	}
	if tag := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(f.Tag)), "#"); tag != "" {
		q = q.Where("tags LIKE ? ESCAPE '\\'", `%"`+likeEscape(tag)+`"%`)
	}

	out := []Task{}
	err := q.Order("completed asc, due_date asc, id desc").Find(&out).Error
	return out, err
}

type TaskInput struct {
	Title      string
	CategoryID *uint64
	DueDate    *string
}

func normalizeDue(v *string) (*string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	d := strings.TrimSpace(*v)
	if err := validDate(d); err != nil {
		return nil, err
	}
	return &d, nil
}

func tagsFor(title string) pq.StringArray {
	tags := ExtractTags(title)
	if tags == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(tags)
}

func (s *Service) CreateTask(ctx context.Context, in TaskInput) (Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	due, err := normalizeDue(in.DueDate)
	if err != nil {
		return Task{}, err
	}
	catID := in.CategoryID
	if catID != nil && *catID == 0 {
		catID = nil
	}

	t := Task{
		Title:      title,
		CategoryID: catID,
		DueDate:    due,
		Tags:       tagsFor(title),
		CreatedAt:  s.now(),
	}
	if err := s.DB.WithContext(ctx).Create(&t).Error; err != nil {
		return Task{}, err
	}
	return t, nil
}

// TaskPatch: ClearCategory/ClearDue distinguish "set to null" from "leave".
type TaskPatch struct {
	Title         *string
	CategoryID    *uint64
	ClearCategory bool
	DueDate       *string
	ClearDue      bool
	Completed     *bool
}

func (s *Service) UpdateTask(ctx context.Context, id uint64, p TaskPatch) (Task, error) {
	fields := map[string]any{}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		fields["title"] = title
		fields["tags"] = tagsFor(title)
	}
	switch {
	case p.ClearCategory:
		fields["category_id"] = nil
	case p.CategoryID != nil:
		fields["category_id"] = *p.CategoryID
	}
	switch {
	case p.ClearDue:
		fields["due_date"] = nil
	case p.DueDate != nil:
		due, err := normalizeDue(p.DueDate)
		if err != nil {
			return Task{}, err
		}
		fields["due_date"] = due
	}
	if p.Completed != nil {
		fields["completed"] = *p.Completed
	}
	if len(fields) == 0 {
		return Task{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	var t Task
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Task{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&t, "id = ?", id).Error
	})
	return t, err
}

func (s *Service) DeleteTask(ctx context.Context, id uint64) error {
	res := s.DB.WithContext(ctx).Delete(&Task{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CompletedCount feeds the dashboard metrics.
func (s *Service) CompletedCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&Task{}).Where("completed = ?", true).Count(&n).Error
	return n, err
}
