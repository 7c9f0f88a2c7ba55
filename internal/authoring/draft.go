// Package authoring lets managers build, validate, import and export
// courses.
package authoring

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	gonanoid "github.com/matoous/go-nanoid"

	"github.com/skilltrack/skilltrack/internal/course"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var ErrItemNotFound = errors.New("item not found")

// Draft is an editable course. Its JSON form is the course file format.
type Draft struct {
	ID          string      `json:"id,omitempty" validate:"omitempty,max=64"`
	Name        string      `json:"name" validate:"required,max=120"`
	Description string      `json:"description,omitempty" validate:"max=2000"`
	Deadline    string      `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Items       []ItemDraft `json:"items" validate:"unique=ID,dive"`
}

// ItemDraft is one lesson or task in a Draft.
type ItemDraft struct {
	ID       string      `json:"id,omitempty" validate:"required,max=64"`
	Kind     course.Kind `json:"type" validate:"oneof=lesson task"`
	Title    string      `json:"title,omitempty" validate:"required_if=Kind lesson,max=200"`
	Content  string      `json:"content,omitempty" validate:"required_if=Kind lesson"`
	Question string      `json:"question,omitempty" validate:"required_if=Kind task"`
	Answer   string      `json:"answer,omitempty" validate:"required_if=Kind task,max=500"`
}

// FieldError is one failed validation rule.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every problem found in a draft.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "invalid course: " + strings.Join(msgs, "; ")
}

var validate = validator.New()

// Validate checks the draft and returns a *ValidationError on failure.
func (d *Draft) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating course: %w", err)
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		ns := fe.Namespace()
		field := ns[strings.IndexByte(ns, '.')+1:]
		out.Fields = append(out.Fields, FieldError{Field: field, Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	case "oneof":
		return "must be one of " + fe.Param()
	case "unique":
		return "item ids must be unique"
	default:
		return "failed " + fe.Tag()
	}
}

// NewID returns a short random id with the given prefix.
func NewID(prefix string) string {
	id, err := gonanoid.Generate(idAlphabet, 8)
	if err != nil {
		panic(fmt.Sprintf("nanoid: %v", err))
	}
	return prefix + id
}

// AddLesson appends a lesson and returns its id.
func (d *Draft) AddLesson(title, content string) string {
	it := ItemDraft{ID: NewID("l"), Kind: course.KindLesson, Title: title, Content: content}
	d.Items = append(d.Items, it)
	return it.ID
}

// AddTask appends a task and returns its id.
func (d *Draft) AddTask(question, answer string) string {
	it := ItemDraft{ID: NewID("t"), Kind: course.KindTask, Question: question, Answer: answer}
	d.Items = append(d.Items, it)
	return it.ID
}

func (d *Draft) index(id string) (int, error) {
	i := slices.IndexFunc(d.Items, func(it ItemDraft) bool { return it.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return i, nil
}

// UpdateItem replaces the text of item id. The id and kind are kept.
func (d *Draft) UpdateItem(id string, upd ItemDraft) error {
	i, err := d.index(id)
	if err != nil {
		return err
	}
	upd.ID, upd.Kind = d.Items[i].ID, d.Items[i].Kind
	d.Items[i] = upd
	return nil
}

// RemoveItem deletes item id.
func (d *Draft) RemoveItem(id string) error {
	i, err := d.index(id)
	if err != nil {
		return err
	}
	d.Items = slices.Delete(d.Items, i, i+1)
	return nil
}

// MoveItem moves item id to position pos, clamped to the list bounds.
func (d *Draft) MoveItem(id string, pos int) error {
	i, err := d.index(id)
	if err != nil {
		return err
	}
	it := d.Items[i]
	d.Items = slices.Delete(d.Items, i, i+1)
	pos = min(max(pos, 0), len(d.Items))
	d.Items = slices.Insert(d.Items, pos, it)
	return nil
}

// fillIDs assigns ids to the draft and items that lack one.
func (d *Draft) fillIDs() {
	if d.ID == "" {
		d.ID = NewID("c")
	}
	for i := range d.Items {
		if d.Items[i].ID != "" {
			continue
		}
		prefix := "l"
		if d.Items[i].Kind == course.KindTask {
			prefix = "t"
		}
		d.Items[i].ID = NewID(prefix)
	}
}

// Course converts the draft into the stored course form.
func (d *Draft) Course(ownerID string) *course.Course {
	c := &course.Course{
		ID:          d.ID,
		Name:        strings.TrimSpace(d.Name),
		Description: d.Description,
		Deadline:    d.Deadline,
		OwnerID:     ownerID,
		Items:       make([]course.Item, len(d.Items)),
	}
	for i, it := range d.Items {
		c.Items[i] = course.Item{
			ID:       it.ID,
			Kind:     it.Kind,
			Title:    it.Title,
			Body:     it.Content,
			Question: it.Question,
			Answer:   it.Answer,
		}
	}
	return c
}

// FromCourse builds an editable draft from a stored course.
func FromCourse(c *course.Course) *Draft {
	d := &Draft{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Deadline:    c.Deadline,
		Items:       make([]ItemDraft, len(c.Items)),
	}
	for i, it := range c.Items {
		d.Items[i] = ItemDraft{
			ID:       it.ID,
			Kind:     it.Kind,
			Title:    it.Title,
			Content:  it.Body,
			Question: it.Question,
			Answer:   it.Answer,
		}
	}
	return d
}
