package repository

import (
	"context"
	"time"

	"github.com/okian/clubhouse/internal/adapters/docstore"
	"github.com/okian/clubhouse/internal/domain/model"
)

const (
	attrCategory = "category"
	attrFeatured = "featured"
	attrRole     = "role"
	attrStart    = "eventDate"
	attrEnd      = "eventDateEnd"
)

// Events accesses the events collection.
type Events struct {
	c collection[model.Event]
}

// GetAll lists events, newest authored first.
func (e *Events) GetAll(ctx context.Context) ([]model.Event, error) {
	return e.c.newest(ctx)
}

// GetByID returns one event.
func (e *Events) GetByID(ctx context.Context, id string) (model.Event, error) {
	return e.c.get(ctx, id)
}

// GetByCategory lists events of one category, newest authored first.
func (e *Events) GetByCategory(ctx context.Context, category model.Category) ([]model.Event, error) {
	return e.c.newest(ctx, docstore.Equal(attrCategory, string(category)))
}

// Create validates and stores an event, returning it with its assigned ID
// and creation time.
func (e *Events) Create(ctx context.Context, ev model.Event) (model.Event, error) {
	if err := ev.Validate(); err != nil {
		return model.Event{}, e.c.wrap(opCreate, err)
	}
	data, err := encode(ev)
	if err != nil {
		return model.Event{}, e.c.wrap(opCreate, err)
	}
	return e.c.create(ctx, data)
}

// Update applies a partial update. When the patch touches the dates the
// merged event is validated before anything is written.
func (e *Events) Update(ctx context.Context, id string, patch map[string]any) (model.Event, error) {
	_, touchesStart := patch[attrStart]
	_, touchesEnd := patch[attrEnd]
	if touchesStart || touchesEnd {
		current, err := e.c.get(ctx, id)
		if err != nil {
			return model.Event{}, err
		}
		merged, err := mergeDates(current, patch)
		if err != nil {
			return model.Event{}, e.c.wrap(opUpdate, err)
		}
		if err := merged.Validate(); err != nil {
			return model.Event{}, e.c.wrap(opUpdate, err)
		}
	}
	return e.c.update(ctx, id, patch)
}

// Delete removes an event.
func (e *Events) Delete(ctx context.Context, id string) error {
	return e.c.remove(ctx, id)
}

func mergeDates(ev model.Event, patch map[string]any) (model.Event, error) {
	for _, attr := range []string{attrStart, attrEnd} {
		v, ok := patch[attr]
		if !ok {
			continue
		}
		var t *time.Time
		switch x := v.(type) {
		case time.Time:
			t = &x
		case *time.Time:
			t = x
		default:
			parsed, err := timeHook(nil, timePtrType, v)
			if err != nil {
				return ev, err
			}
			if p, ok := parsed.(time.Time); ok {
				t = &p
			}
		}
		if attr == attrStart {
			ev.Start = time.Time{}
			if t != nil {
				ev.Start = *t
			}
		} else {
			ev.End = t
		}
	}
	return ev, nil
}

// Blogs accesses the blog posts collection.
type Blogs struct {
	c collection[model.Blog]
}

// GetAll lists posts, newest first.
func (b *Blogs) GetAll(ctx context.Context) ([]model.Blog, error) {
	return b.c.newest(ctx)
}

// GetByID returns one post.
func (b *Blogs) GetByID(ctx context.Context, id string) (model.Blog, error) {
	return b.c.get(ctx, id)
}

// GetByCategory lists posts of one category, newest first.
func (b *Blogs) GetByCategory(ctx context.Context, category model.Category) ([]model.Blog, error) {
	return b.c.newest(ctx, docstore.Equal(attrCategory, string(category)))
}

// GetFeatured lists featured posts, newest first.
func (b *Blogs) GetFeatured(ctx context.Context) ([]model.Blog, error) {
	return b.c.newest(ctx, docstore.Equal(attrFeatured, true))
}

// Create stores a post.
func (b *Blogs) Create(ctx context.Context, post model.Blog) (model.Blog, error) {
	data, err := encode(post)
	if err != nil {
		return model.Blog{}, b.c.wrap(opCreate, err)
	}
	return b.c.create(ctx, data)
}

// Update applies a partial update.
func (b *Blogs) Update(ctx context.Context, id string, patch map[string]any) (model.Blog, error) {
	return b.c.update(ctx, id, patch)
}

// Delete removes a post.
func (b *Blogs) Delete(ctx context.Context, id string) error {
	return b.c.remove(ctx, id)
}

// Team accesses the team members collection.
type Team struct {
	c collection[model.TeamMember]
}

// GetAll lists every member, newest first.
func (t *Team) GetAll(ctx context.Context) ([]model.TeamMember, error) {
	return t.c.newest(ctx)
}

// GetByID returns one member.
func (t *Team) GetByID(ctx context.Context, id string) (model.TeamMember, error) {
	return t.c.get(ctx, id)
}

// GetByRole lists members holding role, newest first.
func (t *Team) GetByRole(ctx context.Context, role string) ([]model.TeamMember, error) {
	return t.c.newest(ctx, docstore.Equal(attrRole, role))
}

// Create stores a member.
func (t *Team) Create(ctx context.Context, m model.TeamMember) (model.TeamMember, error) {
	data, err := encode(m)
	if err != nil {
		return model.TeamMember{}, t.c.wrap(opCreate, err)
	}
	return t.c.create(ctx, data)
}

// Update applies a partial update.
func (t *Team) Update(ctx context.Context, id string, patch map[string]any) (model.TeamMember, error) {
	return t.c.update(ctx, id, patch)
}

// Delete removes a member.
func (t *Team) Delete(ctx context.Context, id string) error {
	return t.c.remove(ctx, id)
}
