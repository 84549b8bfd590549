package index

import (
	"strings"

	"github.com/huangsam/reposcope/schema"
)

func (e *Engine) tagByName(name string) (schema.Tag, bool) {
	for _, t := range e.index.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return schema.Tag{}, false
}

// userTags keeps the tags registered in the global catalog. Everything else
// was derived from an earlier analysis. Callers hold e.mu.
func (e *Engine) userTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if _, ok := e.tagByName(t); ok {
			out = append(out, t)
		}
	}
	return out
}

// AddRepositoryTag attaches name to a repository. Attaching the same name twice
// leaves one occurrence. The first global tag with that name is reused,
// otherwise a new one is registered.
func (e *Engine) AddRepositoryTag(repoID, name, category, color string) (schema.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return schema.Tag{}, &schema.ValidationError{Field: "name", Message: "must not be empty"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.position(repoID)
	if i < 0 {
		return schema.Tag{}, repoNotFound(repoID)
	}
	tag, ok := e.tagByName(name)
	if !ok {
		tag = schema.Tag{ID: e.newID(), Name: name, Category: category, Color: color}
		e.index.Tags = append(e.index.Tags, tag)
	}
	repo := &e.index.Repositories[i]
	if !repo.HasTag(name) {
		repo.Tags = append(repo.Tags, name)
		repo.UpdatedAt = e.now()
	}
	return tag, e.touch()
}

// RemoveRepositoryTag detaches name from a repository. The global catalog is
// left untouched.
func (e *Engine) RemoveRepositoryTag(repoID, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.position(repoID)
	if i < 0 {
		return repoNotFound(repoID)
	}
	repo := &e.index.Repositories[i]
	if !repo.HasTag(name) {
		return &schema.NotFoundError{Kind: "tag", ID: name, ParentKind: "repository", ParentID: repoID}
	}
	repo.Tags = without(repo.Tags, name)
	repo.UpdatedAt = e.now()
	return e.touch()
}

// AddTag registers a global tag. Names are not unique: every call yields a new id.
func (e *Engine) AddTag(name, category, color string) (schema.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return schema.Tag{}, &schema.ValidationError{Field: "name", Message: "must not be empty"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	tag := schema.Tag{ID: e.newID(), Name: name, Category: category, Color: color}
	e.index.Tags = append(e.index.Tags, tag)
	return tag, e.touch()
}

// RemoveTag deletes a global tag and strips its name from every repository.
func (e *Engine) RemoveTag(tagID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos := -1
	for i, t := range e.index.Tags {
		if t.ID == tagID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return &schema.NotFoundError{Kind: "tag", ID: tagID}
	}
	name := e.index.Tags[pos].Name
	e.index.Tags = append(e.index.Tags[:pos], e.index.Tags[pos+1:]...)
	now := e.now()
	for i := range e.index.Repositories {
		repo := &e.index.Repositories[i]
		if repo.HasTag(name) {
			repo.Tags = without(repo.Tags, name)
			repo.UpdatedAt = now
		}
	}
	return e.touch()
}

// ListTags returns the global catalog.
func (e *Engine) ListTags() []schema.Tag {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]schema.Tag{}, e.index.Tags...)
}

func without(values []string, name string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != name {
			out = append(out, v)
		}
	}
	return out
}
