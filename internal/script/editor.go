package script

import (
	"fmt"
	"time"
)

// Field names an editable script header field.
type Field int

const (
	FieldTitle Field = iota
	FieldAuthor
	FieldDescription
)

// SetField writes one header field.
func (s *Script) SetField(f Field, value string) {
	switch f {
	case FieldTitle:
		s.Title = value
	case FieldAuthor:
		s.Author = value
	case FieldDescription:
		s.Description = value
	}
}

// FieldValue reads one header field.
func (s Script) FieldValue(f Field) string {
	switch f {
	case FieldTitle:
		return s.Title
	case FieldAuthor:
		return s.Author
	case FieldDescription:
		return s.Description
	default:
		return ""
	}
}

// AddRole appends a blank townsfolk role and returns its id.
func (s *Script) AddRole(now time.Time) string {
	id := fmt.Sprintf("new_%d", now.UnixMilli())
	for n := 1; ; n++ {
		if _, taken := s.Role(id); !taken {
			break
		}
		id = fmt.Sprintf("new_%d_%d", now.UnixMilli(), n)
	}
	s.Roles = append(s.Roles, Role{ID: id, Team: TeamTownsfolk})
	return id
}

// UpdateRole applies fn to the role with id. The id itself cannot be changed.
func (s *Script) UpdateRole(id string, fn func(*Role)) bool {
	for i := range s.Roles {
		if s.Roles[i].ID != id {
			continue
		}
		fn(&s.Roles[i])
		s.Roles[i].ID = id
		if !s.Roles[i].Team.Valid() {
			s.Roles[i].Team = TeamTownsfolk
		}
		return true
	}
	return false
}

// DeleteRole removes the role with id.
func (s *Script) DeleteRole(id string) bool {
	for i := range s.Roles {
		if s.Roles[i].ID == id {
			s.Roles = append(s.Roles[:i], s.Roles[i+1:]...)
			return true
		}
	}
	return false
}
