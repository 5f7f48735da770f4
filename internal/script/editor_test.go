package script

import (
	"testing"
	"time"
)

func TestEditorFields(t *testing.T) {
	var s Script
	s.SetField(FieldTitle, "新剧本")
	s.SetField(FieldAuthor, "me")
	s.SetField(FieldDescription, "desc")
	if s.FieldValue(FieldTitle) != "新剧本" || s.FieldValue(FieldAuthor) != "me" || s.FieldValue(FieldDescription) != "desc" {
		t.Fatalf("unexpected fields %+v", s)
	}
}

func TestEditorRoles(t *testing.T) {
	var s Script
	now := time.UnixMilli(1000)
	a := s.AddRole(now)
	b := s.AddRole(now)
	if a != "new_1000" || b == a {
		t.Fatalf("expected unique new ids, got %q %q", a, b)
	}
	ok := s.UpdateRole(a, func(r *Role) {
		r.ID = "hijack"
		r.Name = "厨师"
		r.Team = "bogus"
		r.FirstNight = true
	})
	if !ok {
		t.Fatalf("expected update to find role")
	}
	r, _ := s.Role(a)
	if r.Name != "厨师" || r.Team != TeamTownsfolk || !r.FirstNight {
		t.Fatalf("unexpected role after update %+v", r)
	}
	if !s.DeleteRole(b) || s.DeleteRole(b) {
		t.Fatalf("expected delete once")
	}
	if len(s.Roles) != 1 {
		t.Fatalf("expected 1 role left, got %d", len(s.Roles))
	}
	if s.UpdateRole("missing", func(*Role) {}) {
		t.Fatalf("expected update of missing role to fail")
	}
}

func TestByTeamFilter(t *testing.T) {
	s := Script{Roles: testCatalog()}
	all := s.ByTeam("")
	if len(all[TeamTownsfolk]) != 3 || len(all[TeamDemon]) != 1 {
		t.Fatalf("unexpected grouping %+v", all)
	}
	got := s.ByTeam("恶魔")
	if len(got[TeamTownsfolk]) != 0 || len(got[TeamDemon]) != 1 {
		t.Fatalf("unexpected filtered grouping %+v", got)
	}
}
