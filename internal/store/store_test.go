package store

import (
	"context"
	"strings"
	"testing"

	"neurosphere/internal/params"
	"neurosphere/internal/snapshot"
)

func TestSaveWorldRejectsIncompleteRecords(t *testing.T) {
	s := AttachDB(nil)
	id := 3
	cases := []struct {
		name string
		w    snapshot.World
		want string
	}{
		{"no id", snapshot.World{Type: "planet"}, "no id"},
		{"pending", snapshot.World{ID: &id, Type: "planet", Generation: snapshot.Generation{Generation: params.Default()}}, "not generated"},
	}
	for _, c := range cases {
		err := s.SaveWorld(context.Background(), c.w)
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: err %v, want %q", c.name, err, c.want)
		}
	}
}
