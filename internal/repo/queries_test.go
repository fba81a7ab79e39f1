package repo

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

func TestLockBlockQuery(t *testing.T) {
	id := uuid.New()
	q, args := lockBlockQuery(id)

	if !strings.Contains(q, "FOR UPDATE OF") {
		t.Errorf("query does not lock the block row: %s", q)
	}
	if !strings.Contains(q, "JOIN") {
		t.Errorf("query does not join schedules: %s", q)
	}
	if len(args) != 1 || args[0] != id {
		t.Errorf("args = %v, want [%v]", args, id)
	}
}

func TestOpenBlocksQuery(t *testing.T) {
	prof := uuid.New()
	q, args := openBlocksQuery(OpenBlockFilter{
		ProfessionalID: &prof,
		Specialty:      "Cardiología",
		FromDate:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		After:          time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		Limit:          50,
	})

	for _, frag := range []string{"EXISTS", "ORDER BY", "LIMIT 50"} {
		if !strings.Contains(q, frag) {
			t.Errorf("query missing %q: %s", frag, q)
		}
	}
	if !strings.Contains(q, "$"+fmt.Sprint(len(args))) {
		t.Errorf("placeholders do not cover %d args: %s", len(args), q)
	}
}

func TestMapErr(t *testing.T) {
	dup := &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
	if err := mapErr(dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("mapErr(unique violation) = %v, want ErrDuplicate", err)
	}

	other := errors.New("connection reset")
	if err := mapErr(other); errors.Is(err, ErrDuplicate) || err != other {
		t.Errorf("mapErr(other) = %v", err)
	}
	if mapErr(nil) != nil {
		t.Error("mapErr(nil) != nil")
	}
}

func TestCivilDate(t *testing.T) {
	loc := time.FixedZone("CLT", -3*3600)
	got := CivilDate(time.Date(2026, 3, 2, 23, 30, 0, 0, loc))
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CivilDate = %v, want %v", got, want)
	}
}
