package feed

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/dmitrijs2005/eventfeed/internal/client/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fp = models.Fingerprint("location=Riga")

func seeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.AppendPage(fp, page("2", ev(1, "a"), ev(2, "b")))
	s.AppendPage(fp, page("3", ev(3, "c"), ev(4, "d")))
	return s
}

func TestStore_AppendAndFlatten(t *testing.T) {
	s := seeded(t)

	assert.Equal(t, []int64{1, 2, 3, 4}, ids(s.Flatten(fp)))
	assert.Equal(t, 2, s.PageCount(fp))
	cursor, ok := s.LastCursor(fp)
	assert.True(t, ok)
	assert.Equal(t, "3", cursor)

	assert.Empty(t, s.Flatten("other"))
	_, ok = s.LastCursor("other")
	assert.False(t, ok)
}

func TestStore_AppendSkipsCachedIDs(t *testing.T) {
	s := seeded(t)
	s.AppendPage(fp, page("", ev(4, "d"), ev(5, "e")))

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(s.Flatten(fp)))
	assert.Equal(t, 3, s.PageCount(fp))
}

func TestStore_RewriteKeepsBoundariesAndCursors(t *testing.T) {
	s := seeded(t)
	s.Rewrite(fp, func(events []models.Event) []models.Event {
		for i := range events {
			events[i].Title += "!"
		}
		return events[:1]
	})

	pages := s.Pages(fp)
	require.Len(t, pages, 2)
	assert.Equal(t, []int64{1}, ids(pages[0].Events))
	assert.Equal(t, []int64{3}, ids(pages[1].Events))
	assert.Equal(t, "2", pages[0].NextCursor)
	assert.Equal(t, "3", pages[1].NextCursor)
	assert.Equal(t, "a!", pages[0].Events[0].Title)
}

func TestStore_InsertGoesToFrontOfFirstPage(t *testing.T) {
	s := seeded(t)

	require.True(t, s.Insert(fp, ev(9, "new")))
	pages := s.Pages(fp)
	assert.Equal(t, []int64{9, 1, 2}, ids(pages[0].Events))
	assert.Equal(t, []int64{3, 4}, ids(pages[1].Events))

	// re-inserting an id that lives on another page moves it
	require.True(t, s.Insert(fp, ev(4, "moved")))
	assert.Equal(t, []int64{4, 9, 1, 2, 3}, ids(s.Flatten(fp)))
	assert.Equal(t, "moved", s.Flatten(fp)[0].Title)
}

func TestStore_InsertWithoutPagesIsNoop(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Insert(fp, ev(1, "a")))
	assert.Equal(t, 0, s.PageCount(fp))
}

func TestStore_RemoveAndReplace(t *testing.T) {
	s := seeded(t)

	assert.True(t, s.Remove(fp, 3))
	assert.False(t, s.Remove(fp, 3))
	assert.Equal(t, []int64{1, 2, 4}, ids(s.Flatten(fp)))

	assert.True(t, s.Replace(fp, models.Event{ID: 2, Title: "B"}))
	assert.False(t, s.Replace(fp, ev(42, "x")))
	got, ok := s.Get(fp, 2)
	require.True(t, ok)
	assert.Equal(t, "B", got.Title)
	assert.NotNil(t, got.Hobbies)
	assert.Equal(t, []int64{1, 2, 4}, ids(s.Flatten(fp)))
}

func TestStore_SnapshotRestore(t *testing.T) {
	s := seeded(t)
	before := s.Pages(fp)
	snap := s.Snapshot(fp)

	s.Remove(fp, 1)
	s.Insert(fp, ev(7, "x"))
	s.Update(fp, 3, func(e models.Event) models.Event { e.Title = "changed"; return e })
	s.AppendPage(fp, page("", ev(8, "y")))

	s.Restore(snap)
	if diff := cmp.Diff(before, s.Pages(fp)); diff != "" {
		t.Fatalf("restored state differs (-want +got):\n%s", diff)
	}
	assert.Equal(t, fp, snap.Fingerprint())
}

func TestStore_RestoreOfAbsentFingerprintDropsIt(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot(fp)
	s.AppendPage(fp, page("", ev(1, "a")))

	s.Restore(snap)
	_, ok := s.LastCursor(fp)
	assert.False(t, ok)
}

func TestStore_ReturnedValuesAreCopies(t *testing.T) {
	s := seeded(t)
	list := s.Flatten(fp)
	list[0].Title = "mutated"
	list[0].Hobbies = append(list[0].Hobbies, "x")

	got, _ := s.Get(fp, 1)
	assert.Equal(t, "a", got.Title)
	assert.Empty(t, got.Hobbies)
}

func TestStore_ReplacePagesDedupes(t *testing.T) {
	s := seeded(t)
	s.ReplacePages(fp, []models.Page{page("2", ev(5, "e"), ev(6, "f")), page("", ev(6, "f"), ev(7, "g"))})
	assert.Equal(t, []int64{5, 6, 7}, ids(s.Flatten(fp)))
	assert.Equal(t, 2, s.PageCount(fp))
	s.Drop(fp)
	assert.Equal(t, 0, s.PageCount(fp))
}

func TestStore_UniquenessUnderRandomOperations(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	s := NewStore()
	s.AppendPage(fp, page("2", ev(1, "a")))

	for range 2000 {
		id := r.Int64N(20) + 1
		switch r.IntN(5) {
		case 0:
			s.Insert(fp, ev(id, "ins"))
		case 1:
			s.Remove(fp, id)
		case 2:
			s.Replace(fp, ev(id, "rep"))
		case 3:
			s.AppendPage(fp, page("n", ev(id, "app"), ev(r.Int64N(20)+1, "app")))
		case 4:
			snap := s.Snapshot(fp)
			s.Insert(fp, ev(id, "tmp"))
			s.Restore(snap)
		}
		assertUnique(t, s.Flatten(fp))
	}
}

func TestStore_ConcurrentWritersKeepUniqueness(t *testing.T) {
	s := seeded(t)
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				id := int64((w*7+i)%10 + 1)
				if i%2 == 0 {
					s.Insert(fp, ev(id, "x"))
				} else {
					s.Remove(fp, id)
				}
				_ = s.Flatten(fp)
			}
		}()
	}
	wg.Wait()
	assertUnique(t, s.Flatten(fp))
}
