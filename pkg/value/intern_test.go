package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/pkg/value"
)

func mustIntern(t *testing.T, table *value.InternTable, s string) *value.ObjString {
	t.Helper()
	chars := []byte(s)
	hash := value.HashBytes(chars)
	if found := table.FindString(chars, hash); found != nil {
		return found
	}
	obj := value.NewObjString(chars, hash)
	table.Insert(obj)
	return obj
}

func TestInternTableDedupesByContent(t *testing.T) {
	table := value.NewInternTable()
	a := mustIntern(t, table, "hello")
	b := mustIntern(t, table, "hello")
	require.Same(t, a, b)
}

func TestInternTableDistinguishesContent(t *testing.T) {
	table := value.NewInternTable()
	a := mustIntern(t, table, "hello")
	b := mustIntern(t, table, "world")
	require.NotSame(t, a, b)
}

func TestInternTableGrowsPastLoadFactor(t *testing.T) {
	table := value.NewInternTable()
	seen := map[string]*value.ObjString{}
	for i := 0; i < 200; i++ {
		s := string(rune('a'+i%26)) + string(rune('A'+(i/26)%26)) + string(rune('0'+i%10))
		obj := mustIntern(t, table, s)
		if prev, ok := seen[s]; ok {
			require.Same(t, prev, obj)
		} else {
			seen[s] = obj
		}
	}
	for s, obj := range seen {
		require.Same(t, obj, mustIntern(t, table, s))
	}
}

func TestInternTableRemoveWhiteDropsUnmarked(t *testing.T) {
	table := value.NewInternTable()
	live := mustIntern(t, table, "live")
	dead := mustIntern(t, table, "dead")
	live.Marked = true
	dead.Marked = false

	table.RemoveWhite()

	require.NotNil(t, table.FindString([]byte("live"), value.HashBytes([]byte("live"))))
	require.Nil(t, table.FindString([]byte("dead"), value.HashBytes([]byte("dead"))))
}
