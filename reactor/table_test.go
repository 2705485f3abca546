package reactor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testTableBasics(t *testing.T, tb table) {
	t.Helper()

	a := &Event{FD: 3}
	b := &Event{FD: 7}
	tb.put(3, a)
	tb.put(7, b)

	got, ok := tb.get(7)
	require.True(t, ok)
	require.Same(t, b, got)

	var order []int
	tb.each(func(ev *Event) { order = append(order, ev.FD) })
	require.Equal(t, []int{3, 7}, order)

	tb.del(3)
	_, ok = tb.get(3)
	require.False(t, ok)

	order = nil
	tb.each(func(ev *Event) { order = append(order, ev.FD) })
	require.Equal(t, []int{7}, order)
}

func TestMapTable(t *testing.T) {
	testTableBasics(t, newTable(true))
}

func TestArrayTable(t *testing.T) {
	testTableBasics(t, newTable(false))
}
