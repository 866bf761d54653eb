package revindex

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func threeItems() *Index[String] {
	return Build(Strings([]string{"zero", "one", "two"}), Tokens)
}

func TestNavigatorMiddle(t *testing.T) {
	nav := threeItems().Navigator(1)

	assert.Equal(t, String("one"), nav.Current())
	assert.Equal(t, 1, nav.Position())
	assert.Equal(t, []String{"two"}, slices.Collect(nav.Forwards()))
	assert.Equal(t, []String{"zero"}, slices.Collect(nav.Backwards()))
}

func TestNavigatorBounds(t *testing.T) {
	ri := threeItems()

	assert.Empty(t, slices.Collect(ri.Navigator(2).Forwards()))
	assert.Empty(t, slices.Collect(ri.Navigator(0).Backwards()))
	assert.Equal(t, []String{"one", "two"}, slices.Collect(ri.Navigator(0).Forwards()))
	assert.Equal(t, []String{"one", "zero"}, slices.Collect(ri.Navigator(2).Backwards()))
}

func TestNavigatorRestarts(t *testing.T) {
	nav := threeItems().Navigator(0)

	for item := range nav.Forwards() {
		assert.Equal(t, String("one"), item)
		break
	}
	assert.Equal(t, []String{"one", "two"}, slices.Collect(nav.Forwards()))
}

func TestNavigatorOutlivesRebuild(t *testing.T) {
	ri := Build(Strings([]string{"b", "a"}), Prefixes)
	nav := ri.Navigator(0)

	merged := ri.MergeDedupReindex(Strings([]string{"c"}))

	assert.Equal(t, String("b"), nav.Current())
	assert.Equal(t, []String{"a"}, slices.Collect(nav.Forwards()))
	assert.Equal(t, String("a"), merged.Navigator(0).Current())
}

func TestNavigatorIgnoresAppend(t *testing.T) {
	ri := threeItems()
	nav := ri.Navigator(1)

	ri.Append("three")

	assert.Equal(t, []String{"two"}, slices.Collect(nav.Forwards()))
	assert.Equal(t, []String{"two", "three"}, slices.Collect(ri.Navigator(1).Forwards()))
}

func TestNavigatorWindow(t *testing.T) {
	ri := Build(Strings([]string{"a", "b", "c", "d", "e"}), Prefixes)

	items, at := ri.Navigator(2).Window(1, 1)
	assert.Equal(t, []String{"b", "c", "d"}, items)
	assert.Equal(t, 1, at)

	items, at = ri.Navigator(0).Window(3, 10)
	assert.Equal(t, []String{"a", "b", "c", "d", "e"}, items)
	assert.Equal(t, 0, at)

	items, at = ri.Navigator(4).Window(-1, 2)
	assert.Equal(t, []String{"e"}, items)
	assert.Equal(t, 0, at)
}

func TestZeroNavigatorPanicsOnCurrent(t *testing.T) {
	var nav Navigator[String]

	assert.Panics(t, func() { nav.Current() })
	assert.Empty(t, slices.Collect(nav.Forwards()))
	assert.Empty(t, slices.Collect(nav.Backwards()))
}
