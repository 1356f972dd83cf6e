package notify

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/settingkit/internal/setting"
)

func TestChangeType_String(t *testing.T) {
	tests := []struct {
		ct   ChangeType
		want string
	}{
		{ChangeValue, "value"},
		{ChangeUI, "ui"},
		{ChangeReset, "reset"},
		{ChangeReload, "reload"},
		{ChangeType(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.ct.String())
	}
}

func TestNotifier_Subscribe(t *testing.T) {
	n := New()
	defer n.Close()

	var received atomic.Int32
	sub := n.Subscribe(func(Change) { received.Add(1) })

	n.NotifyValue("export.autocrop", false, true, "cli")
	assert.EqualValues(t, 1, received.Load())

	sub.Unsubscribe()
	sub.Unsubscribe()
	n.NotifyValue("export.autocrop", true, false, "cli")
	assert.EqualValues(t, 1, received.Load())
}

func TestNotifier_SubscribePath(t *testing.T) {
	n := New()
	defer n.Close()

	var export, other atomic.Int32
	n.SubscribePath("export", func(Change) { export.Add(1) })
	n.SubscribePath("other", func(Change) { other.Add(1) })

	n.NotifyValue("export.file_extension", "png", "jpg", "cli")
	n.NotifyValue("exporter.x", 1, 2, "cli")
	n.NotifyReset("export", "cli")

	assert.EqualValues(t, 2, export.Load(), "prefix match needs a dot boundary")
	assert.Zero(t, other.Load())

	n.NotifyReload("watcher", "success")
	assert.EqualValues(t, 3, export.Load())
	assert.EqualValues(t, 1, other.Load())
}

func TestNotifier_NotifyChanges(t *testing.T) {
	n := New()
	defer n.Close()

	var got []Change
	n.Subscribe(func(c Change) { got = append(got, c) })

	a := setting.NewBool("merge", true)
	b := setting.NewBool("folders", false)
	var changes setting.Changes
	changes.Add(a, setting.AttrSet(setting.AttrValue))
	changes.Add(b, setting.AttrSet(setting.AttrUIEnabled))

	n.NotifyChanges("export", changes, "streamline")

	require.Len(t, got, 2)
	assert.Equal(t, "export.merge", got[0].Path)
	assert.Equal(t, ChangeValue, got[0].Type)
	assert.Equal(t, true, got[0].NewValue)
	assert.Equal(t, "export.folders", got[1].Path)
	assert.Equal(t, ChangeUI, got[1].Type)
	assert.True(t, got[1].Attributes.Has(setting.AttrUIEnabled))
}

func TestNotifier_AfterClose(t *testing.T) {
	n := New()
	var received atomic.Bool
	n.Subscribe(func(Change) { received.Store(true) })

	n.Close()
	n.Close()
	n.NotifyReload("x", "")
	assert.False(t, received.Load())
}

func TestPath(t *testing.T) {
	assert.Equal(t, "export.autocrop", Path("export", "autocrop"))
	assert.Equal(t, "autocrop", Path("", "autocrop"))
}

func TestIsParentPath(t *testing.T) {
	tests := []struct {
		parent, child string
		want          bool
	}{
		{"export", "export.autocrop", true},
		{"export", "export", false},
		{"export", "exporter.autocrop", false},
		{"", "export", true},
		{"", "", false},
		{"export.autocrop", "export", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isParentPath(tt.parent, tt.child), "%q/%q", tt.parent, tt.child)
	}
}

func TestNotifier_ConcurrentAccess(t *testing.T) {
	n := New()
	defer n.Close()

	var count atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := n.SubscribePath("export", func(Change) { count.Add(1) })
			sub.Unsubscribe()
		}()
		go func() {
			defer wg.Done()
			n.NotifyValue("export.a", 0, 1, "test")
		}()
	}
	wg.Wait()
}
