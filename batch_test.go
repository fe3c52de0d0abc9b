package bend

import (
	"testing"
	"time"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineObject(name string, n int) *Object {
	origin := make([]math32.Vector3, n)
	for i := range origin {
		origin[i] = math32.Vec3(float32(i%7)*0.1, float32(i%5)*0.1, float32(i)*10/float32(n))
	}
	return &Object{
		Name:       name,
		Containers: []*Container{{Name: name, Origin: origin}},
	}
}

func TestBatchOverBudget(t *testing.T) {
	sp := curvySpline()
	obj := lineObject("long", 26000)
	b := NewBatch(sp, DefaultSettings())

	full, err := b.Add(obj)
	require.NoError(t, err)
	assert.True(t, full)
	assert.Equal(t, 26000, b.Pending())

	calls := 0
	var got []math32.Vector3
	require.NoError(t, b.Drain(func(o *Object, c *Container, deformed []math32.Vector3) {
		calls++
		assert.Same(t, obj, o)
		assert.Same(t, obj.Containers[0], c)
		got = deformed
	}))
	assert.Equal(t, 2, b.Jobs())
	assert.Equal(t, 26000, b.VertexCount())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, b.Pending())

	pl := obj.Place(sp.Snapshot())
	require.Len(t, got, 26000)
	for _, i := range []int{0, 1, 24999, 25000, 25999} {
		assert.Equal(t, pl.Deform(obj.Containers[0].Origin[i]), got[i], "vertex %d", i)
	}
}

func TestBatchStartComplete(t *testing.T) {
	sp := curvySpline()
	st := DefaultSettings()
	st.VertexBudget = 1000
	st.Workers = 3
	b := NewBatch(sp, st)

	small, large := lineObject("small", 400), lineObject("large", 1500)
	full, err := b.Add(small)
	require.NoError(t, err)
	assert.False(t, full)
	full, err = b.Add(large)
	require.NoError(t, err)
	assert.True(t, full)
	assert.True(t, b.IsCompleted())

	var done []string
	record := func(o *Object, c *Container, deformed []math32.Vector3) {
		assert.Len(t, deformed, len(c.Origin))
		done = append(done, c.Name)
	}

	require.NoError(t, b.Start())
	_, err = b.Add(small)
	assert.ErrorIs(t, err, ErrBatchRunning)
	assert.ErrorIs(t, b.Start(), ErrBatchRunning)
	assert.Eventually(t, b.IsCompleted, time.Second, time.Millisecond)
	b.Complete(record)
	assert.Equal(t, []string{"small"}, done)
	assert.Equal(t, 900, b.Pending())

	require.NoError(t, b.Start())
	b.Complete(record)
	assert.Equal(t, []string{"small", "large"}, done)
	assert.Equal(t, 0, b.Pending())
	assert.Equal(t, 2, b.Jobs())
	assert.Equal(t, 1900, b.VertexCount())
	assert.Error(t, b.Start())
}

func TestBatchCarryOver(t *testing.T) {
	sp := curvySpline()
	st := DefaultSettings()
	st.VertexBudget = 1000
	b := NewBatch(sp, st)
	_, err := b.Add(lineObject("a", 1500))
	require.NoError(t, err)

	var done []string
	record := func(o *Object, c *Container, deformed []math32.Vector3) { done = append(done, c.Name) }
	require.NoError(t, b.Start())
	b.Complete(record)
	assert.Empty(t, done)
	require.NoError(t, b.Start())
	b.Complete(record)
	assert.Equal(t, []string{"a"}, done)
	assert.Equal(t, 2, b.Jobs())
}

func TestBatchSkipsUnreadable(t *testing.T) {
	b := NewBatch(curvySpline(), DefaultSettings())
	obj := lineObject("locked", 10)
	obj.Containers[0].Unreadable = true
	full, err := b.Add(obj)
	require.NoError(t, err)
	assert.False(t, full)
	assert.Equal(t, 0, b.Pending())
	require.NoError(t, b.Drain(nil))
	assert.Equal(t, 0, b.Jobs())
}

func TestBatchDeterministic(t *testing.T) {
	sp := curvySpline(WithNormalType(Dynamic))
	run := func() []math32.Vector3 {
		st := DefaultSettings()
		st.VertexBudget = 3000
		b := NewBatch(sp, st)
		obj := lineObject("obj", 10000)
		_, err := b.Add(obj)
		require.NoError(t, err)
		var out []math32.Vector3
		require.NoError(t, b.Drain(func(_ *Object, _ *Container, deformed []math32.Vector3) {
			out = deformed
		}))
		return out
	}
	first := run()
	for range 3 {
		assert.Equal(t, first, run())
	}
}

func TestBatchSnapshotIsolation(t *testing.T) {
	sp := curvySpline()
	obj := lineObject("obj", 5000)
	want := make([]math32.Vector3, 5000)
	pl := obj.Place(sp.Snapshot())
	for i, v := range obj.Containers[0].Origin {
		want[i] = pl.Deform(v)
	}

	b := NewBatch(sp, DefaultSettings())
	_, err := b.Add(obj)
	require.NoError(t, err)
	require.NoError(t, b.Start())
	require.NoError(t, sp.SetAnchor(2, V3(20, 20, 20)))
	var got []math32.Vector3
	b.Complete(func(_ *Object, _ *Container, deformed []math32.Vector3) { got = deformed })
	assert.Equal(t, want, got)
}

func BenchmarkBatch(b *testing.B) {
	sp := curvySpline(WithNormalType(Dynamic))
	obj := lineObject("obj", 100000)
	for b.Loop() {
		batch := NewBatch(sp, DefaultSettings())
		batch.Add(obj)
		batch.Drain(nil)
	}
}
