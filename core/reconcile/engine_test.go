package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(fields []string, values ...string) Record {
	return NewRecord(fields, values)
}

func TestMatchPool_WidthFilter(t *testing.T) {
	fields := []string{"id", "phone"}
	children := []Record{
		record(fields, "00-1234", "a"),
		record(fields, "1234", "b"),
		record(fields, "", "c"),
		record(fields, "123 456", "d"),
	}

	pool, rejected, missing := newMatchPool(children, "id", 6)
	assert.Equal(t, 2, pool.Len())
	assert.Equal(t, []string{"1234"}, rejected)
	assert.Equal(t, 1, missing)

	mixedPool, mixedRejected, mixedMissing := newMatchPool(children, "id", Mixed)
	assert.Equal(t, 3, mixedPool.Len())
	assert.Empty(t, mixedRejected)
	assert.Equal(t, 1, mixedMissing)
}

func TestMatchPool_TakeFirstInOrder(t *testing.T) {
	fields := []string{"id", "phone"}
	pool, _, _ := newMatchPool([]Record{
		record(fields, "000001", "first"),
		record(fields, "000002", "other"),
		record(fields, "0000-01", "second"),
	}, "id", 6)

	c, ok := pool.Take("000001")
	require.True(t, ok)
	assert.Equal(t, "first", c.Get("phone"))

	c, ok = pool.Take("000001")
	require.True(t, ok)
	assert.Equal(t, "second", c.Get("phone"))

	_, ok = pool.Take("000001")
	assert.False(t, ok)

	require.Len(t, pool.Remaining(), 1)
	assert.Equal(t, "other", pool.Remaining()[0].Get("phone"))
}

func TestMergeChild(t *testing.T) {
	masterFields := []string{"id", "name"}
	childFields := []string{"id", "phone"}

	t.Run("WritesIntoEmptySlot", func(t *testing.T) {
		schema := NewSchema("id", "name", "phone")
		m := record(masterFields, "000001", "Alice")
		out := outputFor(m)

		field := mergeChild(out, m, record(childFields, "1", "555"), schema, "id")
		assert.Empty(t, field)
		assert.Equal(t, "555", out.Get("phone"))
		assert.Equal(t, "000001", out.Get("id"), "join key keeps the master value")
	})

	t.Run("SecondChildNeedsNewField", func(t *testing.T) {
		schema := NewSchema("id", "name", "phone")
		m := record(masterFields, "000001", "Alice")
		out := outputFor(m)

		require.Empty(t, mergeChild(out, m, record(childFields, "000001", "111"), schema, "id"))
		field := mergeChild(out, m, record(childFields, "000001", "222"), schema, "id")
		assert.Equal(t, "phone__1", field)
		assert.Equal(t, "111", out.Get("phone"), "existing value is never clobbered")
	})

	t.Run("SecondChildUsesEmptySuffixedSlot", func(t *testing.T) {
		schema := NewSchema("id", "name", "phone", "phone__1", "phone__2")
		m := record(masterFields, "000001", "Alice")
		out := outputFor(m)

		require.Empty(t, mergeChild(out, m, record(childFields, "000001", "111"), schema, "id"))
		require.Empty(t, mergeChild(out, m, record(childFields, "000001", "222"), schema, "id"))
		require.Empty(t, mergeChild(out, m, record(childFields, "000001", "333"), schema, "id"))
		assert.Equal(t, "111", out.Get("phone"))
		assert.Equal(t, "222", out.Get("phone__1"))
		assert.Equal(t, "333", out.Get("phone__2"))
	})

	t.Run("MasterOwnedNameIsSkipped", func(t *testing.T) {
		fields := []string{"id", "phone", "phone__1"}
		schema := NewSchema("id", "phone", "phone__1", "phone__2")
		m := record(fields, "000001", "", "")
		out := outputFor(m)

		// A child field that still carries a master name is pushed past every master column.
		require.Empty(t, mergeChild(out, m, record([]string{"id", "phone"}, "000001", "555"), schema, "id"))
		assert.Equal(t, "", out.Get("phone"))
		assert.Equal(t, "", out.Get("phone__1"))
		assert.Equal(t, "555", out.Get("phone__2"))
	})

	t.Run("ChildIDKeepsFirstForm", func(t *testing.T) {
		schema := NewSchema("APN", "name", "parcel", "phone", "phone__1")
		m := record([]string{"APN", "name"}, "1234", "Alice")
		out := outputFor(m)
		fields := []string{"parcel", "phone"}

		require.Empty(t, mergeChild(out, m, record(fields, "12-34", "111"), schema, "parcel"))
		require.Empty(t, mergeChild(out, m, record(fields, "1234", "222"), schema, "parcel"))
		assert.Equal(t, "12-34", out.Get("parcel"))
		assert.Equal(t, "111", out.Get("phone"))
		assert.Equal(t, "222", out.Get("phone__1"))
	})

	t.Run("EmptyValuesTakeNoSlot", func(t *testing.T) {
		schema := NewSchema("id", "name", "phone")
		m := record(masterFields, "000001", "Alice")
		out := outputFor(m)

		require.Empty(t, mergeChild(out, m, record(childFields, "000001", "111"), schema, "id"))
		assert.Empty(t, mergeChild(out, m, record(childFields, "000001", ""), schema, "id"))
		assert.Equal(t, "111", out.Get("phone"))
	})
}

func TestEmitOrphans(t *testing.T) {
	schema := NewSchema("id", "name", "phone")
	rows := emitOrphans([]Record{record([]string{"id", "phone"}, "999999", "555")}, schema)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"999999", "", "555"}, rows[0].Row(schema))
}

func outputFor(m Record) OutputRecord {
	out := newOutputRecord()
	for _, name := range m.Fields() {
		out.values[name] = m.Get(name)
	}
	return out
}
