package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyMap_PreservesInsertionOrder(t *testing.T) {
	m := NewPropertyMap()
	m.Set("hibernate.dialect", "H2Dialect")
	m.Set("hibernate.connection.url", "jdbc:h2:mem:db1")
	m.Set("hibernate.connection.username", "sa")

	// Overwriting keeps the original position
	prev, existed := m.Set("hibernate.dialect", "H2Dialect2")
	assert.True(t, existed)
	assert.Equal(t, "H2Dialect", prev)

	assert.Equal(t, []string{
		"hibernate.dialect",
		"hibernate.connection.url",
		"hibernate.connection.username",
	}, m.Keys())

	v, ok := m.Get("hibernate.dialect")
	require.True(t, ok)
	assert.Equal(t, "H2Dialect2", v)
}

func TestPropertyMap_NilReceiver(t *testing.T) {
	var m *PropertyMap

	assert.Equal(t, 0, m.Len())
	assert.Nil(t, m.Keys())
	_, ok := m.Get("x")
	assert.False(t, ok)
	m.Each(func(string, string) { t.Fatal("must not be called") })
}

func TestPropertyMap_ReplaceIsIdempotent(t *testing.T) {
	src := PropertyMapOf("dialect", "MySQLDialect", "url", "jdbc:mysql://localhost/test")
	m := PropertyMapOf("stale", "value")

	m.Replace(src)
	first := m.Clone()
	m.Replace(src)

	assert.Equal(t, first, m)
	assert.Equal(t, src.Keys(), m.Keys())
	_, ok := m.Get("stale")
	assert.False(t, ok)
}

func TestPropertyMap_CloneIsIndependent(t *testing.T) {
	m := PropertyMapOf("a", "1")
	c := m.Clone()
	c.Set("a", "2")
	c.Set("b", "3")

	v, _ := m.Get("a")
	assert.Equal(t, "1", v)
	assert.Equal(t, 1, m.Len())
}

func TestPropertyMapOf_OddArgsPanics(t *testing.T) {
	assert.Panics(t, func() { PropertyMapOf("only-key") })
}
