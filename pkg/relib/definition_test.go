package relib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefinition_InitFromDefinition_RoundTrip(t *testing.T) {
	store := buildTenantStore(t)
	doc, err := store.GetDefinition()
	require.NoError(t, err)

	rebuilt := NewTableStore()
	require.NoError(t, rebuilt.InitFromDefinition(doc))

	tiers, err := rebuilt.GetTable("tier")
	require.NoError(t, err)
	assert.Len(t, tiers.PrimaryKeyFields(), 1)

	tenants, err := rebuilt.GetTable("tenant")
	require.NoError(t, err)
	foundFK := false
	for _, c := range tenants.Constraints() {
		if c.Kind == ForeignKeyConstraint && c.TargetTable == "tier" {
			foundFK = true
		}
	}
	assert.True(t, foundFK, "tenant->tier foreign key must survive the round trip")

	// The rebuilt store carries the schema/constraints but not the rows.
	assert.Equal(t, 0, tenants.Count())
}

func TestInitFromYAMLDefinition(t *testing.T) {
	yamlDoc := []byte(`
tables:
  - name: tier
    primary_key: [id]
    serialization:
      mode: whole_table
  - name: tenant
    primary_key: [id]
    constraints:
      - kind: foreign_key
        fields: [tier_id]
        target_table: tier
        target_fields: [id]
    serialization:
      mode: whole_table
`)

	store := NewTableStore()
	require.NoError(t, store.InitFromYAMLDefinition(yamlDoc))

	tier, err := store.GetTable("tier")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, tier.PrimaryKeyFields())

	tenant, err := store.GetTable("tenant")
	require.NoError(t, err)
	_, err = tenant.Add(Row{"id": "acme", "tier_id": "gold"}, false)
	require.Error(t, err, "foreign key to a nonexistent tier row must be rejected")

	_, err = tier.Add(Row{"id": "gold"}, false)
	require.NoError(t, err)
	_, err = tenant.Add(Row{"id": "acme", "tier_id": "gold"}, false)
	require.NoError(t, err)
}

func TestInitFromYAMLDefinition_InvalidYAMLFails(t *testing.T) {
	store := NewTableStore()
	err := store.InitFromYAMLDefinition([]byte("tables: [this is not a table list"))
	require.Error(t, err)
}
