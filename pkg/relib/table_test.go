package relib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableAdd_PrimaryKeyDuplication(t *testing.T) {
	store := NewTableStore()
	tiers, err := store.AddTable("tiers", false)
	require.NoError(t, err)
	require.NoError(t, tiers.AddPrimaryKey("id"))

	_, err = tiers.Add(Row{"id": "gold"}, false)
	require.NoError(t, err)

	_, err = tiers.Add(Row{"id": "gold"}, false)
	require.Error(t, err)
	var cerr *ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, string(PrimaryKeyConstraint), cerr.Kind)
	assert.Contains(t, cerr.Error(), "Primary key violation")
}

func TestTableAdd_PrimaryKeyFormatViolation(t *testing.T) {
	store := NewTableStore()
	tiers, err := store.AddTable("tiers", false)
	require.NoError(t, err)
	require.NoError(t, tiers.AddPrimaryKey("id"))

	_, err = tiers.Add(Row{"id": "has a space"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Primary key format violation")
}

func TestTableAdd_UniqueConstraint(t *testing.T) {
	store := NewTableStore()
	tenants, err := store.AddTable("tenant", false)
	require.NoError(t, err)
	require.NoError(t, tenants.AddPrimaryKey("id"))
	require.NoError(t, tenants.AddUnique("slug"))

	_, err = tenants.Add(Row{"id": "t1", "slug": "acme"}, false)
	require.NoError(t, err)

	_, err = tenants.Add(Row{"id": "t2", "slug": "acme"}, false)
	require.Error(t, err)
	var cerr *ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, string(UniqueConstraint), cerr.Kind)
}

func TestTableAdd_ForeignKeyResolution(t *testing.T) {
	store := NewTableStore()
	tiers, err := store.AddTable("tier", false)
	require.NoError(t, err)
	require.NoError(t, tiers.AddPrimaryKey("id"))
	_, err = tiers.Add(Row{"id": "gold"}, false)
	require.NoError(t, err)

	tenants, err := store.AddTable("tenant", false)
	require.NoError(t, err)
	require.NoError(t, tenants.AddPrimaryKey("id"))
	require.NoError(t, tenants.AddForeignKey([]string{"tier_id"}, "tier", []string{"id"}))

	_, err = tenants.Add(Row{"id": "t1", "tier_id": "silver"}, false)
	require.Error(t, err)
	var cerr *ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, string(ForeignKeyConstraint), cerr.Kind)

	_, err = tenants.Add(Row{"id": "t1", "tier_id": "gold"}, false)
	require.NoError(t, err)
}

func TestTableAdd_SelfReferenceSucceedsWithoutPriorLookup(t *testing.T) {
	store := NewTableStore()
	deployables, err := store.AddTable("deployable", false)
	require.NoError(t, err)
	require.NoError(t, deployables.AddPrimaryKey("id"))
	require.NoError(t, deployables.AddForeignKey([]string{"parent_id"}, "deployable", []string{"id"}))

	row, err := deployables.Add(Row{"id": "root", "parent_id": "root"}, false)
	require.NoError(t, err)
	assert.Equal(t, "root", row["parent_id"])
}

func TestTableAdd_ConstraintCheckOrdering(t *testing.T) {
	// Missing PK field must be reported before a unique violation that
	// would otherwise also apply, since PK presence is checked first.
	store := NewTableStore()
	tenants, err := store.AddTable("tenant", false)
	require.NoError(t, err)
	require.NoError(t, tenants.AddPrimaryKey("id"))
	require.NoError(t, tenants.AddUnique("slug"))
	_, err = tenants.Add(Row{"id": "t1", "slug": "acme"}, false)
	require.NoError(t, err)

	_, err = tenants.Add(Row{"slug": "acme"}, false)
	require.Error(t, err)
	var cerr *ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, string(PrimaryKeyConstraint), cerr.Kind)
}

func TestTableAdd_DynamicDefaults(t *testing.T) {
	store := NewTableStore()
	events, err := store.AddTable("event", false)
	require.NoError(t, err)
	require.NoError(t, events.AddPrimaryKey("seq"))
	events.SetDefaults(map[string]any{
		"seq":         "@@identity",
		"recorded_at": "@@utcnow",
	})

	row1, err := events.Add(Row{}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, row1["seq"])
	assert.NotEmpty(t, row1["recorded_at"])

	row2, err := events.Add(Row{}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, row2["seq"])
}

func TestTableReadOnly_RejectsMutation(t *testing.T) {
	store := NewTableStore()
	tiers, err := store.AddTable("tier", false)
	require.NoError(t, err)
	require.NoError(t, tiers.AddPrimaryKey("id"))

	tiers.SetReadOnly(true)
	_, err = tiers.Add(Row{"id": "gold"}, false)
	require.Error(t, err)
	var terr *TableError
	require.ErrorAs(t, err, &terr)

	tiers.SetReadOnly(false)
	_, err = tiers.Add(Row{"id": "gold"}, false)
	require.NoError(t, err)

	tiers.SetReadOnly(true)
	tiers.Remove(Row{"id": "gold"})
	assert.Equal(t, 1, tiers.Count())

	tiers.Clear()
	assert.Equal(t, 1, tiers.Count())
}

func TestTableFind(t *testing.T) {
	store := NewTableStore()
	tenants, err := store.AddTable("tenant", false)
	require.NoError(t, err)
	require.NoError(t, tenants.AddPrimaryKey("id"))

	_, _ = tenants.Add(Row{"id": "t1", "tier_id": "gold"}, false)
	_, _ = tenants.Add(Row{"id": "t2", "tier_id": "silver"}, false)
	_, _ = tenants.Add(Row{"id": "t3", "tier_id": "gold"}, false)

	rows := tenants.Find(map[string]any{"tier_id": "gold"})
	assert.Len(t, rows, 2)
}
