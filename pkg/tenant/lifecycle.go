/*
Package tenant walks the conventional tier/deployable/tenant/tenant_product
table graph and drives a tenant through its provisioning lifecycle,
invoking caller-supplied callbacks at each transition. It never implements
a concrete provisioner itself — "resource-provisioning callbacks sit on
top of" the relational core, and this package is the boundary between the
two.
*/
package tenant

import (
	"context"
	"fmt"

	"github.com/driftstore/driftstore/pkg/relib"
)

// Conventional table names this package expects in the store it's handed.
const (
	TableTier           = "tier"
	TableDeployable     = "deployable"
	TableTenant         = "tenant"
	TableTenantProduct  = "tenant_product"
)

// State is one step in a tenant's provisioning lifecycle.
type State string

const (
	StateNew              State = "new"
	StateProvisioning      State = "provisioning"
	StateActive           State = "active"
	StateDecommissioning   State = "decommissioning"
	StateDecommissioned   State = "decommissioned"
)

// transitions lists the single legal next state for each state; the walk
// always moves forward one step at a time so callers observe every
// intermediate callback.
var transitions = map[State]State{
	StateNew:            StateProvisioning,
	StateProvisioning:    StateActive,
	StateActive:         StateDecommissioning,
	StateDecommissioning: StateDecommissioned,
}

// TenantNotConfigured indicates the requested tenant id has no row in the
// conventional tenant table.
type TenantNotConfigured struct {
	TenantID string
}

func (e *TenantNotConfigured) Error() string {
	return fmt.Sprintf("tenant: tenant %q is not configured", e.TenantID)
}

// Callback is invoked once per state transition, receiving the tenant row
// being transitioned and the deployable it's being transitioned for. The
// core never implements this; it is supplied by the caller's
// provisioning plugin.
type Callback func(ctx context.Context, tenant relib.Row, deployable relib.Row) error

// GetTenant looks a tenant row up by its primary key, returning
// TenantNotConfigured rather than relib's generic "no such row" when
// absent.
func GetTenant(store *relib.TableStore, tenantID string) (relib.Row, error) {
	tenants, err := store.GetTable(TableTenant)
	if err != nil {
		return nil, fmt.Errorf("tenant: %w", err)
	}
	row, ok := tenants.GetByPK(tenantID)
	if !ok {
		return nil, &TenantNotConfigured{TenantID: tenantID}
	}
	return row, nil
}

// ApplicableDeployables returns every deployable row whose tier_id field
// equals tenant's tier_id. It is a plain field match; foreign keys declared
// between deployable and tier are not consulted.
func ApplicableDeployables(store *relib.TableStore, tenant relib.Row) ([]relib.Row, error) {
	deployables, err := store.GetTable(TableDeployable)
	if err != nil {
		return nil, fmt.Errorf("tenant: %w", err)
	}
	tierID, ok := tenant["tier_id"]
	if !ok {
		return nil, fmt.Errorf("tenant: tenant row has no tier_id field")
	}
	return deployables.Find(map[string]any{"tier_id": tierID}), nil
}

// TierBackendURLs reads a tenant's tier row and returns the tier's origin
// and cache backend URLs, resolved across the tenant->tier foreign key.
func TierBackendURLs(store *relib.TableStore, tenant relib.Row) (originURL, cacheURL string, err error) {
	tenants, err := store.GetTable(TableTenant)
	if err != nil {
		return "", "", fmt.Errorf("tenant: %w", err)
	}
	tiers, err := store.GetTable(TableTier)
	if err != nil {
		return "", "", fmt.Errorf("tenant: %w", err)
	}
	tierRow, ok, err := tenants.GetForeignRow(tenant, tiers, nil)
	if err != nil {
		return "", "", fmt.Errorf("tenant: %w", err)
	}
	if !ok {
		return "", "", fmt.Errorf("tenant: tenant has no resolvable tier")
	}
	origin, _ := tierRow["origin"].(string)
	cache, _ := tierRow["cache_url"].(string)
	return origin, cache, nil
}

// Advance drives tenant one step forward in its lifecycle, firing cb once
// per applicable deployable before updating the tenant row's state field
// in store. It returns the new state. Calling Advance on a tenant already
// in StateDecommissioned is a no-op that returns StateDecommissioned.
func Advance(ctx context.Context, store *relib.TableStore, tenantID string, cb Callback) (State, error) {
	tenantRow, err := GetTenant(store, tenantID)
	if err != nil {
		return "", err
	}
	current := StateNew
	if raw, ok := tenantRow["state"]; ok {
		if s, ok := raw.(string); ok && s != "" {
			current = State(s)
		}
	}
	next, ok := transitions[current]
	if !ok {
		return current, nil
	}

	deployables, err := ApplicableDeployables(store, tenantRow)
	if err != nil {
		return "", err
	}
	for _, d := range deployables {
		if err := cb(ctx, tenantRow, d); err != nil {
			return "", fmt.Errorf("tenant: provisioning callback failed for deployable %v: %w", d["id"], err)
		}
	}

	tenants, err := store.GetTable(TableTenant)
	if err != nil {
		return "", fmt.Errorf("tenant: %w", err)
	}
	updated := make(relib.Row, len(tenantRow)+1)
	for k, v := range tenantRow {
		updated[k] = v
	}
	updated["state"] = string(next)
	tenants.Remove(tenantRow)
	if _, err := tenants.Add(updated, false); err != nil {
		return "", fmt.Errorf("tenant: update tenant state: %w", err)
	}
	return next, nil
}

// RunUntil repeatedly calls Advance until tenant reaches target or
// StateDecommissioned, whichever comes first.
func RunUntil(ctx context.Context, store *relib.TableStore, tenantID string, target State, cb Callback) (State, error) {
	for {
		state, err := Advance(ctx, store, tenantID, cb)
		if err != nil {
			return "", err
		}
		if state == target || state == StateDecommissioned {
			return state, nil
		}
	}
}
