/*
Package relib implements the in-memory relational store at the heart of
driftstore: schema-validated tables with primary keys, unique constraints and
foreign keys, grouped into a TableStore that can be serialized to and loaded
from a content-addressed byte-blob backend.

# Architecture

	┌───────────────────────── TABLESTORE ─────────────────────────┐
	│                                                                │
	│  ┌──────────────┐   ┌──────────────┐   ┌──────────────┐      │
	│  │  Table "tier"│   │Table "tenant"│   │ Table "..." │ ...   │
	│  │  pk: id      │◄──│ fk: tier_id  │   │              │      │
	│  └──────────────┘   └──────────────┘   └──────────────┘      │
	│         ▲ declaration order = FK-safe topological order       │
	│         │                                                     │
	│  ┌──────┴───────────────────────────────────────────────┐    │
	│  │           meta (reserved single-row table)             │    │
	│  │   created_on, last_modified, version, checksum,        │    │
	│  │   tables: {name: {md5, last_modified}}, origin         │    │
	│  └─────────────────────────────────────────────────────────┘  │
	└────────────────────────────────────────────────────────────────┘

Rows are plain JSON-shaped values (map[string]any). Every row lives under a
canonical primary key string, computed by joining the stringified primary-key
field values with ".". Tables enforce constraints in a fixed order (see
Table.Add) so that error messages are stable across runs.

TableStore.SaveToBackend and LoadFromBackend drive the serialization protocol
described in the package-level checksum and definition helpers; the byte
encoding is always 4-space-indented, key-sorted JSON with a trailing newline,
because the checksum scheme depends on byte-for-byte stability.
*/
package relib
