package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SnapshotFile holds snapshot content by (session_id, path). Mirrors the
// table the SQL store manages; kept as codegen input for the ent-backed
// store variant.
type SnapshotFile struct {
	ent.Schema
}

func (SnapshotFile) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id").
			Unique().
			Immutable(),
		field.String("session_id").
			NotEmpty(),
		field.String("path").
			NotEmpty(),
		field.Bytes("content").
			Default([]byte{}),
		field.Int64("size").
			NonNegative(),
		field.Time("created_at").
			Default(time.Now),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

func (SnapshotFile) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "path").Unique(),
		index.Fields("session_id"),
	}
}
