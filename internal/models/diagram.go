package models

import (
	"time"

	"github.com/google/uuid"
)

// DatabaseType tags the SQL dialect a diagram targets.
type DatabaseType string

const (
	DatabaseTypeGeneric    DatabaseType = "generic"
	DatabaseTypePostgreSQL DatabaseType = "postgresql"
	DatabaseTypeMySQL      DatabaseType = "mysql"
	DatabaseTypeSQLite     DatabaseType = "sqlite"
	DatabaseTypeSQLServer  DatabaseType = "sql_server"
	DatabaseTypeMariaDB    DatabaseType = "mariadb"
)

// Diagram is the root aggregate: one diagram with its tables and
// relationships. Tables own their fields and indexes; relationships
// reference tables and fields by id only.
type Diagram struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	DatabaseType  DatabaseType   `json:"database_type"`
	Tables        []Table        `json:"tables"`
	Relationships []Relationship `json:"relationships"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (d *Diagram) Prepare() {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.DatabaseType == "" {
		d.DatabaseType = DatabaseTypeGeneric
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = now
	}
}

// Clone returns a deep copy so callers can never alias the slices held
// by the store.
func (d Diagram) Clone() Diagram {
	cp := d
	cp.Tables = CloneTables(d.Tables)
	cp.Relationships = CloneRelationships(d.Relationships)
	return cp
}

// DiagramPatch is a partial update of diagram metadata. Nil fields are
// left untouched; present fields win.
type DiagramPatch struct {
	ID           *string       `json:"id,omitempty"`
	Name         *string       `json:"name,omitempty"`
	DatabaseType *DatabaseType `json:"database_type,omitempty"`
}

func (p DiagramPatch) ApplyTo(d *Diagram) {
	if p.ID != nil {
		d.ID = *p.ID
	}
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.DatabaseType != nil {
		d.DatabaseType = *p.DatabaseType
	}
}
