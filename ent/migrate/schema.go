// Code generated by ent, DO NOT EDIT.

package migrate

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// GenerationEventsColumns holds the columns for the "generation_events" table.
	GenerationEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "topic", Type: field.TypeString},
		{Name: "language", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "endpoint", Type: field.TypeString, Default: ""},
		{Name: "status_code", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_kind", Type: field.TypeString, Default: ""},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// GenerationEventsTable holds the schema information for the "generation_events" table.
	GenerationEventsTable = &schema.Table{
		Name:       "generation_events",
		Columns:    GenerationEventsColumns,
		PrimaryKey: []*schema.Column{GenerationEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "generationevent_sequence",
				Unique:  false,
				Columns: []*schema.Column{GenerationEventsColumns[1]},
			},
			{
				Name:    "generationevent_session_id_timestamp",
				Unique:  false,
				Columns: []*schema.Column{GenerationEventsColumns[3], GenerationEventsColumns[2]},
			},
			{
				Name:    "generationevent_topic",
				Unique:  false,
				Columns: []*schema.Column{GenerationEventsColumns[4]},
			},
			{
				Name:    "generationevent_success",
				Unique:  false,
				Columns: []*schema.Column{GenerationEventsColumns[10]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		GenerationEventsTable,
	}
)

func init() {
}
