package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// GenerationEvent records every call to the problem generator for
// debugging and usage stats.
type GenerationEvent struct {
	ent.Schema
}

func (GenerationEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (GenerationEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("topic").
			Comment("Requested topic"),
		field.String("language").
			Comment("Requested programming language"),
		field.String("difficulty").
			Comment("beginner, intermediate or advanced"),
		field.String("endpoint").
			Default("").
			Comment("URL the request was sent to"),
		field.Int("status_code").
			Default(0).
			Comment("HTTP status, 0 when no response was received"),
		field.Int64("latency_ms").
			Default(0).
			Comment("Wall-clock time for the request"),
		field.Bool("success").
			Comment("Whether the transport call returned a 2xx body"),
		field.String("error_kind").
			Default("").
			Comment("transport or server when the call failed"),
		field.String("error_message").
			Default("").
			Comment("Error message if failed"),
		field.Text("request_body").
			Default("").
			Comment("JSON request body"),
		field.Text("response_body").
			Default("").
			Comment("Raw response body, if any"),
	}
}

func (GenerationEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("topic"),
		index.Fields("success"),
	}
}
