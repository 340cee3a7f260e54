// Code generated by ent, DO NOT EDIT.

package ent

import (
	"time"

	"github.com/abhisek/codedrill/ent/generationevent"
	"github.com/abhisek/codedrill/ent/schema"
)

// The init function reads all schema descriptors with runtime code
// (default values, validators, hooks and policies) and stitches it
// to their package variables.
func init() {
	generationeventMixin := schema.GenerationEvent{}.Mixin()
	generationeventMixinFields0 := generationeventMixin[0].Fields()
	_ = generationeventMixinFields0
	generationeventFields := schema.GenerationEvent{}.Fields()
	_ = generationeventFields
	// generationeventDescTimestamp is the schema descriptor for timestamp field.
	generationeventDescTimestamp := generationeventMixinFields0[1].Descriptor()
	// generationevent.DefaultTimestamp holds the default value on creation for the timestamp field.
	generationevent.DefaultTimestamp = generationeventDescTimestamp.Default.(func() time.Time)
	// generationeventDescSessionID is the schema descriptor for session_id field.
	generationeventDescSessionID := generationeventMixinFields0[2].Descriptor()
	// generationevent.DefaultSessionID holds the default value on creation for the session_id field.
	generationevent.DefaultSessionID = generationeventDescSessionID.Default.(string)
	// generationeventDescEndpoint is the schema descriptor for endpoint field.
	generationeventDescEndpoint := generationeventFields[3].Descriptor()
	// generationevent.DefaultEndpoint holds the default value on creation for the endpoint field.
	generationevent.DefaultEndpoint = generationeventDescEndpoint.Default.(string)
	// generationeventDescStatusCode is the schema descriptor for status_code field.
	generationeventDescStatusCode := generationeventFields[4].Descriptor()
	// generationevent.DefaultStatusCode holds the default value on creation for the status_code field.
	generationevent.DefaultStatusCode = generationeventDescStatusCode.Default.(int)
	// generationeventDescLatencyMs is the schema descriptor for latency_ms field.
	generationeventDescLatencyMs := generationeventFields[5].Descriptor()
	// generationevent.DefaultLatencyMs holds the default value on creation for the latency_ms field.
	generationevent.DefaultLatencyMs = generationeventDescLatencyMs.Default.(int64)
	// generationeventDescErrorKind is the schema descriptor for error_kind field.
	generationeventDescErrorKind := generationeventFields[7].Descriptor()
	// generationevent.DefaultErrorKind holds the default value on creation for the error_kind field.
	generationevent.DefaultErrorKind = generationeventDescErrorKind.Default.(string)
	// generationeventDescErrorMessage is the schema descriptor for error_message field.
	generationeventDescErrorMessage := generationeventFields[8].Descriptor()
	// generationevent.DefaultErrorMessage holds the default value on creation for the error_message field.
	generationevent.DefaultErrorMessage = generationeventDescErrorMessage.Default.(string)
	// generationeventDescRequestBody is the schema descriptor for request_body field.
	generationeventDescRequestBody := generationeventFields[9].Descriptor()
	// generationevent.DefaultRequestBody holds the default value on creation for the request_body field.
	generationevent.DefaultRequestBody = generationeventDescRequestBody.Default.(string)
	// generationeventDescResponseBody is the schema descriptor for response_body field.
	generationeventDescResponseBody := generationeventFields[10].Descriptor()
	// generationevent.DefaultResponseBody holds the default value on creation for the response_body field.
	generationevent.DefaultResponseBody = generationeventDescResponseBody.Default.(string)
}
