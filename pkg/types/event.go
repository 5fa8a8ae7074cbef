package types

// EditEvent describes a committed cell edit. The new value is already in the
// sheet when the event is delivered. OldValue carries the pre-edit value when
// the sender knows it; nil means unknown.
type EditEvent struct {
	SourceID string  `json:"source_id"`
	Sheet    string  `json:"sheet"`
	Row      int     `json:"row"`
	Column   int     `json:"column"`
	Value    string  `json:"value"`
	OldValue *string `json:"old_value,omitempty"`
	Actor    string  `json:"actor,omitempty"`
}

// FormSubmitEvent signals a new row in the Form Responses sheet. It carries
// no payload; handlers re-read the last form row.
type FormSubmitEvent struct {
	SourceID string `json:"source_id"`
}
