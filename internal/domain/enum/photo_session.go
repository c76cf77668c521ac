package enum

// EventType is the kind of event a photo session covers
type EventType string

const (
	EventTypeWedding  EventType = "wedding"
	EventTypePortrait EventType = "portrait"
	EventTypeProduct  EventType = "product"
	EventTypeEvent    EventType = "event"
	EventTypeOther    EventType = "other"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventTypeWedding, EventTypePortrait, EventTypeProduct, EventTypeEvent, EventTypeOther:
		return true
	}
	return false
}

// EditingStatus tracks post-production of a photo session
type EditingStatus string

const (
	EditingStatusNotStarted EditingStatus = "not_started"
	EditingStatusInShooting EditingStatus = "in_shooting"
	EditingStatusInEditing  EditingStatus = "in_editing"
	EditingStatusInPrinting EditingStatus = "in_printing"
	EditingStatusCompleted  EditingStatus = "completed"
)

func (s EditingStatus) IsValid() bool {
	switch s {
	case EditingStatusNotStarted, EditingStatusInShooting, EditingStatusInEditing,
		EditingStatusInPrinting, EditingStatusCompleted:
		return true
	}
	return false
}
