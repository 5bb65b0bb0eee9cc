package domain

// EventClass partitions raw runtime actions into the three reactions the
// synchronizer knows about.
type EventClass int

const (
	ClassIgnored EventClass = iota
	ClassAttach
	ClassDetach
)

func (c EventClass) String() string {
	switch c {
	case ClassAttach:
		return "attach"
	case ClassDetach:
		return "detach"
	default:
		return "ignored"
	}
}

var actionClasses = map[string]EventClass{
	"start":      ClassAttach,
	"unpause":    ClassAttach,
	"connect":    ClassAttach,
	"die":        ClassDetach,
	"stop":       ClassDetach,
	"kill":       ClassDetach,
	"pause":      ClassDetach,
	"disconnect": ClassDetach,
	"destroy":    ClassDetach,
}

// ClassifyAction maps a raw docker action string to its event class.
// Actions outside the fixed vocabulary classify as ignored.
func ClassifyAction(action string) EventClass {
	return actionClasses[action]
}

// ContainerEvent is a lifecycle event as delivered by the runtime stream.
type ContainerEvent struct {
	Action      string
	ContainerId string
}

// Class classifies the event's action.
func (e ContainerEvent) Class() EventClass {
	return ClassifyAction(e.Action)
}
