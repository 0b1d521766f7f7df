package parameter

// ListenerPositionName is the type name of ListenerPosition.
const ListenerPositionName = "ListenerPosition"

// TypeListenerPosition is the type id of ListenerPosition.
var TypeListenerPosition = ID(ListenerPositionName)

// ListenerPosition is a tracked listener position (metres) and orientation (radians).
type ListenerPosition struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Yaw       float64 `json:"yaw"`
	Pitch     float64 `json:"pitch"`
	Roll      float64 `json:"roll"`
	Timestamp uint64  `json:"timestamp"`
}

// Type implements Parameter.
func (*ListenerPosition) Type() TypeID { return TypeListenerPosition }

// Clone implements Parameter.
func (l *ListenerPosition) Clone() Parameter {
	c := *l
	return &c
}

// Assign implements Parameter.
func (l *ListenerPosition) Assign(src Parameter) error {
	o, ok := src.(*ListenerPosition)
	if !ok {
		return assignError(l, src)
	}
	*l = *o
	return nil
}

func newListenerPosition(cfg Config) (Parameter, error) {
	if err := optionalEmpty(cfg); err != nil {
		return nil, err
	}
	return &ListenerPosition{}, nil
}
