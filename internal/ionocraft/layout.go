package ionocraft

import "fmt"

// Category groups state and input components by physical meaning.
type Category string

const (
	CategoryPosition Category = "pos"
	CategoryVelocity Category = "vel"
	CategoryAngle    Category = "angle"
	CategoryOmega    Category = "omega"
	CategoryAccel    Category = "accel"
	CategoryForce    Category = "force"
	CategoryTorque   Category = "torque"
)

// StateIndex addresses one component of the 15-dimensional state.
type StateIndex int

const (
	X StateIndex = iota
	Y
	Z
	VX
	VY
	VZ
	Yaw
	Pitch
	Roll
	WX
	WY
	WZ
	AX
	AY
	AZ

	NumStates = 15
	// NumDynamic counts the integrated components; the acceleration block
	// is excluded.
	NumDynamic = 12
	// NumActuators is the number of thrusters.
	NumActuators = 4
)

var stateNames = [NumStates]string{
	"X", "Y", "Z",
	"vx", "vy", "vz",
	"yaw", "pitch", "roll",
	"w_x", "w_y", "w_z",
	"ax", "ay", "az",
}

func (i StateIndex) Index() int { return int(i) }

func (i StateIndex) String() string {
	if i < 0 || int(i) >= NumStates {
		return fmt.Sprintf("StateIndex(%d)", int(i))
	}
	return stateNames[i]
}

func (i StateIndex) Category() Category {
	switch {
	case i <= Z:
		return CategoryPosition
	case i <= VZ:
		return CategoryVelocity
	case i <= Roll:
		return CategoryAngle
	case i <= WZ:
		return CategoryOmega
	default:
		return CategoryAccel
	}
}

// InputIndex addresses one input component. Which constants apply depends
// on the model's Mode.
type InputIndex int

const (
	Thrust InputIndex = iota
	TauX
	TauY
)

const (
	F1 InputIndex = iota
	F2
	F3
	F4
)

func (i InputIndex) Index() int { return int(i) }

// Field resolves the name and category of i under mode.
func (i InputIndex) Field(mode Mode) (Field, bool) {
	layout := inputLayouts[mode]
	if i < 0 || int(i) >= len(layout) {
		return Field{}, false
	}
	return layout[i], true
}

// Name returns the component name of i under mode.
func (i InputIndex) Name(mode Mode) string {
	f, ok := i.Field(mode)
	if !ok {
		return fmt.Sprintf("InputIndex(%d)", int(i))
	}
	return f.Name
}

// Category returns the category of i under mode, or "" when i is out of range.
func (i InputIndex) Category(mode Mode) Category {
	f, _ := i.Field(mode)
	return f.Category
}

// Field describes one named vector component.
type Field struct {
	Name     string
	Index    int
	Category Category
}

func (f Field) String() string {
	return fmt.Sprintf("%s[%d] (%s)", f.Name, f.Index, f.Category)
}

var stateLayout = func() []Field {
	fields := make([]Field, NumStates)
	for i := StateIndex(0); i < NumStates; i++ {
		fields[i] = Field{Name: i.String(), Index: int(i), Category: i.Category()}
	}
	return fields
}()

var inputLayouts = map[Mode][]Field{
	ThreeInput: {
		{Name: "Thrust", Index: 0, Category: CategoryForce},
		{Name: "taux", Index: 1, Category: CategoryTorque},
		{Name: "tauy", Index: 2, Category: CategoryTorque},
	},
	FourInput: {
		{Name: "F1", Index: 0, Category: CategoryForce},
		{Name: "F2", Index: 1, Category: CategoryForce},
		{Name: "F3", Index: 2, Category: CategoryForce},
		{Name: "F4", Index: 3, Category: CategoryForce},
	},
}

// StateLayout returns the ordered name/index/category table of the state.
func StateLayout() []Field {
	out := make([]Field, len(stateLayout))
	copy(out, stateLayout)
	return out
}

// StateNames returns the state component names in index order.
func StateNames() []string {
	return fieldNames(stateLayout)
}

// LookupState resolves a state component by name.
func LookupState(name string) (StateIndex, bool) {
	for _, f := range stateLayout {
		if f.Name == name {
			return StateIndex(f.Index), true
		}
	}
	return 0, false
}

// InputLayout returns the input table for mode.
func InputLayout(mode Mode) []Field {
	src := inputLayouts[mode]
	out := make([]Field, len(src))
	copy(out, src)
	return out
}

func fieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
