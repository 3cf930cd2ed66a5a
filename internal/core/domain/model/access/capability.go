package access

// Capability is a coarse right checked at every entry point before any
// domain rule runs.
type Capability int

const (
	UnknownCapability Capability = iota
	CustomerWrite
	RestaurantWrite
	DriverWrite
	AdminWrite
	Read
	// Dispatch is held only by the System role.
	Dispatch
)

func (c Capability) String() string {
	switch c {
	case CustomerWrite:
		return "customer-write"
	case RestaurantWrite:
		return "restaurant-write"
	case DriverWrite:
		return "driver-write"
	case AdminWrite:
		return "admin-write"
	case Read:
		return "read"
	case Dispatch:
		return "dispatch"
	case UnknownCapability:
		return "unknown"
	default:
		return "unknown"
	}
}

// capabilities is the role to capability table. Admin holds restaurant-write
// so it can accept and prepare orders for any restaurant; it deliberately has
// no customer-write.
//
//nolint:gochecknoglobals // read-only lookup table
var capabilities = map[Role][]Capability{
	Customer:   {CustomerWrite, Read},
	Restaurant: {RestaurantWrite, Read},
	Driver:     {DriverWrite, Read},
	Admin:      {AdminWrite, RestaurantWrite, Read},
	System:     {Dispatch},
}

// CapabilitiesFor returns a copy of the capabilities granted to role.
func CapabilitiesFor(role Role) []Capability {
	granted := capabilities[role]
	out := make([]Capability, len(granted))
	copy(out, granted)
	return out
}

// Has reports whether role holds capability c.
func (r Role) Has(c Capability) bool {
	for _, granted := range capabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}
