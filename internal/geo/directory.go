package geo

import "strings"

// Region is one state together with its local government areas.
type Region struct {
	State     string   `json:"state"`
	StateCode string   `json:"stateCode"`
	LGAs      []string `json:"lgas"`
}

// Directory is a read-only lookup over the reference regions. It is built
// once at startup and injected into the services that validate zone input;
// it is never mutated afterwards, so concurrent reads need no locking.
type Directory struct {
	regions []Region
	byState map[string]*Region
}

// NewDirectory builds a Directory from a region list.
func NewDirectory(regions []Region) *Directory {
	d := &Directory{
		regions: regions,
		byState: make(map[string]*Region, len(regions)),
	}
	for i := range d.regions {
		d.byState[strings.ToLower(d.regions[i].State)] = &d.regions[i]
	}
	return d
}

// Regions returns all reference regions in declaration order.
func (d *Directory) Regions() []Region {
	return d.regions
}

// LookupState finds a region by state name, case-insensitively.
func (d *Directory) LookupState(state string) (Region, bool) {
	r, ok := d.byState[strings.ToLower(strings.TrimSpace(state))]
	if !ok {
		return Region{}, false
	}
	return *r, true
}

// SubRegions returns the canonical LGA list for a state, or nil when the
// state is not in the directory.
func (d *Directory) SubRegions(state string) []string {
	r, ok := d.LookupState(state)
	if !ok {
		return nil
	}
	return r.LGAs
}

// HasSubRegion reports whether the named LGA exists in the state's
// reference list, case-insensitively.
func (d *Directory) HasSubRegion(state, subRegion string) bool {
	r, ok := d.LookupState(state)
	if !ok {
		return false
	}
	want := strings.ToLower(strings.TrimSpace(subRegion))
	for _, lga := range r.LGAs {
		if strings.ToLower(lga) == want {
			return true
		}
	}
	return false
}
