package services

import "slices"

// UsedPlaces accumulates place ids consumed anywhere in a trip.
// It is owned by a single planning session and threaded through each day; it
// is not safe for concurrent use.
type UsedPlaces struct {
	ids map[string]struct{}
}

func NewUsedPlaces() *UsedPlaces {
	return &UsedPlaces{ids: make(map[string]struct{})}
}

func (u *UsedPlaces) Add(ids ...string) {
	for _, id := range ids {
		if id != "" {
			u.ids[id] = struct{}{}
		}
	}
}

func (u *UsedPlaces) Has(id string) bool {
	_, ok := u.ids[id]
	return ok
}

func (u *UsedPlaces) Len() int { return len(u.ids) }

// IDs returns the used ids in sorted order.
func (u *UsedPlaces) IDs() []string {
	out := make([]string, 0, len(u.ids))
	for id := range u.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
