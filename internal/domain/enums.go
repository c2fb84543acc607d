package domain

// EntityKind identifies one level of the continent → country → city hierarchy.
type EntityKind string

const (
	KindContinent EntityKind = "continent"
	KindCountry   EntityKind = "country"
	KindCity      EntityKind = "city"
)

func (k EntityKind) String() string { return string(k) }

func (k EntityKind) IsValid() bool {
	switch k {
	case KindContinent, KindCountry, KindCity:
		return true
	}
	return false
}

// IdentityKey names an attribute (or attribute pair) used to decide whether
// two records denote the same real-world entity.
type IdentityKey string

const (
	KeyName          IdentityKey = "name"
	KeyCode          IdentityKey = "code"
	KeyNameInCountry IdentityKey = "name_and_country"
	KeyCoordinates   IdentityKey = "coordinates"
)

func (k IdentityKey) String() string { return string(k) }

// SearchKind is the classification produced by a free-text lookup.
type SearchKind string

const (
	SearchKindRegion  SearchKind = "region"
	SearchKindCountry SearchKind = "country"
	SearchKindCity    SearchKind = "city"
)

func (k SearchKind) String() string { return string(k) }
