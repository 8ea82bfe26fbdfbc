package model

type SortKey string

const (
	SortByCreationDate   SortKey = "creationDate"
	SortByDate           SortKey = "date"
	SortByTitle          SortKey = "title"
	SortByCompletionDate SortKey = "completionDate"
	SortByPriority       SortKey = "priority"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortByCreationDate, SortByDate, SortByTitle, SortByCompletionDate, SortByPriority:
		return true
	}
	return false
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

// Location is a weather location as returned by the location search
// collaborator and stored as the currently selected place.
type Location struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Settings are the per-device preferences. Each field persists under its own
// storage key; a malformed stored value falls back to the default here.
type Settings struct {
	ProjectName       string        `json:"projectName"`
	SortKey           SortKey       `json:"sortKey"`
	SortDirection     SortDirection `json:"sortDirection"`
	ShowWeatherWidget bool          `json:"showWeatherWidget"`
	HeaderSticky      bool          `json:"isHeaderSticky"`
	FilterBarSticky   bool          `json:"isFilterBarSticky"`
	Location          *Location     `json:"location,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		ProjectName:       "My Tasks",
		SortKey:           SortByCreationDate,
		SortDirection:     SortAsc,
		ShowWeatherWidget: true,
		HeaderSticky:      false,
		FilterBarSticky:   false,
	}
}
