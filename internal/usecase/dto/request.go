package dto

// GuidesRequest - query of GET /guides
type GuidesRequest struct {
	Latitude  *float64 `query:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `query:"longitude" validate:"required,min=-180,max=180"`
	Language  string   `query:"language" validate:"required,len=2"`
}

// TagsRequest - query of GET /tags
type TagsRequest struct {
	Language string `query:"language" validate:"required,len=2"`
}

// LocationsRequest - query of GET /locations
type LocationsRequest struct {
	Location string `query:"location" validate:"max=200"`
}
