package artic

import "encoding/json"

// ArtworksResponse represents a page of artworks from the /artworks endpoint
type ArtworksResponse struct {
	Pagination *Pagination `json:"pagination"`
	Data       []Artwork   `json:"data"`
}

// Pagination is the paging block the API attaches to list responses
type Pagination struct {
	Total       int `json:"total"`
	Limit       int `json:"limit"`
	Offset      int `json:"offset"`
	TotalPages  int `json:"total_pages,omitempty"`
	CurrentPage int `json:"current_page,omitempty"`
}

// Artwork is a single artwork as the API returns it. Every field except
// ID may be null or absent.
type Artwork struct {
	ID            json.RawMessage `json:"id"` // number, occasionally a string
	Title         *string         `json:"title"`
	PlaceOfOrigin *string         `json:"place_of_origin"`
	ArtistDisplay *string         `json:"artist_display"`
	Inscriptions  *string         `json:"inscriptions"`
	DateStart     *int            `json:"date_start"`
	DateEnd       *int            `json:"date_end"`
}
