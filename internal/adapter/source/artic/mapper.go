package artic

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mmcdole/artpick/internal/domain"
)

// MapArtworks converts API artworks to domain records.
// A record without an identity makes the whole payload malformed.
func MapArtworks(items []Artwork) ([]domain.Record, error) {
	records := make([]domain.Record, 0, len(items))
	for i, item := range items {
		id, err := mapID(item.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", domain.ErrMalformedPayload, i, err)
		}

		title := domain.UntitledLabel
		if item.Title != nil && *item.Title != "" {
			title = *item.Title
		}

		records = append(records, domain.Record{
			ID:    id,
			Title: title,
			Details: domain.Details{
				PlaceOfOrigin: item.PlaceOfOrigin,
				ArtistDisplay: item.ArtistDisplay,
				Inscriptions:  item.Inscriptions,
				DateStart:     item.DateStart,
				DateEnd:       item.DateEnd,
			},
		})
	}
	return records, nil
}

// MapPage builds a domain page from a decoded response.
// Missing pagination leaves the total unknown.
func MapPage(resp *ArtworksResponse, pageIndex, limit int) (*domain.Page, error) {
	records, err := MapArtworks(resp.Data)
	if err != nil {
		return nil, err
	}

	page := &domain.Page{
		Records:    records,
		TotalCount: domain.UnknownTotal,
		PageSize:   limit,
		PageIndex:  pageIndex,
	}
	if p := resp.Pagination; p != nil {
		page.TotalCount = p.Total
		if p.Limit > 0 {
			page.PageSize = p.Limit
		}
		if p.CurrentPage > 0 {
			page.PageIndex = p.CurrentPage
		}
	}
	return page, nil
}

func mapID(raw json.RawMessage) (domain.ID, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("missing id")
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		if s == "" {
			return "", fmt.Errorf("empty id")
		}
		return domain.ID(s), nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid id %s", string(raw))
	}
	if i, err := n.Int64(); err == nil {
		return domain.IntID(i), nil
	}
	return domain.ID(n.String()), nil
}
