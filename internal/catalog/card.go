package catalog

import "time"

// ImageURIs holds the rendered image URLs of a card or card face.
type ImageURIs struct {
	Small      string `json:"small,omitempty"`
	Normal     string `json:"normal,omitempty"`
	Large      string `json:"large,omitempty"`
	PNG        string `json:"png,omitempty"`
	ArtCrop    string `json:"art_crop,omitempty"`
	BorderCrop string `json:"border_crop,omitempty"`
}

// CardFace is one face of a multi-faced card.
type CardFace struct {
	Name      string     `json:"name"`
	ImageURIs *ImageURIs `json:"image_uris,omitempty"`
}

// Card represents a Magic card from Scryfall.
type Card struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	PrintedName string     `json:"printed_name,omitempty"`
	Lang        string     `json:"lang"`
	ScryfallURI string     `json:"scryfall_uri"`
	ImageURIs   *ImageURIs `json:"image_uris,omitempty"`
	CardFaces   []CardFace `json:"card_faces,omitempty"`
}

// IsDualFaced reports whether every face carries its own images.
func (c *Card) IsDualFaced() bool {
	if len(c.CardFaces) < 2 {
		return false
	}
	for _, face := range c.CardFaces {
		if face.ImageURIs == nil || face.ImageURIs.Normal == "" {
			return false
		}
	}
	return true
}

// NormalImages returns the normal-size image URLs to show for the card: one per
// face for dual-faced cards, otherwise the card's own normal image.
func (c *Card) NormalImages() []string {
	if c.IsDualFaced() {
		urls := make([]string, 0, len(c.CardFaces))
		for _, face := range c.CardFaces {
			urls = append(urls, face.ImageURIs.Normal)
		}
		return urls
	}
	if c.ImageURIs != nil && c.ImageURIs.Normal != "" {
		return []string{c.ImageURIs.Normal}
	}
	return nil
}

// DisplayName prefers the localized printed name.
func (c *Card) DisplayName() string {
	if c.PrintedName != "" {
		return c.PrintedName
	}
	return c.Name
}

// PrimaryImage returns the first normal image URL, or "" if the card has none.
func (c *Card) PrimaryImage() string {
	if urls := c.NormalImages(); len(urls) > 0 {
		return urls[0]
	}
	return ""
}

// SearchResult is a page of search results.
type SearchResult struct {
	Object       string   `json:"object"`
	TotalCards   int      `json:"total_cards"`
	TotalMatches int      `json:"total_matches,omitempty"`
	HasMore      bool     `json:"has_more"`
	NextPage     string   `json:"next_page,omitempty"`
	Data         []Card   `json:"data"`
	Warnings     []string `json:"warnings,omitempty"`
}

// Total returns the number of matching cards as reported by the catalog,
// falling back to the size of this page.
func (r *SearchResult) Total() int {
	switch {
	case r.TotalCards > 0:
		return r.TotalCards
	case r.TotalMatches > 0:
		return r.TotalMatches
	default:
		return len(r.Data)
	}
}

// Empty reports whether the result holds no cards.
func (r *SearchResult) Empty() bool {
	return r == nil || len(r.Data) == 0
}

// Health is the catalog's /health document.
type Health struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Healthy reports whether the catalog says it is serving normally.
func (h *Health) Healthy() bool {
	return h != nil && h.Status == "healthy"
}

// APIError represents an error object returned by the Scryfall API.
type APIError struct {
	Object   string   `json:"object"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Details  string   `json:"details"`
	Type     string   `json:"type,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
