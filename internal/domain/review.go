package domain

type Review struct {
	ID      string  `json:"id,omitempty"`
	PlaceID string  `json:"place_id,omitempty"`
	Text    string  `json:"text"`
	Rating  int     `json:"rating"`
	User    *Person `json:"user,omitempty"`
}

// ReviewDraft is a review as typed into the form, before the API accepts it.
type ReviewDraft struct {
	PlaceID string
	UserID  string
	Text    string
	Rating  int
}
