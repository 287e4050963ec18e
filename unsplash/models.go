package unsplash

// Photo is one result record from the photos/search endpoints. Only the
// fields the admin feed consumes are mapped.
type Photo struct {
	ID          string     `json:"id"`
	Width       float64    `json:"width"`
	Height      float64    `json:"height"`
	Description string     `json:"description"`
	Color       string     `json:"color"`
	Urls        PhotoUrls  `json:"urls"`
	Links       PhotoLinks `json:"links"`
	User        User       `json:"user"`
}

// Ratio is height over width; the masonry layout scales by it.
func (p Photo) Ratio() float64 {
	if p.Width == 0 {
		return 0
	}
	return p.Height / p.Width
}

type PhotoUrls struct {
	Raw     string `json:"raw"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

type PhotoLinks struct {
	HTML     string `json:"html"`
	Download string `json:"download"`
}

type User struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Links    UserLinks `json:"links"`
}

type UserLinks struct {
	HTML string `json:"html"`
}

// searchResponse is the envelope /search/photos wraps results in. Plain
// listing endpoints return a bare array instead.
type searchResponse struct {
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
	Results    []Photo `json:"results"`
}

// Page is one fetched result page plus the follow-up URLs taken from the
// response's Link header.
type Page struct {
	Photos []Photo
	Links  map[string]string
	URL    string
}
