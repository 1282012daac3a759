package handlers

import "time"

// AliasBody is the JSON representation of an alias.
type AliasBody struct {
	ID        string    `doc:"Alias id"                          example:"6f1c2a9e-0f4b-4c2e-9d1a-2b3c4d5e6f70" json:"id"`
	Alias     string    `doc:"The slug"                          example:"HYO4r0"                               json:"alias"`
	ShortURL  string    `doc:"The full short URL"                example:"http://localhost:8888/HYO4r0"          json:"shortUrl"`
	TargetURL string    `doc:"The normalized destination"        example:"https://example.com/"                  json:"targetUrl"`
	Visits    int64     `doc:"Number of resolutions"             example:"42"                                   json:"visits"`
	Custom    bool      `doc:"Whether the slug was chosen"       json:"custom"`
	CreatedAt time.Time `doc:"Creation time"                     json:"createdAt"`
	UpdatedAt time.Time `doc:"Last slug change"                  json:"updatedAt"`
}

// CreateAliasRequest is the request body for creating an alias.
type CreateAliasRequest struct {
	Body struct {
		URL        string `doc:"The URL to shorten"          example:"https://example.com/very/long/path" json:"url"                  maxLength:"2048" minLength:"1"`
		CustomSlug string `doc:"Optional slug to use instead" example:"my-link"                           json:"customSlug,omitempty" maxLength:"64"   required:"false"`
	}
}

// AliasResponse wraps a single alias.
type AliasResponse struct {
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body AliasBody
}

// AliasIDRequest addresses one alias by id.
type AliasIDRequest struct {
	ID string `doc:"Alias id" path:"id"`
}

// UpdateAliasRequest renames an alias.
type UpdateAliasRequest struct {
	ID   string `doc:"Alias id" path:"id"`
	Body struct {
		Alias string `doc:"The new slug" example:"new-slug" json:"alias" maxLength:"64" minLength:"1"`
	}
}

// ListAliasesResponse lists the caller's aliases.
type ListAliasesResponse struct {
	Body struct {
		Aliases []AliasBody `json:"aliases"`
	}
}

// StatsResponse summarizes the caller's aliases.
type StatsResponse struct {
	Body struct {
		TotalURLs   int         `doc:"Number of aliases"        json:"totalUrls"`
		TotalVisits int64       `doc:"Sum of visits"            json:"totalVisits"`
		TopURLs     []AliasBody `doc:"Most visited, at most 5"  json:"topUrls"`
	}
}

// RedirectRequest is the request for resolving an alias.
type RedirectRequest struct {
	Alias string `doc:"The slug" example:"HYO4r0" path:"alias"`
}

// RedirectResponse sends the client to the target URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}
