package anilist

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"susrolld/internal/models"
	"susrolld/internal/providers"
	"susrolld/internal/structures"

	json "github.com/goccy/go-json"
)

// characterQuery pulls one page of characters with the fields the game
// filters and displays on. Media is limited to the most popular title.
const characterQuery = `
query ($page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    pageInfo {
      lastPage
    }
    characters {
      id
      name { full }
      image { large }
      age
      siteUrl
      favourites
      media(perPage: 3, sort: [POPULARITY_DESC]) {
        nodes {
          title { romaji }
          popularity
        }
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]int `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		Page struct {
			PageInfo struct {
				LastPage int `json:"lastPage"`
			} `json:"pageInfo"`
			Characters []characterRecord `json:"characters"`
		} `json:"Page"`
	} `json:"data"`
}

type characterRecord struct {
	ID   int `json:"id"`
	Name struct {
		Full string `json:"full"`
	} `json:"name"`
	Image struct {
		Large string `json:"large"`
	} `json:"image"`
	Age        string `json:"age"`
	SiteURL    string `json:"siteUrl"`
	Favourites int    `json:"favourites"`
	Media      struct {
		Nodes []struct {
			Title struct {
				Romaji string `json:"romaji"`
			} `json:"title"`
			Popularity int `json:"popularity"`
		} `json:"nodes"`
	} `json:"media"`
}

// cachedPage is the envelope stored in the page cache so a cache hit
// also restores the reported page count.
type cachedPage struct {
	Characters []models.Character `json:"characters"`
	LastPage   int                `json:"last_page"`
}

type Client struct {
	endpoint   string
	httpClient *http.Client
	cache      providers.CacheProviderInterface
	logger     providers.Logger
}

func NewClient(conf *structures.Config, logger providers.Logger, cache providers.CacheProviderInterface) *Client {
	return &Client{
		endpoint:   conf.Source.Endpoint,
		httpClient: &http.Client{Timeout: conf.Source.Timeout},
		cache:      cache,
		logger:     logger,
	}
}

// Characters fetches one page of character records. It returns the
// flattened records together with the source's reported last page
// (0 when unknown). Pages are cached so repeated random hits on the
// same page skip the network entirely.
func (c *Client) Characters(ctx context.Context, page, perPage int) ([]models.Character, int, error) {
	cacheKey := "anilist:" + strconv.Itoa(page) + ":" + strconv.Itoa(perPage)
	if raw, ok := c.cache.Get(cacheKey); ok {
		var cached cachedPage
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached.Characters, cached.LastPage, nil
		}
	}

	body, err := json.Marshal(graphqlRequest{
		Query:     characterQuery,
		Variables: map[string]int{"page": page, "perPage": perPage},
	})
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("source returned status %d", resp.StatusCode)
	}

	var decoded graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, 0, err
	}

	characters := flatten(decoded.Data.Page.Characters)
	lastPage := decoded.Data.Page.PageInfo.LastPage

	if raw, err := json.Marshal(cachedPage{Characters: characters, LastPage: lastPage}); err == nil {
		c.cache.Set(cacheKey, raw)
	}

	return characters, lastPage, nil
}

// flatten maps raw records onto the domain model, dropping records
// without an id. Records missing other fields survive here; acceptance
// filtering is the fetcher's job.
func flatten(records []characterRecord) []models.Character {
	out := make([]models.Character, 0, len(records))
	for _, rec := range records {
		if rec.ID == 0 {
			continue
		}
		ch := models.Character{
			ID:         rec.ID,
			Name:       rec.Name.Full,
			Image:      rec.Image.Large,
			Age:        rec.Age,
			SiteURL:    rec.SiteURL,
			Favourites: rec.Favourites,
		}
		if len(rec.Media.Nodes) > 0 {
			ch.Series = rec.Media.Nodes[0].Title.Romaji
			ch.SeriesPopularity = rec.Media.Nodes[0].Popularity
		}
		out = append(out, ch)
	}
	return out
}
