package models

import (
	"errors"

	json "github.com/goccy/go-json"
)

var (
	ErrNoMedia        = errors.New("advertisement has neither image nor video media")
	ErrAmbiguousMedia = errors.New("advertisement has both image and video media")
)

type MediaKind uint8

const (
	MediaImage MediaKind = iota
	MediaVideo
)

func (k MediaKind) String() string {
	if k == MediaVideo {
		return "video"
	}
	return "image"
}

// Media is a tagged union: a candidate carries exactly one of an image URL
// or a video URL. Construct via ImageMedia/VideoMedia or UnmarshalJSON.
type Media struct {
	Kind MediaKind
	URL  string
}

func ImageMedia(url string) Media { return Media{Kind: MediaImage, URL: url} }
func VideoMedia(url string) Media { return Media{Kind: MediaVideo, URL: url} }

// AdCandidate is an ad creative returned by the ad service, not yet committed
// to display. Immutable once decoded; owned by the active playback session.
type AdCandidate struct {
	ID          string
	Title       string
	Description string
	Media       Media
	ClickURL    string
	Category    string
	Weight      int
}

// candidateWire is the ad service JSON shape. Media is duck-typed on the wire
// (presence of image_url vs video_url); decoding resolves it into the union.
type candidateWire struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	VideoURL    string `json:"video_url"`
	ClickURL    string `json:"click_url"`
	Category    string `json:"category"`
	Weight      int    `json:"weight"`
}

func (c *AdCandidate) UnmarshalJSON(data []byte) error {
	var w candidateWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var media Media
	switch {
	case w.ImageURL != "" && w.VideoURL != "":
		return ErrAmbiguousMedia
	case w.ImageURL != "":
		media = ImageMedia(w.ImageURL)
	case w.VideoURL != "":
		media = VideoMedia(w.VideoURL)
	default:
		return ErrNoMedia
	}

	c.ID = w.ID
	c.Title = w.Title
	c.Description = w.Description
	c.Media = media
	c.ClickURL = w.ClickURL
	c.Category = w.Category
	c.Weight = w.Weight
	return nil
}

func (c AdCandidate) MarshalJSON() ([]byte, error) {
	w := candidateWire{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		ClickURL:    c.ClickURL,
		Category:    c.Category,
		Weight:      c.Weight,
	}
	if c.Media.Kind == MediaVideo {
		w.VideoURL = c.Media.URL
	} else {
		w.ImageURL = c.Media.URL
	}
	return json.Marshal(w)
}
