package dockerhub

import "time"

type GetImageTagsResponse struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []ImageTag `json:"results"`
}

type ImageTag struct {
	ID                  int        `json:"id"`
	Name                string     `json:"name"`
	Images              []Image    `json:"images"`
	LastUpdated         time.Time  `json:"last_updated"`
	LastUpdaterUsername string     `json:"last_updater_username"`
	FullSize            int64      `json:"full_size"`
	Digest              string     `json:"digest"`
	TagStatus           string     `json:"tag_status"`
	TagLastPulled       *time.Time `json:"tag_last_pulled"`
	TagLastPushed       time.Time  `json:"tag_last_pushed"`
}

type Image struct {
	Architecture string     `json:"architecture"`
	Variant      *string    `json:"variant"`
	Digest       string     `json:"digest"`
	OS           string     `json:"os"`
	Size         int64      `json:"size"`
	Status       string     `json:"status"`
	LastPulled   *time.Time `json:"last_pulled"`
	LastPushed   time.Time  `json:"last_pushed"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}
