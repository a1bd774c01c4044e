package model

import "fmt"

const (
	DefaultTag  = "react"
	DefaultPage = 1
)

// FilterParams selects one page of the article list.
type FilterParams struct {
	Tag  string `json:"tag"`
	Page int    `json:"page"`
}

// Normalize fills in the default tag and page.
func (p FilterParams) Normalize() FilterParams {
	if p.Tag == "" {
		p.Tag = DefaultTag
	}
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	return p
}

// Key identifies the request for de-duplication.
func (p FilterParams) Key() string {
	p = p.Normalize()
	return fmt.Sprintf("tag=%s&page=%d", p.Tag, p.Page)
}
