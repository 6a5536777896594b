// Package domain holds DTOs for the search index http and service contracts
package domain

// Document is one publication as the search index stores it
type Document struct {
	ID              int64    `json:"id" validate:"required,gt=0" example:"42"`
	Title           string   `json:"title" validate:"max=2000" example:"On distinct counts"`
	Abstract        string   `json:"abstract,omitempty"`
	Authors         []string `json:"authors,omitempty" validate:"omitempty,dive,max=400"`
	Year            int      `json:"year,omitempty" example:"2020"`
	PublicationType string   `json:"publication_type,omitempty" example:"article"`
	Keywords        []string `json:"keywords,omitempty"`
}

// AddInput carries one document or a list of them
type AddInput struct {
	Documents []Document `json:"documents" validate:"required,min=1,max=5000,dive"`
}

// DeleteInput names documents to drop
type DeleteInput struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0" example:"1,2,3"`
}

// SearchInput is a full text query over committed documents
type SearchInput struct {
	Query string `json:"q" validate:"required,max=500" example:"distinct counts"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=200" example:"20"`
}

// Hit is one search result
type Hit struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Year  int     `json:"year,omitempty"`
	Rank  float32 `json:"rank"`
}

// Ack reports how many documents an operation touched
type Ack struct {
	Op        string `json:"op" example:"add"`
	Documents int    `json:"documents" example:"10"`
}
