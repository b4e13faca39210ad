package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MediaType enumerates the media classes a search can target.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeAudio MediaType = "audio"
	MediaTypeVideo MediaType = "video"
	MediaTypeAll   MediaType = "all"
)

// Valid reports whether the media type is one of the known values.
func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeImage, MediaTypeAudio, MediaTypeVideo, MediaTypeAll:
		return true
	}
	return false
}

// SearchHistory is one persisted record of a past executed search,
// owned by exactly one user.
type SearchHistory struct {
	ID          uuid.UUID         `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID         `json:"userId" gorm:"type:char(36);not null;index"`
	Query       string            `json:"query" gorm:"size:500;not null"`
	MediaType   MediaType         `json:"mediaType" gorm:"type:varchar(10);not null;default:'all'"`
	Filters     datatypes.JSONMap `json:"filters"`
	ResultCount int               `json:"resultCount"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt    `json:"-" gorm:"index"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (h *SearchHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
