package models

import "time"

// Review holds one author's opinion of a work. The composite unique index
// on (author_id, work_id) is the storage backstop for the one-review-per-
// author-per-work rule; the service layer pre-checks it before insert.
type Review struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	Score     int       `json:"score" gorm:"not null;check:score >= 1 AND score <= 10"`
	AuthorID  string    `json:"author_id" gorm:"type:uuid;not null;uniqueIndex:idx_review_author_work"`
	WorkID    int64     `json:"work_id" gorm:"not null;uniqueIndex:idx_review_author_work;index"`
	CreatedAt time.Time `json:"pub_date" gorm:"autoCreateTime;index"`

	// Associations
	Author User `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Work   Work `json:"work,omitempty" gorm:"foreignKey:WorkID;constraint:OnDelete:CASCADE;"`
}

func (Review) TableName() string {
	return "reviews"
}
